package cli

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/treeseq/pkg/pool"
	"github.com/matzehuels/treeseq/pkg/search"
)

// Dashboard styles
var (
	dashLabelStyle  = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	dashValueStyle  = lipgloss.NewStyle().Foreground(colorWhite)
	dashRecentStyle = lipgloss.NewStyle().Foreground(colorGreen)
	dashDimStyle    = lipgloss.NewStyle().Foreground(colorDim)
)

// dashboardTick is how often elapsed time and pool counters refresh.
const dashboardTick = 250 * time.Millisecond

// =============================================================================
// Messages
// =============================================================================

// bestMsg carries a new best sequence from the search goroutine.
type bestMsg search.Progress

// finishedMsg reports that Controller.Run returned.
type finishedMsg struct {
	result search.Result
	err    error
}

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(dashboardTick, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// =============================================================================
// DashboardModel - Live search progress
// =============================================================================

// DashboardModel is the bubbletea model for the live search view.
type DashboardModel struct {
	Labels  int
	MaxSize int
	Best    search.Progress
	Updates int
	Pool    pool.Stats
	Start   time.Time
	Now     time.Time
	Height  int

	Result   *search.Result
	Err      error
	Stopping bool

	stats func() pool.Stats
	stop  func()
}

// NewDashboardModel creates a dashboard. stats is polled on every tick and
// stop is called once when the user asks to quit; the model then waits for
// the finished message before exiting.
func NewDashboardModel(labels, maxSize int, stats func() pool.Stats, stop func()) DashboardModel {
	now := time.Now()
	return DashboardModel{
		Labels:  labels,
		MaxSize: maxSize,
		Start:   now,
		Now:     now,
		Height:  12,
		stats:   stats,
		stop:    stop,
	}
}

func (m DashboardModel) Init() tea.Cmd {
	return tick()
}

func (m DashboardModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.Result != nil {
				return m, tea.Quit
			}
			if !m.Stopping {
				m.Stopping = true
				if m.stop != nil {
					m.stop()
				}
			}
		}
	case bestMsg:
		m.Best = search.Progress(msg)
		m.Updates++
	case finishedMsg:
		res := msg.result
		m.Result = &res
		m.Err = msg.err
		m.Now = time.Now()
		if m.stats != nil {
			m.Pool = m.stats()
		}
		return m, tea.Quit
	case tickMsg:
		m.Now = time.Time(msg)
		if m.stats != nil {
			m.Pool = m.stats()
		}
		return m, tick()
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 14
		if m.Height < 3 {
			m.Height = 3
		}
	}
	return m, nil
}

func (m DashboardModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render(fmt.Sprintf("Bad sequence search, %d labels", m.Labels)))
	b.WriteString("\n")
	switch {
	case m.Result != nil:
		b.WriteString(dashDimStyle.Render("finished"))
	case m.Stopping:
		b.WriteString(StyleWarning.Render("stopping..."))
	default:
		b.WriteString(dashDimStyle.Render("q stop"))
	}
	b.WriteString("\n\n")

	bound := "unbounded"
	if m.MaxSize > 0 {
		bound = fmt.Sprintf("%d", m.MaxSize)
	}
	rows := [][]string{
		{"Best", StyleNumber.Render(fmt.Sprintf("%d", m.Best.Length))},
		{"Improvements", fmt.Sprintf("%d", m.Updates)},
		{"Candidates", fmt.Sprintf("%d", m.Best.Tested)},
		{"Embed tests", fmt.Sprintf("%d done, %d queued", m.Pool.Completed, m.Pool.Queued)},
		{"Workers", fmt.Sprintf("%d (%d idle)", m.Pool.Workers, m.Pool.Idle)},
		{"Max size", bound},
		{"Elapsed", formatElapsed(m.Now.Sub(m.Start))},
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if col == 0 {
				return dashLabelStyle
			}
			return dashValueStyle
		})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	b.WriteString(dashLabelStyle.Render("Sequence"))
	b.WriteString("\n")
	seq := m.Best.Sequence
	start := 0
	if len(seq) > m.Height {
		start = len(seq) - m.Height
		b.WriteString(dashDimStyle.Render(fmt.Sprintf("  ... %d earlier", start)))
		b.WriteString("\n")
	}
	for i := start; i < len(seq); i++ {
		line := fmt.Sprintf("  %3d. %s", i+1, seq[i])
		if i == len(seq)-1 {
			b.WriteString(dashRecentStyle.Render(line))
		} else {
			b.WriteString(dashValueStyle.Render(line))
		}
		b.WriteString("\n")
	}
	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(StyleWarning.Render(m.Err.Error()))
		b.WriteString("\n")
	}

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

func formatElapsed(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	case d < time.Hour:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	}
}
