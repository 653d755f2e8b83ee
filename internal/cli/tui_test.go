package cli

import (
	stderrors "errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/treeseq/pkg/pool"
	"github.com/matzehuels/treeseq/pkg/search"
)

func TestDashboardBestUpdates(t *testing.T) {
	m := NewDashboardModel(2, 0, nil, nil)

	updated, cmd := m.Update(bestMsg(search.Progress{Length: 3, Sequence: []string{"1", "2(2)", "2"}, Tested: 17}))
	if cmd != nil {
		t.Error("best update should not schedule a command")
	}
	m = updated.(DashboardModel)
	if m.Best.Length != 3 || m.Updates != 1 {
		t.Errorf("best = %d, updates = %d, want 3 and 1", m.Best.Length, m.Updates)
	}

	view := m.View()
	for _, want := range []string{"2 labels", "2(2)", "unbounded", "17"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestDashboardQuitStopsSearchFirst(t *testing.T) {
	stops := 0
	m := NewDashboardModel(1, 3, nil, func() { stops++ })

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(DashboardModel)
	if cmd != nil {
		t.Error("quit before the search finishes should wait for it")
	}
	if !m.Stopping || stops != 1 {
		t.Errorf("stopping = %v, stops = %d", m.Stopping, stops)
	}

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	m = updated.(DashboardModel)
	if stops != 1 {
		t.Errorf("stop called %d times, want once", stops)
	}

	updated, cmd = m.Update(finishedMsg{result: search.Result{Best: 4}, err: stderrors.New("stopped")})
	m = updated.(DashboardModel)
	if m.Result == nil || m.Result.Best != 4 {
		t.Fatal("finished message should record the result")
	}
	if cmd == nil {
		t.Fatal("finished message should quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("finished message should return tea.Quit")
	}
	if !strings.Contains(m.View(), "stopped") {
		t.Error("view should show the run error")
	}
}

func TestDashboardTickPollsStats(t *testing.T) {
	stats := func() pool.Stats { return pool.Stats{Workers: 4, Completed: 99, Idle: 1} }
	m := NewDashboardModel(3, 0, stats, nil)

	now := m.Start.Add(90 * time.Second)
	updated, cmd := m.Update(tickMsg(now))
	m = updated.(DashboardModel)
	if cmd == nil {
		t.Error("tick should schedule the next tick")
	}
	if m.Pool.Completed != 99 {
		t.Errorf("pool completed = %d, want 99", m.Pool.Completed)
	}
	if !strings.Contains(m.View(), "1m30s") {
		t.Error("view should show elapsed time")
	}
}

func TestDashboardTruncatesLongSequences(t *testing.T) {
	m := NewDashboardModel(1, 0, nil, nil)
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 16})
	m = updated.(DashboardModel)
	if m.Height != 3 {
		t.Fatalf("height = %d, want 3", m.Height)
	}

	seq := []string{"1(1(1(1)))", "1(1(1,1))", "1(1,1(1))", "1(1,1,1)", "1(1(1))"}
	updated, _ = m.Update(bestMsg(search.Progress{Length: len(seq), Sequence: seq}))
	view := updated.(DashboardModel).View()
	if !strings.Contains(view, "2 earlier") {
		t.Error("view should summarize hidden elements")
	}
	if strings.Contains(view, "1(1(1(1)))") {
		t.Error("oldest element should be hidden")
	}
}

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{1500 * time.Millisecond, "1.5s"},
		{65 * time.Second, "1m05s"},
		{2*time.Hour + 3*time.Minute, "2h03m"},
	}
	for _, tt := range tests {
		if got := formatElapsed(tt.d); got != tt.want {
			t.Errorf("formatElapsed(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
