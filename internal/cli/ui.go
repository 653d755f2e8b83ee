package cli

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - headings, numbers
	colorGreen  = lipgloss.Color("35")  // Green - success, newest element
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorBlue   = lipgloss.Color("75")  // Light blue - commands
	colorWhite  = lipgloss.Color("255") // Bright white - trees, values
	colorGray   = lipgloss.Color("245") // Gray - labels
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Public Styles
// =============================================================================

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary/muted text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	// StyleValue for trees and other data values.
	StyleValue = lipgloss.NewStyle().Foreground(colorWhite)

	// StyleNumber for lengths and counts.
	StyleNumber = lipgloss.NewStyle().Foreground(colorCyan)

	// StyleWarning for warning messages.
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)
)

// =============================================================================
// Internal Styles
// =============================================================================

var (
	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconError   = lipgloss.NewStyle().Foreground(colorRed)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleIconSpinner = lipgloss.NewStyle().Foreground(colorCyan)

	styleKey      = lipgloss.NewStyle().Foreground(colorGray).Width(12)
	styleCached   = lipgloss.NewStyle().Foreground(colorGreen)
	styleComputed = lipgloss.NewStyle().Foreground(colorGray)
	styleCommand  = lipgloss.NewStyle().Foreground(colorBlue)
)

// =============================================================================
// Icons
// =============================================================================

const (
	iconSuccess = "✓"
	iconError   = "✗"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
	iconCached  = "cached"
	iconFresh   = "fresh"
)

// =============================================================================
// Console
// =============================================================================

// console writes styled status lines. Command results go to the CLI's output
// writer instead, so they can be piped without decoration.
type console struct {
	w io.Writer
}

func (c console) line(s string) {
	fmt.Fprintln(c.w, s)
}

// success prints a success message.
func (c console) success(format string, args ...any) {
	c.line(styleIconSuccess.Render(iconSuccess) + " " + fmt.Sprintf(format, args...))
}

// failure prints an error message.
func (c console) failure(format string, args ...any) {
	c.line(styleIconError.Render(iconError) + " " + fmt.Sprintf(format, args...))
}

// warning prints a warning message.
func (c console) warning(format string, args ...any) {
	c.line(styleIconWarning.Render(iconWarning) + " " + StyleWarning.Render(fmt.Sprintf(format, args...)))
}

// info prints a status message.
func (c console) info(format string, args ...any) {
	c.line(styleIconInfo.Render(iconInfo) + " " + fmt.Sprintf(format, args...))
}

// detail prints an indented, dimmed line.
func (c console) detail(format string, args ...any) {
	c.line("  " + StyleDim.Render(fmt.Sprintf(format, args...)))
}

// file prints a written file path.
func (c console) file(path string) {
	c.line("  " + StyleDim.Render(iconArrow) + " " + StyleValue.Render(path))
}

// keyValue prints a labeled value.
func (c console) keyValue(key, value string) {
	c.line(styleKey.Render(key) + " " + StyleValue.Render(value))
}

// stats prints enumeration statistics on a single line.
func (c console) stats(treeCount, size int, cached bool) {
	status := styleComputed.Render(iconFresh)
	if cached {
		status = styleCached.Render(iconCached)
	}
	sep := StyleDim.Render(" · ")
	c.line("  " + StyleDim.Render(fmt.Sprintf("%d trees", treeCount)) +
		sep + StyleDim.Render(fmt.Sprintf("size %d", size)) +
		sep + status)
}

// sequence prints a tree sequence, one numbered element per line.
func (c console) sequence(keys []string) {
	width := len(fmt.Sprint(len(keys)))
	for i, k := range keys {
		c.line("  " + StyleDim.Render(fmt.Sprintf("%*d.", width, i+1)) + " " + StyleValue.Render(k))
	}
}

// nextStep prints a suggested next command.
func (c console) nextStep(description, cmd string) {
	c.line(StyleDim.Render(description+":") + " " + styleCommand.Render(cmd))
}

// newline prints an empty line.
func (c console) newline() {
	fmt.Fprintln(c.w)
}
