// Package output provides styled terminal rendering helpers for devpulse.
package output

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Color constants for consistent styling across the CLI.
var (
	// ColorPrimary is used for headers and emphasis.
	ColorPrimary = lipgloss.Color("#64b5f6")

	// ColorSuccess is used for active days and improvements.
	ColorSuccess = lipgloss.Color("#66bb6a")

	// ColorError is used for broken streaks and regressions.
	ColorError = lipgloss.Color("#ef5350")

	// ColorWarning is used for streaks at risk.
	ColorWarning = lipgloss.Color("#fff59d")

	// ColorMuted is used for secondary text and borders.
	ColorMuted = lipgloss.Color("#888888")

	// ColorBreak marks break sessions.
	ColorBreak = lipgloss.Color("#ba68c8")
)

// Styles provides reusable lipgloss styles. They are rebuilt by SetNoColor.
var (
	StyleHeader  lipgloss.Style
	StyleSuccess lipgloss.Style
	StyleError   lipgloss.Style
	StyleWarning lipgloss.Style
	StyleMuted   lipgloss.Style
	StyleBold    lipgloss.Style
	StyleBreak   lipgloss.Style

	// StyleLabel is used for metric labels.
	StyleLabel lipgloss.Style

	// StyleValue is used for metric values.
	StyleValue lipgloss.Style
)

func init() {
	applyStyles(false)
}

// noColor tracks whether color output is disabled.
var noColor bool

// SetNoColor disables or enables color output globally.
func SetNoColor(disabled bool) {
	noColor = disabled
	applyStyles(disabled)
}

// IsNoColor returns whether color output is currently disabled.
func IsNoColor() bool {
	return noColor
}

// ShouldColor reports whether output to f should be colored, given the
// --no-color flag and the output.color config value. Non-terminal writers
// and a set NO_COLOR environment variable always disable color.
func ShouldColor(f *os.File, noColorFlag, configColor bool) bool {
	if noColorFlag || !configColor {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if f == nil {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func applyStyles(plain bool) {
	base := lipgloss.NewStyle()
	if plain {
		StyleHeader = base
		StyleSuccess = base
		StyleError = base
		StyleWarning = base
		StyleMuted = base
		StyleBold = base
		StyleBreak = base
	} else {
		StyleHeader = base.Foreground(ColorPrimary).Bold(true)
		StyleSuccess = base.Foreground(ColorSuccess)
		StyleError = base.Foreground(ColorError)
		StyleWarning = base.Foreground(ColorWarning)
		StyleMuted = base.Foreground(ColorMuted)
		StyleBold = base.Bold(true)
		StyleBreak = base.Foreground(ColorBreak)
	}
	StyleLabel = base.Width(24)
	StyleValue = base.Bold(!plain).Width(12)
}
