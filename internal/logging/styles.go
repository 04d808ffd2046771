package logging

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

var (
	colorVerbose = lipgloss.Color("245") // gray
	colorError   = lipgloss.Color("196") // red
	colorQuery   = lipgloss.Color("39")  // blue
)

var (
	verboseStyle = lipgloss.NewStyle().Foreground(colorVerbose)
	errorStyle   = lipgloss.NewStyle().Foreground(colorError).Bold(true)
	queryStyle   = lipgloss.NewStyle().Foreground(colorQuery).Bold(true)
)

// StderrIsTerminal reports whether log output should be coloured.
// NO_COLOR and CI disable colour regardless of the terminal.
func StderrIsTerminal() bool {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func stylize(style lipgloss.Style, styled bool, s string) string {
	if !styled {
		return s
	}
	return style.Render(s)
}
