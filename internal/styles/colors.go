// Package styles holds the lipgloss styles of the CLI output.
package styles

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Monokai Pro color palette
const (
	Foreground = "#FCFCFA"

	Red    = "#FF6188" // Errors
	Orange = "#FC9867" // Warnings, skipped files
	Yellow = "#FFD866" // Highlights
	Green  = "#A9DC76" // Success
	Cyan   = "#78DCE8" // Info
	Pink   = "#FF6188" // Titles

	Comment = "#727072" // Dim text, help
	Border  = "#5B595C"
)

var (
	SuccessStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Green))
	ErrorStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color(Red))
	WarningStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Orange))
	InfoStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Cyan))
	DimStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))
	TitleStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(Pink))
	HighlightStyle = lipgloss.NewStyle().Foreground(lipgloss.Color(Yellow)).Bold(true)
	SpinnerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color(Pink))
	HelpStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color(Comment))

	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color(Pink))

	BoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color(Border)).
			Padding(0, 1)

	NormalTextStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color(Foreground))
)

// Mark returns the status glyph used in per-file lines.
func Mark(status string) string {
	switch status {
	case "translated":
		return SuccessStyle.Render("✓")
	case "skipped":
		return WarningStyle.Render("○")
	default:
		return ErrorStyle.Render("✗")
	}
}

// Quota renders character usage, e.g. "12,345 / 500,000 characters".
func Quota(used, limit int64) string {
	style := SuccessStyle
	if limit > 0 && used*10 >= limit*9 {
		style = WarningStyle
	}
	return style.Render(fmt.Sprintf("%s / %s characters", grouped(used), grouped(limit)))
}

func grouped(n int64) string {
	s := fmt.Sprint(n)
	if n < 0 {
		return s
	}
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "," + s[i:]
	}
	return s
}
