package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	mutedColor       = lipgloss.Color("7")
	primaryColor    = lipgloss.Color("12")
	userColor   = lipgloss.Color("10")
	selectColor   = lipgloss.Color("11")
	errorColor    = lipgloss.Color("9")
	attentionColor = lipgloss.Color("13")
	frameColor    = lipgloss.Color("8")

	// User message style
	UserStyle = lipgloss.NewStyle().
			Foreground(userColor).
			Bold(true)
	// NO .Background() = transparent!

	// Model reply style
	AssistantStyle = lipgloss.NewStyle().
			Foreground(primaryColor)

	DimStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(errorColor)

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(primaryColor)

	StatusStyle = lipgloss.NewStyle().
			Foreground(mutedColor)

	SelectedStyle = lipgloss.NewStyle().
			Foreground(selectColor).
			Bold(true)

	HighlightStyle = lipgloss.NewStyle().
			Foreground(attentionColor).
			Bold(true)

	PaneStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(frameColor)

	LineNumberStyle = lipgloss.NewStyle().
			Foreground(frameColor)
)

// FormatFooter formats a footer string with alternating keys and descriptions.
// Usage: FormatFooter("Enter", "Select", "Esc", "Close")
func FormatFooter(parts ...string) string {
	descStyle := lipgloss.NewStyle().Foreground(primaryColor).Bold(true)
	var result []string
	for i := 0; i+1 < len(parts); i += 2 {
		result = append(result, parts[i]+" "+descStyle.Render(parts[i+1]))
	}
	return strings.Join(result, "  ")
}
