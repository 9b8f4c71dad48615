package ui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

func (a AppView) renderHelpModal(width, height int) string {
	green := lipgloss.NewStyle().
		Bold(true).
		Foreground(userColor)

	title := green.Render("mailcraft - Keyboard Shortcuts")

	blue := lipgloss.NewStyle().Foreground(primaryColor)

	row := func(k, desc string) string {
		return fmt.Sprintf("• %-11s %s", k, desc)
	}

	templateActions := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Template"),
		row("Enter", "Generate / apply change"),
		row("Alt+Enter", "New line"),
		row("Alt+V", "Cycle split/preview/code"),
		row("Alt+Y", "Copy HTML"),
		row("Alt+E", "Export to ~/Downloads"),
		row("Alt+T", "Send test email"),
		row("Alt+N", "New template"),
		row("Alt+O", "Open saved template"),
	)

	global := lipgloss.JoinVertical(
		lipgloss.Left,
		blue.Render("## Global"),
		row("Alt+S", "API key"),
		row("Alt+M", "Model selection"),
		row("PgUp/PgDn", "Scroll code"),
		row("Alt+↑/↓", "Scroll chat"),
		row("Alt+H", "Toggle this help"),
		row("Alt+Q", "Quit"),
	)

	columnStyle := lipgloss.NewStyle().Width(40).PaddingLeft(4)

	twoColumns := lipgloss.JoinHorizontal(
		lipgloss.Top,
		columnStyle.Render(templateActions),
		columnStyle.Render(global),
	)

	footer := lipgloss.NewStyle().
		Foreground(mutedColor).
		Render("Press Alt+H or Esc to close this help")

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		title,
		"",
		twoColumns,
		"",
		footer,
	)

	helpBox := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(frameColor).
		Padding(1, 2)

	return lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		helpBox.Render(content),
	)
}
