package ui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"mailcraft/storage"
)

func (a *AppView) applySessionFilter() {
	filter := a.sessionFilterInput.Value()
	if filter == "" {
		a.filteredSessionList = a.sessionList
	} else {
		targets := make([]string, len(a.sessionList))
		for i, s := range a.sessionList {
			targets[i] = s.Name
		}
		matches := fuzzy.Find(filter, targets)
		a.filteredSessionList = make([]storage.SessionMetadata, len(matches))
		for i, match := range matches {
			a.filteredSessionList[i] = a.sessionList[match.Index]
		}
	}
	if a.selectedSessionIdx >= len(a.filteredSessionList) {
		a.selectedSessionIdx = max(len(a.filteredSessionList)-1, 0)
	}
}

func (a AppView) handleSessionListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "alt+o":
		a.showSessionList = false
		a.sessionFilterInput.Blur()
		return a, nil

	case "up", "ctrl+p":
		if a.selectedSessionIdx > 0 {
			a.selectedSessionIdx--
		}
		return a, nil

	case "down", "ctrl+n":
		if a.selectedSessionIdx < len(a.filteredSessionList)-1 {
			a.selectedSessionIdx++
		}
		return a, nil

	case "enter":
		if len(a.filteredSessionList) == 0 {
			return a, nil
		}
		id := a.filteredSessionList[a.selectedSessionIdx].ID
		a.showSessionList = false
		a.sessionFilterInput.Blur()
		return a, a.dataModel.OpenSession(id)
	}

	var cmd tea.Cmd
	a.sessionFilterInput, cmd = a.sessionFilterInput.Update(msg)
	a.applySessionFilter()
	return a, cmd
}

func (a AppView) renderSessionList(width, height int) string {
	lines := []string{a.sessionFilterInput.View(), ""}

	if len(a.filteredSessionList) == 0 {
		lines = append(lines, DimStyle.Render("No saved templates"))
	}

	start := 0
	if a.selectedSessionIdx >= selectorVisibleRows {
		start = a.selectedSessionIdx - selectorVisibleRows + 1
	}
	end := min(start+selectorVisibleRows, len(a.filteredSessionList))

	for i := start; i < end; i++ {
		s := a.filteredSessionList[i]
		meta := DimStyle.Render(fmt.Sprintf("%s · %d msgs", s.UpdatedAt.Format("Jan 02 15:04"), s.MessageCount))
		name := padRight(truncate(s.Name, 40), 40)
		if i == a.selectedSessionIdx {
			lines = append(lines, SelectedStyle.Render("> "+name)+" "+meta)
		} else {
			lines = append(lines, "  "+name+" "+meta)
		}
	}

	footer := FormatFooter("↑/↓", "Navigate", "Enter", "Open", "Esc", "Close")
	return renderModal("Saved Templates", lines, footer, modalInfo, 72, width, height)
}
