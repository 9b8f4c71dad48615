package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sahilm/fuzzy"

	"mailcraft/config"
	appmodel "mailcraft/model"
)

const selectorVisibleRows = 12

func (a AppView) openModelSelector() (tea.Model, tea.Cmd) {
	a.showModelSelector = true
	a.selectorProvider = 0
	for i, id := range config.KnownProviders {
		if id == a.dataModel.ProviderID {
			a.selectorProvider = i
		}
	}
	a.modelFilterInput.SetValue("")
	a.modelFilterInput.Focus()
	a.textarea.Blur()
	load := a.loadSelectorModels()
	return a, tea.Batch(textinput.Blink, load)
}

// loadSelectorModels fetches the models of the provider shown in the selector.
func (a *AppView) loadSelectorModels() tea.Cmd {
	a.modelList = nil
	a.filteredModelList = nil
	a.selectedModelIdx = 0
	a.modelListErr = nil

	providerID := a.selectorProviderID()
	if appmodel.RequiresCredential(providerID) && a.dataModel.Credentials.Get(config.CredentialKey(providerID)) == "" {
		a.modelsLoading = false
		a.modelListErr = &appmodel.CredentialError{ProviderID: providerID}
		return nil
	}
	a.modelsLoading = true
	return a.dataModel.FetchModelList(providerID)
}

func (a *AppView) applyModelFilter() {
	filter := a.modelFilterInput.Value()
	if filter == "" {
		a.filteredModelList = a.modelList
	} else {
		targets := make([]string, len(a.modelList))
		for i, m := range a.modelList {
			targets[i] = m.Name + " " + m.ID
		}
		matches := fuzzy.Find(filter, targets)
		a.filteredModelList = make([]appmodel.ModelInfo, len(matches))
		for i, match := range matches {
			a.filteredModelList[i] = a.modelList[match.Index]
		}
	}
	if a.selectedModelIdx >= len(a.filteredModelList) {
		a.selectedModelIdx = max(len(a.filteredModelList)-1, 0)
	}
}

func (a AppView) closeModelSelector() AppView {
	a.showModelSelector = false
	a.modelFilterInput.Blur()
	a.textarea.Focus()
	return a
}

func (a AppView) handleModelSelectorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "alt+m":
		return a.closeModelSelector(), nil

	case "tab", "right":
		a.selectorProvider = (a.selectorProvider + 1) % len(config.KnownProviders)
		cmd := a.loadSelectorModels()
		return a, cmd

	case "shift+tab", "left":
		a.selectorProvider = (a.selectorProvider + len(config.KnownProviders) - 1) % len(config.KnownProviders)
		cmd := a.loadSelectorModels()
		return a, cmd

	case "up", "ctrl+p":
		if a.selectedModelIdx > 0 {
			a.selectedModelIdx--
		}
		return a, nil

	case "down", "ctrl+n":
		if a.selectedModelIdx < len(a.filteredModelList)-1 {
			a.selectedModelIdx++
		}
		return a, nil

	case "enter":
		if len(a.filteredModelList) == 0 {
			return a, nil
		}
		chosen := a.filteredModelList[a.selectedModelIdx]
		providerID := a.selectorProviderID()
		if providerID != a.dataModel.ProviderID {
			a.dataModel.SetProvider(providerID, chosen.ID)
		} else {
			a.dataModel.SetModel(chosen.ID)
		}
		a = a.closeModelSelector()
		cmd := a.setFlash(fmt.Sprintf("Using %s · %s", config.ProviderDisplayName(providerID), chosen.ID), false)
		return a, cmd
	}

	var cmd tea.Cmd
	a.modelFilterInput, cmd = a.modelFilterInput.Update(msg)
	a.applyModelFilter()
	return a, cmd
}

func (a AppView) renderModelSelector(width, height int) string {
	var tabs string
	for i, id := range config.KnownProviders {
		label := config.ProviderDisplayName(id)
		if i == a.selectorProvider {
			tabs += SelectedStyle.Render("["+label+"]") + " "
		} else {
			tabs += DimStyle.Render(label) + " "
		}
	}

	lines := []string{tabs, "", a.modelFilterInput.View(), ""}

	switch {
	case a.modelsLoading:
		lines = append(lines, DimStyle.Render("Loading models..."))
	case a.modelListErr != nil:
		lines = append(lines, ErrorStyle.Render(truncate(a.modelListErr.Error(), 70)))
	case len(a.filteredModelList) == 0:
		lines = append(lines, DimStyle.Render("No models match"))
	}

	start := 0
	if a.selectedModelIdx >= selectorVisibleRows {
		start = a.selectedModelIdx - selectorVisibleRows + 1
	}
	end := min(start+selectorVisibleRows, len(a.filteredModelList))

	for i := start; i < end; i++ {
		m := a.filteredModelList[i]
		label := padRight(truncate(m.Name, 36), 36)
		if m.Description != "" {
			label += " " + DimStyle.Render(truncate(m.Description, 30))
		}
		current := m.ID == a.dataModel.ModelID && a.selectorProviderID() == a.dataModel.ProviderID
		prefix := "  "
		if current {
			prefix = "• "
		}
		if i == a.selectedModelIdx {
			lines = append(lines, SelectedStyle.Render("> ")+SelectedStyle.Render(prefix+label))
		} else {
			lines = append(lines, "  "+prefix+label)
		}
	}

	footer := FormatFooter("Tab", "Provider", "↑/↓", "Navigate", "Enter", "Select", "Esc", "Close")
	return renderModal("Select Model", lines, footer, modalInfo, 80, width, height)
}
