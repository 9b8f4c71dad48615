package ui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mailcraft/config"
	appmodel "mailcraft/model"
)

func (a AppView) openSettings() (tea.Model, tea.Cmd) {
	a.showSettings = true
	a.settingsStatus = ""
	a.settingsErr = false
	a.keyInput.SetValue("")
	a.keyInput.Focus()
	a.textarea.Blur()
	return a, textinput.Blink
}

func (a AppView) closeSettings() AppView {
	a.showSettings = false
	a.keyInput.Blur()
	a.keyInput.SetValue("")
	a.textarea.Focus()
	return a
}

func (a AppView) handleSettingsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "alt+s":
		return a.closeSettings(), nil

	case "enter":
		value := strings.TrimSpace(a.keyInput.Value())
		if value == "" && !a.dataModel.HasCredential() {
			a.settingsStatus = "Paste a key first"
			a.settingsErr = true
			return a, nil
		}
		a.keyInput.SetValue("")
		if value == "" {
			a.settingsStatus = "Removing key..."
		} else {
			a.settingsStatus = "Saving key..."
		}
		a.settingsErr = false
		return a, a.dataModel.SaveCredentialCmd(value)

	case "ctrl+d":
		a.keyInput.SetValue("")
		a.settingsStatus = "Removing key..."
		a.settingsErr = false
		return a, a.dataModel.SaveCredentialCmd("")
	}

	var cmd tea.Cmd
	a.keyInput, cmd = a.keyInput.Update(msg)
	return a, cmd
}

func (a AppView) renderSettings(width, height int) string {
	providerID := a.dataModel.ProviderID
	name := config.ProviderDisplayName(providerID)

	var lines []string
	if !appmodel.RequiresCredential(providerID) {
		lines = append(lines, name+" runs locally and needs no API key.")
	} else {
		state := ErrorStyle.Render("missing")
		if a.dataModel.HasCredential() {
			state = SelectedStyle.Render("stored")
		}
		lines = append(lines,
			"Provider: "+name,
			"Current key: "+state,
			"Storage: "+string(a.dataModel.Credentials.Method()),
			"",
			a.keyInput.View(),
		)
	}

	if a.settingsStatus != "" {
		style := DimStyle
		if a.settingsErr {
			style = ErrorStyle
		}
		lines = append(lines, "", style.Render(a.settingsStatus))
	}

	kind := modalInfo
	switch {
	case a.settingsErr:
		kind = modalError
	case !a.dataModel.HasCredential():
		kind = modalWarning
	}

	footer := FormatFooter("Enter", "Save", "Ctrl+D", "Remove key", "Esc", "Close")
	return renderModal(name+" API Key", lines, footer, kind, 64, width, height)
}
