package ui

import (
	"errors"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"mailcraft/config"
	appmodel "mailcraft/model"
)

const flashDuration = 3 * time.Second

func (a AppView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		cmd  tea.Cmd
		cmds []tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.layout()
		if !a.ready {
			a.ready = true
			cmds = append(cmds, a.renderPendingMarkdown()...)
		}
		a.updateViewportContent(true)
		a.updateCodeView(false)
		return a, tea.Batch(cmds...)

	case spinner.TickMsg:
		if !a.dataModel.Generating {
			return a, nil
		}
		a.loadingSpinner, cmd = a.loadingSpinner.Update(msg)
		a.updateViewportContent(true)
		return a, cmd

	case streamChunkMsg, streamDoneMsg, streamErrorMsg:
		return a.handleStreamingMessage(msg)

	case markdownRenderedMsg:
		if msg.MessageIndex >= 0 && msg.MessageIndex < len(a.dataModel.Messages) {
			a.dataModel.Messages[msg.MessageIndex].Rendered = msg.Rendered
			a.updateViewportContent(true)
		}
		return a, nil

	case modelsListMsg:
		if msg.ProviderID != a.selectorProviderID() {
			return a, nil
		}
		a.modelsLoading = false
		a.modelListErr = msg.Err
		if msg.Err != nil {
			config.DebugLog.Warnw("model list failed", "provider", msg.ProviderID, "err", msg.Err)
			a.modelList = nil
		} else {
			a.dataModel.CacheModels(msg.ProviderID, msg.Models)
			a.modelList = msg.Models
		}
		a.applyModelFilter()
		return a, nil

	case providerPingMsg:
		if msg.Err != nil {
			a.settingsStatus = "Key saved, but the provider rejected it: " + msg.Err.Error()
			a.settingsErr = true
		} else {
			a.settingsStatus = "Key verified with " + config.ProviderDisplayName(msg.ProviderID)
			a.settingsErr = false
		}
		return a, nil

	case credentialSavedMsg:
		if msg.Err != nil {
			a.settingsStatus = "Could not save key: " + msg.Err.Error()
			a.settingsErr = true
			return a, nil
		}
		a.settingsStatus = "Key saved"
		a.settingsErr = false
		cmd := a.setFlash("API key updated", false)
		return a, cmd

	case sessionSavedMsg:
		if msg.Err != nil {
			config.DebugLog.Errorw("session save failed", "err", msg.Err)
			cmd := a.setFlash("Could not save session: "+msg.Err.Error(), true)
			return a, cmd
		}
		return a, nil

	case sessionsListMsg:
		if msg.Err != nil {
			a.showSessionList = false
			cmd := a.setFlash("Could not list saved templates: "+msg.Err.Error(), true)
			return a, cmd
		}
		a.sessionList = msg.Sessions
		a.applySessionFilter()
		return a, nil

	case sessionLoadedMsg:
		if msg.Err != nil {
			cmd := a.setFlash("Could not open template: "+msg.Err.Error(), true)
			return a, cmd
		}
		if err := a.dataModel.LoadSession(msg.Session); err != nil {
			cmd := a.setFlash(err.Error(), true)
			return a, cmd
		}
		a.updateViewportContent(true)
		a.updateCodeView(true)
		cmds = append(cmds, a.renderPendingMarkdown()...)
		cmds = append(cmds, a.setFlash("Opened "+msg.Session.Name, false))
		return a, tea.Batch(cmds...)

	case templateExportedMsg:
		if msg.Err != nil {
			cmd := a.setFlash("Export failed: "+msg.Err.Error(), true)
			return a, cmd
		}
		cmd := a.setFlash("Exported to "+msg.Path, false)
		return a, cmd

	case templateCopiedMsg:
		if msg.Err != nil {
			cmd := a.setFlash("Copy failed: "+msg.Err.Error(), true)
			return a, cmd
		}
		cmd := a.setFlash("HTML copied to clipboard", false)
		return a, cmd

	case testEmailSentMsg:
		if msg.Err != nil {
			cmd := a.setFlash("Test email failed: "+msg.Err.Error(), true)
			return a, cmd
		}
		cmd := a.setFlash("Test email sent to "+msg.To, false)
		return a, cmd

	case flashTickMsg:
		a.flash = ""
		a.flashIsErr = false
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a AppView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "alt+q":
		if err := a.dataModel.SaveSessionNow(); err != nil {
			config.DebugLog.Errorw("final session save failed", "err", err)
		}
		return a, tea.Quit
	}

	switch {
	case a.showHelp:
		if msg.String() == "esc" || msg.String() == "alt+h" {
			a.showHelp = false
		}
		return a, nil
	case a.showSettings:
		return a.handleSettingsKey(msg)
	case a.showModelSelector:
		return a.handleModelSelectorKey(msg)
	case a.showSessionList:
		return a.handleSessionListKey(msg)
	}

	switch msg.String() {
	case "enter":
		return a.submit()

	case "alt+h":
		a.showHelp = true
		return a, nil

	case "alt+v":
		a.dataModel.SetViewMode(a.dataModel.ViewMode.Next())
		a.layout()
		a.updateCodeView(false)
		return a, nil

	case "alt+y":
		if !a.dataModel.HasTemplate() {
			cmd := a.setFlash(appmodel.ErrNoTemplate.Error(), true)
			return a, cmd
		}
		html := a.dataModel.Template
		return a, func() tea.Msg {
			return templateCopiedMsg{Err: clipboard.WriteAll(html)}
		}

	case "alt+s":
		return a.openSettings()

	case "alt+m":
		return a.openModelSelector()

	case "alt+o":
		if a.dataModel.Generating {
			return a, nil
		}
		a.showSessionList = true
		a.selectedSessionIdx = 0
		a.sessionFilterInput.SetValue("")
		a.sessionFilterInput.Focus()
		return a, tea.Batch(textinput.Blink, a.dataModel.FetchSessionList())

	case "alt+n":
		if err := a.dataModel.Reset(); err != nil {
			cmd := a.setFlash(err.Error(), true)
			return a, cmd
		}
		a.updateViewportContent(true)
		a.updateCodeView(true)
		cmd := a.setFlash("Started a new template", false)
		return a, cmd

	case "alt+e":
		return a, a.dataModel.ExportTemplate("")

	case "alt+t":
		if a.dataModel.Mailer == nil {
			cmd := a.setFlash("No email sender configured", true)
			return a, cmd
		}
		return a, a.dataModel.SendTestEmailCmd("")

	case "pgdown", "alt+j":
		a.codeView.HalfViewDown()
		return a, nil

	case "pgup", "alt+k":
		a.codeView.HalfViewUp()
		return a, nil

	case "alt+down":
		a.viewport.LineDown(3)
		return a, nil

	case "alt+up":
		a.viewport.LineUp(3)
		return a, nil
	}

	// Input is locked while a template is being generated.
	if a.dataModel.Generating {
		return a, nil
	}

	var cmd tea.Cmd
	a.textarea, cmd = a.textarea.Update(msg)
	return a, cmd
}

func (a AppView) submit() (tea.Model, tea.Cmd) {
	text := a.textarea.Value()
	req, err := a.dataModel.Submit(text)
	if err != nil {
		if errors.Is(err, appmodel.ErrEmptyInput) || errors.Is(err, appmodel.ErrGenerationInFlight) {
			return a, nil
		}
		cmd := a.setFlash(err.Error(), true)
		return a, cmd
	}

	a.textarea.Reset()
	userIdx := len(a.dataModel.Messages) - 1
	a.updateViewportContent(true)
	a.updateCodeView(true)

	return a, tea.Batch(
		a.dataModel.SendToModel(req),
		a.loadingSpinner.Tick,
		a.renderMarkdownAsync(userIdx, text),
	)
}

// setFlash shows text in the status line for a few seconds.
func (a *AppView) setFlash(text string, isErr bool) tea.Cmd {
	a.flash = strings.TrimSpace(text)
	a.flashIsErr = isErr
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashTickMsg{}
	})
}

// renderPendingMarkdown renders every message that has no cached rendering.
func (a AppView) renderPendingMarkdown() []tea.Cmd {
	var cmds []tea.Cmd
	for i, msg := range a.dataModel.Messages {
		if msg.Rendered == "" {
			cmds = append(cmds, a.renderMarkdownAsync(i, msg.Content))
		}
	}
	return cmds
}

func (a AppView) selectorProviderID() string {
	if a.selectorProvider < 0 || a.selectorProvider >= len(config.KnownProviders) {
		return a.dataModel.ProviderID
	}
	return config.KnownProviders[a.selectorProvider]
}
