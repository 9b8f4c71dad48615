package ui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	appmodel "mailcraft/model"
	"mailcraft/storage"
)

type AppView struct {
	// Reference to core data model
	dataModel *appmodel.Model

	// UI Components
	viewport viewport.Model // chat history
	codeView viewport.Model // template source
	textarea textarea.Model

	// Window state
	width  int
	height int
	ready  bool

	loadingSpinner spinner.Model
	showHelp       bool

	// Browser preview, empty when disabled
	previewURL string

	// Short-lived status line message
	flash      string
	flashIsErr bool

	// API key screen
	showSettings   bool
	keyInput       textinput.Model
	settingsStatus string
	settingsErr    bool

	// Model selector
	showModelSelector bool
	selectorProvider  int // index into config.KnownProviders
	modelList         []appmodel.ModelInfo
	filteredModelList []appmodel.ModelInfo
	selectedModelIdx  int
	modelFilterInput  textinput.Model
	modelsLoading     bool
	modelListErr      error

	// Saved template picker
	showSessionList     bool
	sessionList         []storage.SessionMetadata
	filteredSessionList []storage.SessionMetadata
	selectedSessionIdx  int
	sessionFilterInput  textinput.Model
}

// NewAppView wraps dataModel in the bubbletea program. previewURL is shown
// in the workspace when the browser preview is running.
func NewAppView(dataModel *appmodel.Model, previewURL string) AppView {
	ta := textarea.New()
	ta.Placeholder = "Describe the email you want, or how to change the current one..."
	ta.Focus()
	ta.CharLimit = 0
	ta.ShowLineNumbers = false
	ta.SetHeight(3)
	ta.SetWidth(40)

	// Alt+Enter for newline, Enter alone submits (handled separately)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter"))

	ta.SetPromptFunc(2, func(lineIdx int) string {
		if lineIdx == 0 {
			return "> "
		}
		return "| "
	})

	keyInput := textinput.New()
	keyInput.Prompt = "API Key: "
	keyInput.EchoMode = textinput.EchoPassword
	keyInput.EchoCharacter = '•'
	keyInput.CharLimit = 256

	modelFilterInput := textinput.New()
	modelFilterInput.Prompt = "Filter: "
	modelFilterInput.CharLimit = 64

	sessionFilterInput := textinput.New()
	sessionFilterInput.Prompt = "Filter: "
	sessionFilterInput.CharLimit = 64

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = AssistantStyle

	return AppView{
		dataModel:          dataModel,
		viewport:           viewport.New(0, 0),
		codeView:           viewport.New(0, 0),
		textarea:           ta,
		loadingSpinner:     sp,
		previewURL:         previewURL,
		keyInput:           keyInput,
		modelFilterInput:   modelFilterInput,
		sessionFilterInput: sessionFilterInput,
	}
}

func (a AppView) Init() tea.Cmd {
	cmds := []tea.Cmd{textarea.Blink}

	// Rendering waits for the first WindowSizeMsg; only warm the model cache.
	if a.dataModel.HasCredential() {
		cmds = append(cmds, a.dataModel.FetchModelList(a.dataModel.ProviderID))
	}
	return tea.Batch(cmds...)
}

func (a AppView) View() string {
	if !a.ready {
		return "Loading mailcraft..."
	}

	// Modal rendering order: help, settings, model selector, sessions
	switch {
	case a.showHelp:
		return a.renderHelpModal(a.width, a.height)
	case a.showSettings:
		return a.renderSettings(a.width, a.height)
	case a.showModelSelector:
		return a.renderModelSelector(a.width, a.height)
	case a.showSessionList:
		return a.renderSessionList(a.width, a.height)
	}

	return a.renderMain()
}

// DataModel exposes the session state, for the caller to persist on exit.
func (a AppView) DataModel() *appmodel.Model {
	return a.dataModel
}
