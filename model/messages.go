package model

import (
	"mailcraft/storage"
	"mailcraft/stream"

	tea "github.com/charmbracelet/bubbletea"
)

// StreamChunkMsg carries the live display value after one fragment.
type StreamChunkMsg struct {
	Display string
	Stream  <-chan tea.Msg
}

type StreamDoneMsg struct {
	Result stream.Result
}

type StreamErrorMsg struct {
	Err     error
	Partial stream.Result
}

type MarkdownRenderedMsg struct {
	MessageIndex int
	Rendered     string
}

type ModelsListMsg struct {
	ProviderID string
	Models     []ModelInfo
	Err        error
}

type ProviderPingMsg struct {
	ProviderID string
	Err        error
}

type CredentialSavedMsg struct {
	Err error
}

type SessionsListMsg struct {
	Sessions []storage.SessionMetadata
	Err      error
}

type SessionLoadedMsg struct {
	Session *storage.Session
	Err     error
}

type SessionSavedMsg struct {
	Err error
}

type TemplateExportedMsg struct {
	Path string
	Err  error
}

type TemplateCopiedMsg struct {
	Err error
}

type TestEmailSentMsg struct {
	To  string
	Err error
}

type FlashTickMsg struct{}
