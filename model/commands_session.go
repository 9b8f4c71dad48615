package model

import (
	"context"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"mailcraft/config"
	"mailcraft/mailer"
	"mailcraft/storage"
)

func (m *Model) restoreSession(s *storage.Session) {
	m.Messages = nil
	for _, sm := range s.Messages {
		m.Messages = append(m.Messages, Message{
			Role:      Role(sm.Role),
			Content:   sm.Content,
			Timestamp: sm.Timestamp,
		})
	}

	m.Template = s.Template
	if m.Template == "" {
		m.Template = PlaceholderTemplate
	}
	if s.Provider != "" && config.IsKnownProvider(s.Provider) {
		m.ProviderID = s.Provider
		m.ModelID = s.Model
	}
	if mode, ok := ParseViewMode(s.ViewMode); ok {
		m.ViewMode = mode
	}
	m.CurrentSession = s
	m.SessionDirty = false
}

// LoadSession replaces the conversation and template with a saved session.
func (m *Model) LoadSession(s *storage.Session) error {
	if m.Generating {
		return ErrGenerationInFlight
	}
	m.restoreSession(s)
	m.publish()
	return nil
}

// snapshot copies the conversation into the current storage session,
// creating it on first save.
func (m *Model) snapshot() *storage.Session {
	if m.CurrentSession == nil {
		m.CurrentSession = &storage.Session{
			Name: storage.GenerateSessionName(m.firstInstruction()),
		}
	}

	msgs := make([]storage.Message, 0, len(m.Messages))
	for _, msg := range m.Messages {
		msgs = append(msgs, storage.Message{
			Role:      string(msg.Role),
			Content:   msg.Content,
			Timestamp: msg.Timestamp,
		})
	}

	s := m.CurrentSession
	if s.ID == "" {
		s.ID = uuid.New().String()
		s.CreatedAt = time.Now()
	}
	s.Messages = msgs
	s.Provider = m.ProviderID
	s.Model = m.ModelID
	s.ViewMode = string(m.ViewMode)
	s.Template = ""
	if m.Template != PlaceholderTemplate {
		s.Template = m.Template
	}

	copied := *s
	return &copied
}

func (m *Model) firstInstruction() string {
	for _, msg := range m.Messages {
		if msg.Role == RoleUser {
			return msg.Content
		}
	}
	return ""
}

// SaveSessionNow writes the session synchronously.
func (m *Model) SaveSessionNow() error {
	if m.SessionStorage == nil || len(m.Messages) == 0 {
		return nil
	}
	session := m.snapshot()
	if err := m.SessionStorage.Save(session); err != nil {
		return err
	}
	m.SessionDirty = false
	return m.SessionStorage.SaveCurrentSessionID(session.ID)
}

// SaveSession persists the session in the background.
func (m *Model) SaveSession() tea.Cmd {
	if m.SessionStorage == nil || len(m.Messages) == 0 {
		return nil
	}

	session := m.snapshot()
	ss := m.SessionStorage
	m.SessionDirty = false
	return func() tea.Msg {
		err := ss.Save(session)
		if err == nil {
			err = ss.SaveCurrentSessionID(session.ID)
		}
		return SessionSavedMsg{Err: err}
	}
}

func (m *Model) FetchSessionList() tea.Cmd {
	if m.SessionStorage == nil {
		return nil
	}
	ss := m.SessionStorage
	return func() tea.Msg {
		sessions, err := ss.List()
		return SessionsListMsg{Sessions: sessions, Err: err}
	}
}

func (m *Model) OpenSession(id string) tea.Cmd {
	if m.SessionStorage == nil {
		return nil
	}
	ss := m.SessionStorage
	return func() tea.Msg {
		s, err := ss.Load(id)
		return SessionLoadedMsg{Session: s, Err: err}
	}
}

// ExportTemplateNow writes the current template to path.
func (m *Model) ExportTemplateNow(path string) error {
	if !m.HasTemplate() {
		return ErrNoTemplate
	}
	return storage.ExportTemplate(path, m.Template)
}

// ExportTemplate writes the current template to path, or to a generated
// path under ~/Downloads when path is empty.
func (m *Model) ExportTemplate(path string) tea.Cmd {
	if path == "" {
		path = storage.GenerateExportPath(m.sessionName())
	}
	if !m.HasTemplate() {
		return func() tea.Msg { return TemplateExportedMsg{Path: path, Err: ErrNoTemplate} }
	}
	html := m.Template
	return func() tea.Msg {
		return TemplateExportedMsg{Path: path, Err: storage.ExportTemplate(path, html)}
	}
}

func (m *Model) sessionName() string {
	if m.CurrentSession != nil && m.CurrentSession.Name != "" {
		return m.CurrentSession.Name
	}
	return storage.GenerateSessionName(m.firstInstruction())
}

// TestEmailParams builds the test send of the current template.
func (m *Model) TestEmailParams(to string) (mailer.SendEmailParams, error) {
	if !m.HasTemplate() {
		return mailer.SendEmailParams{}, ErrNoTemplate
	}
	if to == "" && m.Config != nil {
		to = m.Config.Mailer.Recipient
	}
	return mailer.NewTestParams(to, m.sessionName(), m.Template), nil
}

// SendTestEmail sends the current template to to (the configured recipient
// when empty).
func (m *Model) SendTestEmail(ctx context.Context, to string) error {
	if m.Mailer == nil {
		return fmt.Errorf("%w: no sender configured", mailer.ErrInvalidConfig)
	}
	params, err := m.TestEmailParams(to)
	if err != nil {
		return err
	}
	return m.Mailer.SendEmail(ctx, params)
}

func (m *Model) SendTestEmailCmd(to string) tea.Cmd {
	params, err := m.TestEmailParams(to)
	if err != nil {
		return func() tea.Msg { return TestEmailSentMsg{To: to, Err: err} }
	}
	sender := m.Mailer
	ctx := m.Context()
	return func() tea.Msg {
		if sender == nil {
			return TestEmailSentMsg{To: params.SendTo, Err: fmt.Errorf("%w: no sender configured", mailer.ErrInvalidConfig)}
		}
		ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
		defer cancel()
		return TestEmailSentMsg{To: params.SendTo, Err: sender.SendEmail(ctx, params)}
	}
}
