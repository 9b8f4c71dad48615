package model

import (
	"context"
	"strings"
	"time"

	"mailcraft/config"
	"mailcraft/mailer"
	"mailcraft/storage"
)

// PrefStore persists small non-secret preferences.
type PrefStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// TemplatePublisher receives every change of the current template, for
// example the live browser preview.
type TemplatePublisher interface {
	Publish(html string)
}

// Model holds the conversation, the current template and the in-flight flag.
// It is mutated only from the bubbletea Update loop (or a single CLI
// goroutine); provider streaming reaches it through messages.
type Model struct {
	// Core dependencies
	Config         *config.Config
	Credentials    *config.CredentialStore
	SessionStorage *storage.SessionStorage
	Prefs          PrefStore
	NewProvider    ProviderFactory
	Mailer         mailer.EmailSender
	Preview        TemplatePublisher

	// ctx bounds background work; cancelled when the program exits.
	ctx context.Context

	// Application data
	Messages       []Message
	Template       string
	CurrentSession *storage.Session

	// Runtime state
	Generating   bool
	ViewMode     ViewMode
	ProviderID   string
	ModelID      string
	Temperature  float64
	SessionDirty bool

	ModelCache  map[string][]ModelInfo
	CacheExpiry map[string]time.Time

	Version string
}

// Options are the optional collaborators of a Model.
type Options struct {
	SessionStorage *storage.SessionStorage
	Prefs          PrefStore
	Mailer         mailer.EmailSender
	Preview        TemplatePublisher
	LastSession    *storage.Session
	Version        string
}

// NewModel builds the session state from configuration, stored preferences
// and, when given, the last saved session.
func NewModel(ctx context.Context, cfg *config.Config, factory ProviderFactory, opts Options) *Model {
	m := &Model{
		Config:         cfg,
		Credentials:    cfg.CredentialStore,
		SessionStorage: opts.SessionStorage,
		Prefs:          opts.Prefs,
		NewProvider:    factory,
		Mailer:         opts.Mailer,
		Preview:        opts.Preview,
		ctx:            ctx,
		Template:       PlaceholderTemplate,
		ViewMode:       ViewSplit,
		ProviderID:     cfg.DefaultProvider,
		ModelID:        cfg.DefaultModel,
		Temperature:    cfg.Temperature,
		ModelCache:     make(map[string][]ModelInfo),
		CacheExpiry:    make(map[string]time.Time),
		Version:        opts.Version,
	}
	if m.Credentials == nil {
		m.Credentials = config.NewCredentialStore(config.SecurityPlainText, "")
	}

	m.loadPrefs()

	if opts.LastSession != nil {
		m.restoreSession(opts.LastSession)
	}

	m.publish()
	return m
}

func (m *Model) loadPrefs() {
	if m.Prefs == nil {
		return
	}
	if v, ok, _ := m.Prefs.Get(storage.PrefProvider); ok && config.IsKnownProvider(v) {
		m.ProviderID = v
	}
	if v, ok, _ := m.Prefs.Get(storage.PrefModel); ok && v != "" {
		m.ModelID = v
	}
	if v, ok, _ := m.Prefs.Get(storage.PrefViewMode); ok {
		if mode, valid := ParseViewMode(v); valid {
			m.ViewMode = mode
		}
	}
}

func (m *Model) setPref(key, value string) {
	if m.Prefs == nil {
		return
	}
	if err := m.Prefs.Set(key, value); err != nil {
		config.DebugLog.Warnw("failed to persist preference", "key", key, "err", err)
	}
}

func (m *Model) publish() {
	if m.Preview != nil {
		m.Preview.Publish(m.Template)
	}
}

// Context is the lifetime of the running program.
func (m *Model) Context() context.Context {
	if m.ctx == nil {
		return context.Background()
	}
	return m.ctx
}

// Submit starts an exchange. It rejects empty input and a second submission
// while one is in flight, without touching any state. On success the user
// message is appended, the template is cleared and the request for the
// provider is returned.
func (m *Model) Submit(text string) (GenerateRequest, error) {
	if m.Generating {
		return GenerateRequest{}, ErrGenerationInFlight
	}
	if strings.TrimSpace(text) == "" {
		return GenerateRequest{}, ErrEmptyInput
	}

	var prior string
	if m.Template != PlaceholderTemplate {
		prior = m.Template
	}

	m.Messages = append(m.Messages, newMessage(RoleUser, text))
	m.Generating = true
	m.SessionDirty = true
	m.Template = ""
	m.publish()

	config.DebugLog.Debugw("submit", "provider", m.ProviderID, "model", m.ModelID, "edit", prior != "")

	return GenerateRequest{
		ProviderID:        m.ProviderID,
		Model:             m.ModelID,
		APIKey:            m.APIKey(),
		Instruction:       text,
		PriorHTML:         prior,
		SystemInstruction: SystemInstruction,
		Temperature:       m.Temperature,
	}, nil
}

// ApplyDisplay replaces the template with the live display value.
func (m *Model) ApplyDisplay(display string) {
	if !m.Generating {
		return
	}
	m.Template = display
	m.publish()
}

// Complete installs the cleaned final template and confirms in the chat.
func (m *Model) Complete(final string) {
	m.Template = final
	m.Messages = append(m.Messages, newMessage(RoleModel, ConfirmationMessage))
	m.Generating = false
	m.SessionDirty = true
	m.publish()
}

// Fail reports err in the chat. Whatever streamed before the failure stays
// in the template.
func (m *Model) Fail(err error) {
	config.DebugLog.Debugw("generation failed", "err", err)
	m.Messages = append(m.Messages, newMessage(RoleModel, DescribeFailure(err)))
	m.Generating = false
	m.SessionDirty = true
}

// APIKey returns the stored key for the current provider.
func (m *Model) APIKey() string {
	return m.Credentials.Get(config.CredentialKey(m.ProviderID))
}

// HasCredential reports whether the current provider can be called.
func (m *Model) HasCredential() bool {
	return !RequiresCredential(m.ProviderID) || strings.TrimSpace(m.APIKey()) != ""
}

// SetCredential stores and persists the API key for the current provider.
// An empty key removes it.
func (m *Model) SetCredential(key string) error {
	name := config.CredentialKey(m.ProviderID)
	key = strings.TrimSpace(key)
	if key == "" {
		m.Credentials.Delete(name)
	} else {
		m.Credentials.Set(name, key)
	}
	if m.Config == nil {
		return nil
	}
	return m.Credentials.Save(m.Config.DataDir())
}

func (m *Model) SetModel(modelID string) {
	m.ModelID = modelID
	m.setPref(storage.PrefModel, modelID)
}

// SetProvider switches provider and selects modelID (the provider's default
// when empty).
func (m *Model) SetProvider(providerID, modelID string) {
	m.ProviderID = providerID
	m.setPref(storage.PrefProvider, providerID)
	m.SetModel(modelID)
}

func (m *Model) SetViewMode(mode ViewMode) {
	m.ViewMode = mode
	m.setPref(storage.PrefViewMode, string(mode))
}

// HasTemplate reports whether there is generated output to copy, export or send.
func (m *Model) HasTemplate() bool {
	return !m.Generating && m.Template != "" && m.Template != PlaceholderTemplate
}

// NeedsCredentialAttention is true when the last reply complains about the
// API key or a provider error, so the UI can point at the settings.
func (m *Model) NeedsCredentialAttention() bool {
	if len(m.Messages) == 0 {
		return !m.HasCredential()
	}
	last := m.Messages[len(m.Messages)-1]
	return last.Role == RoleModel &&
		(strings.Contains(last.Content, "API Key") || strings.Contains(last.Content, "Error"))
}

// Reset starts a new template from the placeholder.
func (m *Model) Reset() error {
	if m.Generating {
		return ErrGenerationInFlight
	}
	m.Messages = nil
	m.Template = PlaceholderTemplate
	m.CurrentSession = nil
	m.SessionDirty = false
	m.publish()
	return nil
}
