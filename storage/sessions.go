package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Message struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// Session is a saved conversation together with the latest template.
// Earlier template versions are not kept.
type Session struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	Model     string    `json:"model"`
	ViewMode  string    `json:"view_mode,omitempty"`
	Template  string    `json:"template"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// SessionMetadata is the lightweight form used for listings.
type SessionMetadata struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Provider     string    `json:"provider"`
	Model        string    `json:"model"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	MessageCount int       `json:"message_count"`
	TemplateSize int       `json:"template_size"`
}

type SessionStorage struct {
	sessionsDir string
}

func NewSessionStorage(dataDir string) (*SessionStorage, error) {
	sessionsDir := filepath.Join(dataDir, "sessions")

	if err := os.MkdirAll(sessionsDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &SessionStorage{sessionsDir: sessionsDir}, nil
}

func (s *SessionStorage) sessionPath(id string) string {
	return filepath.Join(s.sessionsDir, id+".json")
}

// Save writes the session, assigning an ID and timestamps as needed.
func (s *SessionStorage) Save(session *Session) error {
	if session.ID == "" {
		session.ID = uuid.New().String()
	}

	session.UpdatedAt = time.Now()
	if session.CreatedAt.IsZero() {
		session.CreatedAt = session.UpdatedAt
	}

	data, err := json.MarshalIndent(session, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	// Session files hold prompts and templates; keep them private.
	if err := os.WriteFile(s.sessionPath(session.ID), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}
	return nil
}

func (s *SessionStorage) Load(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("invalid session id %q: %w", id, err)
	}

	data, err := os.ReadFile(s.sessionPath(id))
	if err != nil {
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var session Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

// List returns metadata for all readable sessions, newest first.
func (s *SessionStorage) List() ([]SessionMetadata, error) {
	entries, err := os.ReadDir(s.sessionsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var sessions []SessionMetadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(s.sessionsDir, entry.Name()))
		if err != nil {
			continue
		}

		var session Session
		if err := json.Unmarshal(data, &session); err != nil {
			continue // corrupted
		}

		sessions = append(sessions, SessionMetadata{
			ID:           session.ID,
			Name:         session.Name,
			Provider:     session.Provider,
			Model:        session.Model,
			CreatedAt:    session.CreatedAt,
			UpdatedAt:    session.UpdatedAt,
			MessageCount: len(session.Messages),
			TemplateSize: len(session.Template),
		})
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].UpdatedAt.After(sessions[j].UpdatedAt)
	})
	return sessions, nil
}

func (s *SessionStorage) Delete(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return fmt.Errorf("invalid session id %q: %w", id, err)
	}
	if err := os.Remove(s.sessionPath(id)); err != nil {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

func (s *SessionStorage) currentIDPath() string {
	return filepath.Join(filepath.Dir(s.sessionsDir), "current_session.id")
}

func (s *SessionStorage) SaveCurrentSessionID(id string) error {
	return os.WriteFile(s.currentIDPath(), []byte(id), 0600)
}

func (s *SessionStorage) LoadCurrentSessionID() (string, error) {
	data, err := os.ReadFile(s.currentIDPath())
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

// LoadCurrent returns the last active session, or nil if there is none or
// it can no longer be read.
func (s *SessionStorage) LoadCurrent() *Session {
	id, err := s.LoadCurrentSessionID()
	if err != nil || id == "" {
		return nil
	}
	session, err := s.Load(id)
	if err != nil {
		return nil
	}
	return session
}

// SanitizeFilename replaces characters that are unsafe in filenames.
func SanitizeFilename(name string) string {
	name = strings.Map(func(r rune) rune {
		switch r {
		case '/', '\\', ':', '*', '?', '"', '<', '>', '|', ' ', '\n', '\r', '\t':
			return '-'
		}
		return r
	}, name)

	name = strings.Trim(name, "-.")

	if len(name) > 50 {
		name = name[:50]
	}
	if name == "" {
		name = "template"
	}
	return name
}

// GenerateExportPath returns ~/Downloads/mailcraft-<name>-<timestamp>.html.
func GenerateExportPath(sessionName string) string {
	homeDir := os.Getenv("HOME")
	if homeDir == "" {
		homeDir = os.Getenv("USERPROFILE")
	}

	filename := fmt.Sprintf("mailcraft-%s-%s.html",
		SanitizeFilename(sessionName), time.Now().Format("20060102-150405"))
	return filepath.Join(homeDir, "Downloads", filename)
}

// ExportTemplate writes html to path, creating parent directories.
func ExportTemplate(path, html string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(html), 0600); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// GenerateSessionName derives a session name from the first instruction.
func GenerateSessionName(firstMessage string) string {
	name := strings.Join(strings.Fields(firstMessage), " ")
	if name == "" {
		return fmt.Sprintf("Template %s", time.Now().Format("Jan 2, 3:04 PM"))
	}

	runes := []rune(name)
	if len(runes) > 30 {
		name = string(runes[:30]) + "..."
	}
	return name
}

type SessionMatch struct {
	SessionID    string
	SessionName  string
	MessageIndex int
	Role         string
	Preview      string
	Timestamp    time.Time
}

// Search finds messages across all sessions containing query,
// case-insensitively.
func (s *SessionStorage) Search(query string) ([]SessionMatch, error) {
	if query == "" {
		return nil, nil
	}

	list, err := s.List()
	if err != nil {
		return nil, err
	}

	queryLower := strings.ToLower(query)
	var matches []SessionMatch
	for _, meta := range list {
		session, err := s.Load(meta.ID)
		if err != nil {
			continue
		}

		for i, msg := range session.Messages {
			if !strings.Contains(strings.ToLower(msg.Content), queryLower) {
				continue
			}
			preview := msg.Content
			if len(preview) > 100 {
				preview = preview[:100] + "..."
			}
			matches = append(matches, SessionMatch{
				SessionID:    session.ID,
				SessionName:  session.Name,
				MessageIndex: i,
				Role:         msg.Role,
				Preview:      preview,
				Timestamp:    msg.Timestamp,
			})
		}
	}
	return matches, nil
}
