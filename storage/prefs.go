package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"
)

// Preference keys shared by the TUI and the CLI.
const (
	PrefProvider = "provider"
	PrefModel    = "model"
	PrefViewMode = "view_mode"
)

// PrefStore is a small sqlite-backed key/value table for non-secret
// preferences that should survive restarts. API keys never go here.
type PrefStore struct {
	db *sql.DB
}

func NewPrefStore(dataDir string) (*PrefStore, error) {
	return openPrefStore(filepath.Join(dataDir, "prefs.db"))
}

func openPrefStore(dsn string) (*PrefStore, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	ps := &PrefStore{db: db}
	if err := ps.initialize(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	return ps, nil
}

func (ps *PrefStore) initialize() error {
	_, err := ps.db.Exec(`
	CREATE TABLE IF NOT EXISTS preferences (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL,
		updated_at DATETIME NOT NULL
	);`)
	return err
}

// Get returns the stored value and whether the key exists.
func (ps *PrefStore) Get(key string) (string, bool, error) {
	var value string
	err := ps.db.QueryRow(`SELECT value FROM preferences WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, true, nil
}

func (ps *PrefStore) Set(key, value string) error {
	_, err := ps.db.Exec(`
	INSERT INTO preferences (key, value, updated_at) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		key, value, time.Now())
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (ps *PrefStore) Delete(key string) error {
	if _, err := ps.db.Exec(`DELETE FROM preferences WHERE key = ?`, key); err != nil {
		return fmt.Errorf("failed to delete preference %s: %w", key, err)
	}
	return nil
}

func (ps *PrefStore) Close() error {
	return ps.db.Close()
}
