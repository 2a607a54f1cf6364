// Package state owns the durable on-disk store: a single sqlite file
// holding the library index tables and a flat preference-style
// key-value table used for the persisted playback slot.
package state

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	_ "modernc.org/sqlite" // SQLite driver
)

const (
	appName    = "quaver"
	dbFileName = "quaver.db"
)

// Manager wraps the sqlite handle shared by the library index and the
// preference slot.
type Manager struct {
	db *sql.DB
}

// Open opens (creating if needed) the store at the XDG data location.
func Open() (*Manager, error) {
	dbPath, err := xdg.DataFile(filepath.Join(appName, dbFileName))
	if err != nil {
		return nil, err
	}
	return OpenPath(dbPath)
}

// OpenPath opens the store at an explicit path. Used by tests and by
// configurations that pin the data directory.
func OpenPath(dbPath string) (*Manager, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if err := initSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Manager{db: db}, nil
}

// DB exposes the underlying handle for the library index.
func (m *Manager) DB() *sql.DB {
	return m.db
}

// Close closes the store.
func (m *Manager) Close() error {
	return m.db.Close()
}

// GetPref returns the value stored under key. The second return is
// false when the key has never been written.
func (m *Manager) GetPref(key string) (string, bool, error) {
	var value string
	err := m.db.QueryRow(`SELECT value FROM prefs WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

// SetPref writes value under key, overwriting any previous value.
func (m *Manager) SetPref(key, value string) error {
	_, err := m.db.Exec(`
		INSERT INTO prefs (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	return err
}

// DeletePref removes key from the store. Missing keys are not an error.
func (m *Manager) DeletePref(key string) error {
	_, err := m.db.Exec(`DELETE FROM prefs WHERE key = ?`, key)
	return err
}
