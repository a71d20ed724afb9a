// Package memory stores key/value facts the user asks Jarvis to remember.
// Keys are case-insensitive and stored lowercased.
package memory

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Fact is one remembered value.
type Fact struct {
	Key       string    `json:"key"`
	Value     string    `json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Store persists facts.
type Store interface {
	Save(key, value string) error
	Get(key string) (string, bool, error)
	Delete(key string) error
	All() ([]Fact, error)
}

// SQLiteStore keeps facts in the "memory" table of the shared database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an open database.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db}
}

func normalizeKey(key string) (string, error) {
	k := strings.ToLower(strings.TrimSpace(key))
	if k == "" {
		return "", errors.New("memory key is required")
	}
	return k, nil
}

// Save inserts or replaces a fact.
func (s *SQLiteStore) Save(key, value string) error {
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}

	_, err = s.db.Exec(`INSERT OR REPLACE INTO memory (key, value, updated_at) VALUES (?, ?, ?)`,
		k, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("save memory %q: %w", k, err)
	}
	return nil
}

// Get returns the value stored for key.
func (s *SQLiteStore) Get(key string) (string, bool, error) {
	k, err := normalizeKey(key)
	if err != nil {
		return "", false, err
	}

	var value string
	err = s.db.QueryRow(`SELECT value FROM memory WHERE key = ?`, k).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get memory %q: %w", k, err)
	}
	return value, true, nil
}

// Delete forgets a fact. Unknown keys are ignored.
func (s *SQLiteStore) Delete(key string) error {
	k, err := normalizeKey(key)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec(`DELETE FROM memory WHERE key = ?`, k); err != nil {
		return fmt.Errorf("delete memory %q: %w", k, err)
	}
	return nil
}

// All returns every fact ordered by key.
func (s *SQLiteStore) All() ([]Fact, error) {
	rows, err := s.db.Query(`SELECT key, value, updated_at FROM memory ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("list memory: %w", err)
	}
	defer rows.Close()

	var out []Fact
	for rows.Next() {
		var (
			f         Fact
			updatedAt string
		)
		if err := rows.Scan(&f.Key, &f.Value, &updatedAt); err != nil {
			return nil, fmt.Errorf("scan memory: %w", err)
		}
		f.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		out = append(out, f)
	}
	return out, rows.Err()
}
