// Package database opens the central jarvis.db SQLite file that holds
// reminders and remembered facts.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3" // SQLite driver.
)

// DefaultPath is used when no database path is configured.
const DefaultPath = "./data/jarvis.db"

// schema is executed on every open (idempotent via IF NOT EXISTS).
const schema = `
-- Daily reminders.
CREATE TABLE IF NOT EXISTS reminders (
    id          TEXT PRIMARY KEY,
    time        TEXT NOT NULL,
    message     TEXT NOT NULL,
    email_to    TEXT DEFAULT '',
    enabled     INTEGER DEFAULT 1,
    created_at  TEXT NOT NULL,
    last_run_at TEXT,
    last_error  TEXT DEFAULT '',
    run_count   INTEGER DEFAULT 0
);
CREATE INDEX IF NOT EXISTS idx_reminders_time ON reminders(time);

-- Remembered key/value facts.
CREATE TABLE IF NOT EXISTS memory (
    key        TEXT PRIMARY KEY,
    value      TEXT NOT NULL,
    updated_at TEXT NOT NULL
);
`

// Open opens (or creates) the database at path, enables WAL mode and
// creates all tables. An empty path selects DefaultPath; ":memory:" opens a
// private in-memory database.
func Open(path string) (*sql.DB, error) {
	if path == "" {
		path = DefaultPath
	}

	dsn := path
	if path != ":memory:" {
		dir := filepath.Dir(path)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %q: %w", dir, err)
		}
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000&_foreign_keys=ON"
	}

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database %q: %w", path, err)
	}
	if path == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return db, nil
}
