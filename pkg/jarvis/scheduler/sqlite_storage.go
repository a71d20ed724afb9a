package scheduler

import (
	"database/sql"
	"fmt"
	"time"
)

// SQLiteStorage persists reminders in the "reminders" table of the shared
// database opened by database.Open.
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage wraps an open database.
func NewSQLiteStorage(db *sql.DB) *SQLiteStorage {
	return &SQLiteStorage{db: db}
}

// Save inserts or replaces a reminder.
func (s *SQLiteStorage) Save(r *Reminder) error {
	var lastRunAt sql.NullString
	if r.LastRunAt != nil {
		lastRunAt = sql.NullString{String: r.LastRunAt.UTC().Format(time.RFC3339), Valid: true}
	}

	_, err := s.db.Exec(`
		INSERT OR REPLACE INTO reminders
			(id, time, message, email_to, enabled, created_at, last_run_at, last_error, run_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID,
		r.Time,
		r.Message,
		r.EmailTo,
		boolToInt(r.Enabled),
		r.CreatedAt.UTC().Format(time.RFC3339),
		lastRunAt,
		r.LastError,
		r.RunCount,
	)
	if err != nil {
		return fmt.Errorf("save reminder %q: %w", r.ID, err)
	}
	return nil
}

// Delete removes a reminder by ID.
func (s *SQLiteStorage) Delete(id string) error {
	if _, err := s.db.Exec("DELETE FROM reminders WHERE id = ?", id); err != nil {
		return fmt.Errorf("delete reminder %q: %w", id, err)
	}
	return nil
}

// LoadAll reads all reminders.
func (s *SQLiteStorage) LoadAll() ([]*Reminder, error) {
	rows, err := s.db.Query(`
		SELECT id, time, message, email_to, enabled, created_at, last_run_at, last_error, run_count
		FROM reminders`)
	if err != nil {
		return nil, fmt.Errorf("load reminders: %w", err)
	}
	defer rows.Close()

	var out []*Reminder
	for rows.Next() {
		var (
			r         Reminder
			enabled   int
			createdAt string
			lastRunAt sql.NullString
		)
		if err := rows.Scan(
			&r.ID, &r.Time, &r.Message, &r.EmailTo, &enabled,
			&createdAt, &lastRunAt, &r.LastError, &r.RunCount,
		); err != nil {
			return nil, fmt.Errorf("scan reminder: %w", err)
		}

		r.Enabled = enabled != 0
		r.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		if lastRunAt.Valid {
			t, _ := time.Parse(time.RFC3339, lastRunAt.String)
			r.LastRunAt = &t
		}
		out = append(out, &r)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
