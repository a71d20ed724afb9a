package scheduler

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// FileStorage persists reminders as a JSON object keyed by ID.
type FileStorage struct {
	path string
	mu   sync.Mutex
}

// NewFileStorage creates a file-backed storage, creating the parent
// directory when needed.
func NewFileStorage(path string) (*FileStorage, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating storage directory: %w", err)
	}
	return &FileStorage{path: path}, nil
}

// Save inserts or replaces a reminder.
func (s *FileStorage) Save(r *Reminder) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	all[r.ID] = r
	return s.writeAll(all)
}

// Delete removes a reminder. Unknown IDs are ignored.
func (s *FileStorage) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return err
	}
	if _, ok := all[id]; !ok {
		return nil
	}
	delete(all, id)
	return s.writeAll(all)
}

// LoadAll returns every persisted reminder. A missing file is empty.
func (s *FileStorage) LoadAll() ([]*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.readAll()
	if err != nil {
		return nil, err
	}

	out := make([]*Reminder, 0, len(all))
	for _, r := range all {
		out = append(out, r)
	}
	return out, nil
}

// readAll reads the file (caller must hold mu).
func (s *FileStorage) readAll() (map[string]*Reminder, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]*Reminder), nil
		}
		return nil, fmt.Errorf("reading reminders file: %w", err)
	}
	if len(data) == 0 {
		return make(map[string]*Reminder), nil
	}

	var all map[string]*Reminder
	if err := json.Unmarshal(data, &all); err != nil {
		return nil, fmt.Errorf("parsing reminders file: %w", err)
	}
	if all == nil {
		all = make(map[string]*Reminder)
	}
	return all, nil
}

// writeAll writes the file atomically (caller must hold mu).
func (s *FileStorage) writeAll(all map[string]*Reminder) error {
	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling reminders: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("writing reminders file: %w", err)
	}
	return os.Rename(tmp, s.path)
}
