// Package scheduler runs daily reminders on top of robfig/cron and keeps
// them persisted so they survive restarts.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
)

// ErrInvalidTime is returned when a reminder time is not a valid "HH:MM".
var ErrInvalidTime = errors.New("invalid reminder time")

// ErrNotFound is returned when a reminder ID is unknown.
var ErrNotFound = errors.New("reminder not found")

var hhmmPattern = regexp.MustCompile(`^(\d{2}):(\d{2})$`)

// Scheduler fires reminders once a day at their configured time.
type Scheduler struct {
	// reminders stores registered reminders indexed by ID.
	reminders map[string]*Reminder

	cron *cron.Cron

	// cronIDs maps reminder IDs to cron entries for removal.
	cronIDs map[string]cron.EntryID

	// running tracks reminders currently being delivered so a slow
	// delivery is not started twice.
	running map[string]bool

	storage Storage
	loaded  bool
	handler Handler

	// timeout bounds a single delivery.
	timeout time.Duration

	logger *slog.Logger
	mu     sync.RWMutex
	ctx    context.Context
	cancel context.CancelFunc
}

// Reminder is a message delivered every day at Time.
type Reminder struct {
	ID string `json:"id" yaml:"id"`

	// Time is the local time of day in "HH:MM".
	Time string `json:"time" yaml:"time"`

	Message string `json:"message" yaml:"message"`

	// EmailTo receives a copy of the reminder when set.
	EmailTo string `json:"email_to,omitempty" yaml:"email_to,omitempty"`

	Enabled   bool       `json:"enabled" yaml:"enabled"`
	CreatedAt time.Time  `json:"created_at" yaml:"created_at"`
	LastRunAt *time.Time `json:"last_run_at,omitempty" yaml:"last_run_at,omitempty"`
	LastError string     `json:"last_error,omitempty" yaml:"last_error,omitempty"`
	RunCount  int        `json:"run_count" yaml:"run_count"`
}

// Handler delivers a reminder.
type Handler func(ctx context.Context, r *Reminder) error

// Storage persists reminders.
type Storage interface {
	Save(r *Reminder) error
	Delete(id string) error
	LoadAll() ([]*Reminder, error)
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithTimeout sets the maximum duration of a single delivery.
func WithTimeout(d time.Duration) Option {
	return func(s *Scheduler) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// New creates a Scheduler. storage may be nil for an in-memory scheduler.
func New(storage Storage, handler Handler, logger *slog.Logger, opts ...Option) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}

	s := &Scheduler{
		reminders: make(map[string]*Reminder),
		cronIDs:   make(map[string]cron.EntryID),
		running:   make(map[string]bool),
		storage:   storage,
		handler:   handler,
		timeout:   2 * time.Minute,
		logger:    logger.With("component", "scheduler"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CronSpec converts "HH:MM" into a daily cron expression.
func CronSpec(hhmm string) (string, error) {
	m := hhmmPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	return fmt.Sprintf("%d %d * * *", minute, hour), nil
}

// Add registers a reminder. An empty ID is filled with a new UUID.
func (s *Scheduler) Add(r *Reminder) error {
	if _, err := CronSpec(r.Time); err != nil {
		return err
	}
	if r.Message == "" {
		return fmt.Errorf("reminder message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	if _, exists := s.reminders[r.ID]; exists {
		return fmt.Errorf("reminder %q already exists", r.ID)
	}

	r.CreatedAt = time.Now()
	r.Enabled = true

	if s.cron != nil {
		if err := s.scheduleLocked(r); err != nil {
			return err
		}
	}

	s.reminders[r.ID] = r

	if s.storage != nil {
		if err := s.storage.Save(r); err != nil {
			s.logger.Error("failed to persist reminder", "id", r.ID, "error", err)
		}
	}

	s.logger.Info("reminder added", "id", r.ID, "time", r.Time, "email_to", r.EmailTo)
	return nil
}

// Remove deletes a reminder by ID.
func (s *Scheduler) Remove(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.reminders[id]; !exists {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if entryID, ok := s.cronIDs[id]; ok {
		s.cron.Remove(entryID)
		delete(s.cronIDs, id)
	}
	delete(s.reminders, id)

	if s.storage != nil {
		if err := s.storage.Delete(id); err != nil {
			s.logger.Error("failed to remove reminder from storage", "id", id, "error", err)
		}
	}

	s.logger.Info("reminder removed", "id", id)
	return nil
}

// List returns copies of all reminders ordered by time of day.
func (s *Scheduler) List() []Reminder {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Reminder, 0, len(s.reminders))
	for _, r := range s.reminders {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Time != out[j].Time {
			return out[i].Time < out[j].Time
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// Get returns a copy of a reminder.
func (s *Scheduler) Get(id string) (Reminder, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.reminders[id]
	if !ok {
		return Reminder{}, false
	}
	return *r, true
}

// Start loads persisted reminders and starts the cron loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cron != nil {
		return fmt.Errorf("scheduler already started")
	}

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.cron = cron.New(cron.WithParser(cron.NewParser(
		cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow,
	)))

	if err := s.loadLocked(); err != nil {
		s.logger.Error("failed to load reminders", "error", err)
	}

	for _, r := range s.reminders {
		if !r.Enabled {
			continue
		}
		if err := s.scheduleLocked(r); err != nil {
			s.logger.Warn("skipping reminder with invalid time", "id", r.ID, "time", r.Time, "error", err)
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "reminders", len(s.reminders), "cron_entries", len(s.cron.Entries()))
	return nil
}

// Load reads persisted reminders without starting the cron loop, so
// they can be listed or removed. Start calls it implicitly.
func (s *Scheduler) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadLocked()
}

func (s *Scheduler) loadLocked() error {
	if s.storage == nil || s.loaded {
		return nil
	}
	loaded, err := s.storage.LoadAll()
	if err != nil {
		return err
	}
	for _, r := range loaded {
		if _, exists := s.reminders[r.ID]; !exists {
			s.reminders[r.ID] = r
		}
	}
	s.loaded = true
	s.logger.Info("reminders loaded from storage", "count", len(loaded))
	return nil
}

// Stop halts the cron loop and waits briefly for running deliveries.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	c := s.cron
	s.cron = nil
	s.cronIDs = make(map[string]cron.EntryID)
	s.mu.Unlock()

	if c != nil {
		done := c.Stop()
		select {
		case <-done.Done():
		case <-time.After(10 * time.Second):
			s.logger.Warn("scheduler stop timed out")
		}
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.logger.Info("scheduler stopped")
}

// NextRun reports when a reminder fires next. It is only known while the
// scheduler is running.
func (s *Scheduler) NextRun(id string) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.cron == nil {
		return time.Time{}, false
	}
	entryID, ok := s.cronIDs[id]
	if !ok {
		return time.Time{}, false
	}
	e := s.cron.Entry(entryID)
	if !e.Valid() || e.Next.IsZero() {
		return time.Time{}, false
	}
	return e.Next, true
}

// RunNow delivers a reminder immediately, outside its schedule.
func (s *Scheduler) RunNow(id string) error {
	s.mu.RLock()
	r, ok := s.reminders[id]
	s.mu.RUnlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return s.execute(r)
}

// scheduleLocked registers r with cron. Caller must hold mu.
func (s *Scheduler) scheduleLocked(r *Reminder) error {
	spec, err := CronSpec(r.Time)
	if err != nil {
		return err
	}

	entryID, err := s.cron.AddFunc(spec, func() {
		if err := s.execute(r); err != nil {
			s.logger.Error("reminder delivery failed", "id", r.ID, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("scheduling %q: %w", spec, err)
	}
	s.cronIDs[r.ID] = entryID
	return nil
}

// execute delivers r through the handler with a duplicate-run guard,
// panic recovery and a timeout.
func (s *Scheduler) execute(r *Reminder) (err error) {
	s.mu.Lock()
	if s.running[r.ID] {
		s.mu.Unlock()
		s.logger.Warn("skipping reminder (already running)", "id", r.ID)
		return nil
	}
	s.running[r.ID] = true
	now := time.Now()
	r.LastRunAt = &now
	r.RunCount++
	parent := s.ctx
	s.mu.Unlock()

	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic: %v", rec)
			s.logger.Error("reminder handler panicked", "id", r.ID, "panic", rec)
		}

		s.mu.Lock()
		delete(s.running, r.ID)
		if err != nil {
			r.LastError = err.Error()
		} else {
			r.LastError = ""
		}
		_, stillExists := s.reminders[r.ID]
		s.mu.Unlock()

		if s.storage != nil && stillExists {
			if saveErr := s.storage.Save(r); saveErr != nil {
				s.logger.Error("failed to persist reminder state", "id", r.ID, "error", saveErr)
			}
		}
	}()

	if s.handler == nil {
		return fmt.Errorf("no handler configured")
	}
	if parent == nil {
		parent = context.Background()
	}

	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	s.logger.Info("delivering reminder", "id", r.ID, "time", r.Time)
	return s.handler(ctx, r)
}
