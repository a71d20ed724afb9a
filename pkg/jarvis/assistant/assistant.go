package assistant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/jholhewres/jarvis/pkg/jarvis/database"
	"github.com/jholhewres/jarvis/pkg/jarvis/intent"
	"github.com/jholhewres/jarvis/pkg/jarvis/mailer"
	"github.com/jholhewres/jarvis/pkg/jarvis/memory"
	"github.com/jholhewres/jarvis/pkg/jarvis/organizer"
	"github.com/jholhewres/jarvis/pkg/jarvis/scheduler"
)

// Options override collaborators, mostly for tests and the gateway.
type Options struct {
	// Out receives reminder notifications. Defaults to os.Stdout.
	Out io.Writer

	// Completer replaces the configured model client for intent
	// extraction. ChatCompleter does the same for chat replies.
	Completer     intent.Completer
	ChatCompleter intent.Completer

	// Dialer replaces the SMTP client.
	Dialer mailer.Dialer
}

// Assistant owns every component needed to turn an utterance into done
// work.
type Assistant struct {
	cfg         *Config
	db          *sql.DB
	interpreter *intent.Interpreter
	dispatcher  *Dispatcher
	scheduler   *scheduler.Scheduler
	mailer      *mailer.Mailer
	memory      memory.Store
	out         io.Writer
	logger      *slog.Logger
}

// New builds an Assistant from cfg. The database is opened immediately;
// call Close when done.
func New(cfg *Config, opts Options, logger *slog.Logger) (*Assistant, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}

	a := &Assistant{
		cfg:    cfg,
		db:     db,
		mailer: mailer.New(cfg.Mail, opts.Dialer, logger),
		memory: memory.NewSQLiteStore(db),
		out:    opts.Out,
		logger: logger.With("component", "assistant"),
	}

	extractor, chat, err := a.completers(opts, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	a.interpreter, err = intent.New(extractor, intent.Config{Timeout: cfg.LLM.Timeout}, logger)
	if err != nil {
		db.Close()
		return nil, err
	}

	deps := DispatcherDeps{
		Chat:  chat,
		Mail:  a.mailer,
		Files: organizer.New(logger),
	}

	if cfg.Scheduler.Enabled {
		storage, err := a.reminderStorage()
		if err != nil {
			db.Close()
			return nil, err
		}
		a.scheduler = scheduler.New(storage, a.deliverReminder, logger)
		deps.Reminders = a.scheduler
	}

	a.dispatcher = NewDispatcher(deps, logger)
	return a, nil
}

// completers resolves the extraction and chat clients. A missing API key
// leaves both nil so the assistant still runs on rules alone.
func (a *Assistant) completers(opts Options, logger *slog.Logger) (intent.Completer, intent.Completer, error) {
	extractor, chat := opts.Completer, opts.ChatCompleter

	if extractor == nil {
		c, err := NewCompleter(a.cfg.LLM, "", logger)
		switch {
		case errors.Is(err, ErrNoAPIKey):
			a.logger.Debug("model fallback disabled, no API key")
		case err != nil:
			return nil, nil, err
		default:
			extractor = c
		}
	}

	if chat == nil && extractor != nil {
		chat = extractor
		if model := a.cfg.LLM.ChatModelOrDefault(); model != a.cfg.LLM.Model && opts.Completer == nil {
			c, err := NewCompleter(a.cfg.LLM, model, logger)
			if err != nil {
				return nil, nil, err
			}
			chat = c
		}
	}

	return extractor, chat, nil
}

func (a *Assistant) reminderStorage() (scheduler.Storage, error) {
	switch strings.ToLower(a.cfg.Scheduler.Storage) {
	case "", "sqlite":
		return scheduler.NewSQLiteStorage(a.db), nil
	case "file":
		return scheduler.NewFileStorage(a.cfg.Scheduler.Path)
	default:
		return nil, fmt.Errorf("unknown scheduler storage %q", a.cfg.Scheduler.Storage)
	}
}

// Start runs the reminder scheduler.
func (a *Assistant) Start(ctx context.Context) error {
	if a.scheduler == nil {
		return nil
	}
	return a.scheduler.Start(ctx)
}

// Close stops the scheduler and closes the database.
func (a *Assistant) Close() error {
	if a.scheduler != nil {
		a.scheduler.Stop()
	}
	return a.db.Close()
}

// Interpret turns text into actions without executing them.
func (a *Assistant) Interpret(ctx context.Context, text string) []intent.Action {
	return a.interpreter.Interpret(ctx, text)
}

// Handle interprets text and dispatches every resulting action in order.
// p answers follow-up questions and may be nil.
func (a *Assistant) Handle(ctx context.Context, text string, p Prompter) []Result {
	return a.Execute(ctx, a.Interpret(ctx, text), p)
}

// Execute dispatches already interpreted actions in order.
func (a *Assistant) Execute(ctx context.Context, actions []intent.Action, p Prompter) []Result {
	results := make([]Result, 0, len(actions))
	for _, action := range actions {
		results = append(results, a.dispatcher.Dispatch(ctx, action, p))
	}
	return results
}

// Dispatcher exposes the dispatcher so callers can register handlers.
func (a *Assistant) Dispatcher() *Dispatcher { return a.dispatcher }

// Scheduler returns the reminder scheduler, or nil when disabled.
func (a *Assistant) Scheduler() *scheduler.Scheduler { return a.scheduler }

// Memory returns the fact store.
func (a *Assistant) Memory() memory.Store { return a.memory }

// Config returns the active configuration.
func (a *Assistant) Config() *Config { return a.cfg }

// deliverReminder prints the reminder and emails it when a target is set.
func (a *Assistant) deliverReminder(ctx context.Context, r *scheduler.Reminder) error {
	fmt.Fprintf(a.out, "\nReminder: %s\n", r.Message)

	if r.EmailTo == "" {
		return nil
	}
	return a.mailer.Send(ctx, r.EmailTo, ReminderSubject, r.Message)
}
