package assistant

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/jholhewres/jarvis/pkg/jarvis/intent"
	"github.com/jholhewres/jarvis/pkg/jarvis/mailer"
	"github.com/jholhewres/jarvis/pkg/jarvis/organizer"
	"github.com/jholhewres/jarvis/pkg/jarvis/scheduler"
)

const (
	// ChatSystemPrompt sets the tone of chat replies.
	ChatSystemPrompt = "Reply like Jarvis. Short and smart."

	// DefaultChatQuery is used when a chat action carries no query.
	DefaultChatQuery = "introduce yourself"

	// ReminderSubject is the subject of reminder emails.
	ReminderSubject = "Reminder from AI Agent"
)

// HelpText lists what Jarvis understands.
const HelpText = `📧 Emails:
  send email to someone@example.com Hello how are you
  send happy birthday to someone@example.com

⏰ Reminders:
  remind me to drink water at 9am
  remind me at 23:20 to stretch
  remind me to pray at 7pm email me
  remind me to send report at 9am to my mail someone@example.com

🗂 File Organizer:
  organize files in "C:\Users\you\Downloads"
  organize files in "~/Downloads" dry run

💬 Chat:
  what is software
  who are you
  tell me about AI

Type exit to quit.`

// Result is the outcome of dispatching one action.
type Result struct {
	Intent  intent.Intent `json:"intent"`
	OK      bool          `json:"ok"`
	Message string        `json:"message"`
	Data    any           `json:"data,omitempty"`
}

// Prompter asks the user for a missing value. A nil Prompter means the
// caller cannot answer follow-up questions.
type Prompter interface {
	Ask(ctx context.Context, question string) (string, error)
}

// PrompterFunc adapts a function to Prompter.
type PrompterFunc func(ctx context.Context, question string) (string, error)

// Ask implements Prompter.
func (f PrompterFunc) Ask(ctx context.Context, question string) (string, error) {
	return f(ctx, question)
}

// MailSender delivers email from a configured sender.
type MailSender interface {
	Send(ctx context.Context, to, subject, body string) error
	SenderAddress() string
}

// ReminderScheduler registers daily reminders.
type ReminderScheduler interface {
	Add(r *scheduler.Reminder) error
}

// FileOrganizer sorts a folder into category subfolders.
type FileOrganizer interface {
	Organize(root string, dryRun bool) (*organizer.Report, error)
}

// HandlerFunc carries out one action.
type HandlerFunc func(ctx context.Context, action intent.Action, p Prompter) Result

// DispatcherDeps are the capabilities actions are dispatched to. Any of
// them may be nil; the matching intent then reports it is unavailable.
type DispatcherDeps struct {
	Chat      intent.Completer
	Mail      MailSender
	Reminders ReminderScheduler
	Files     FileOrganizer
}

// Dispatcher routes actions to handlers keyed by intent.
type Dispatcher struct {
	deps     DispatcherDeps
	handlers map[intent.Intent]HandlerFunc
	mu       sync.RWMutex
	logger   *slog.Logger
}

// NewDispatcher creates a Dispatcher with handlers for every built-in
// intent.
func NewDispatcher(deps DispatcherDeps, logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}

	d := &Dispatcher{
		deps:     deps,
		handlers: make(map[intent.Intent]HandlerFunc),
		logger:   logger.With("component", "dispatcher"),
	}
	d.handlers[intent.Chat] = d.handleChat
	d.handlers[intent.SendEmail] = d.handleSendEmail
	d.handlers[intent.SetReminder] = d.handleSetReminder
	d.handlers[intent.OrganizeFiles] = d.handleOrganizeFiles
	return d
}

// RegisterHandler installs or replaces the handler for an intent.
func (d *Dispatcher) RegisterHandler(i intent.Intent, h HandlerFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[i] = h
}

// Dispatch executes one action. p may be nil for non-interactive callers.
func (d *Dispatcher) Dispatch(ctx context.Context, action intent.Action, p Prompter) Result {
	d.mu.RLock()
	h, ok := d.handlers[action.Intent]
	d.mu.RUnlock()

	if !ok {
		d.logger.Warn("no handler for intent", "intent", action.Intent)
		return Result{
			Intent:  action.Intent,
			Message: "Unknown command. Type `help` to see what I can do.\n\n" + HelpText,
		}
	}

	res := h(ctx, action, p)
	res.Intent = action.Intent
	d.logger.Debug("action dispatched", "intent", action.Intent, "ok", res.OK)
	return res
}

// ---------- Handlers ----------

func (d *Dispatcher) handleChat(ctx context.Context, action intent.Action, _ Prompter) Result {
	query, ok := action.Slots.String(intent.SlotQuery)
	if !ok {
		query = DefaultChatQuery
	}
	if d.deps.Chat == nil {
		return Result{Message: "Chat needs a model API key. Run 'jarvis config set-key'."}
	}

	reply, err := d.deps.Chat.Complete(ctx, ChatSystemPrompt, query)
	if err != nil {
		d.logger.Error("chat failed", "error", err)
		return Result{Message: fmt.Sprintf("Sorry, I could not reach the model: %v", err)}
	}
	return Result{OK: true, Message: reply}
}

func (d *Dispatcher) handleSendEmail(ctx context.Context, action intent.Action, p Prompter) Result {
	to, _ := action.Slots.String(intent.SlotTo)
	message, _ := action.Slots.String(intent.SlotMessage)
	subject, ok := action.Slots.String(intent.SlotSubject)
	if !ok {
		subject = intent.DefaultEmailSubject
	}

	if to == "" {
		if reply := ask(ctx, p, "Who should I send it to?"); reply != "" {
			email, rest, found := intent.ExtractEmailAndMessage(reply)
			if found {
				to = email
				if message == "" {
					message = rest
				}
			}
		}
	}
	if message == "" && to != "" {
		message = ask(ctx, p, "What should be the message?")
	}
	if to == "" || message == "" {
		return Result{Message: "Missing email address or message."}
	}

	if d.deps.Mail == nil {
		return Result{Message: "Email is not configured."}
	}
	if err := d.deps.Mail.Send(ctx, to, subject, message); err != nil {
		if errors.Is(err, mailer.ErrNotConfigured) {
			return Result{Message: "Email is not configured. Set " + EnvMailSender + " and " + EnvMailPassword + "."}
		}
		return Result{Message: fmt.Sprintf("Failed to send email: %v", err)}
	}

	return Result{
		OK:      true,
		Message: "Email sent to: " + to,
		Data:    map[string]string{"to": to, "subject": subject},
	}
}

func (d *Dispatcher) handleSetReminder(_ context.Context, action intent.Action, _ Prompter) Result {
	at, _ := action.Slots.String(intent.SlotTime)
	message, _ := action.Slots.String(intent.SlotMessage)
	emailTo, _ := action.Slots.String(intent.SlotEmailTo)

	if emailTo == "" && action.Slots.Bool(intent.SlotEmailMe) && d.deps.Mail != nil {
		emailTo = d.deps.Mail.SenderAddress()
	}
	if at == "" || message == "" {
		return Result{Message: "Missing reminder time or message."}
	}
	if d.deps.Reminders == nil {
		return Result{Message: "Reminders are disabled."}
	}

	r := &scheduler.Reminder{Time: at, Message: message, EmailTo: emailTo}
	if err := d.deps.Reminders.Add(r); err != nil {
		return Result{Message: fmt.Sprintf("Could not set reminder: %v", err)}
	}

	msg := "Reminder set for " + at
	if emailTo != "" {
		msg += " (Email will be sent to " + emailTo + ")"
	}
	return Result{OK: true, Message: msg, Data: r}
}

func (d *Dispatcher) handleOrganizeFiles(_ context.Context, action intent.Action, _ Prompter) Result {
	path, ok := action.Slots.String(intent.SlotPath)
	if !ok || strings.TrimSpace(path) == "" {
		return Result{Message: "Folder path missing."}
	}
	if d.deps.Files == nil {
		return Result{Message: "File organizer is unavailable."}
	}

	dryRun := action.Slots.Bool(intent.SlotDryRun)
	report, err := d.deps.Files.Organize(path, dryRun)
	if err != nil {
		return Result{Message: fmt.Sprintf("Could not organize files: %v", err)}
	}

	msg := "Files organized!"
	if dryRun {
		msg = "Dry run completed."
	}
	msg += fmt.Sprintf(" (%d moved, %d skipped)", report.Moved, report.Skipped)
	return Result{OK: true, Message: msg, Data: report}
}

// ask returns the trimmed answer, or "" when there is no prompter or the
// prompt fails.
func ask(ctx context.Context, p Prompter, question string) string {
	if p == nil {
		return ""
	}
	answer, err := p.Ask(ctx, question)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(answer)
}
