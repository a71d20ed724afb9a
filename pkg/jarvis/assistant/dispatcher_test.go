package assistant

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jholhewres/jarvis/pkg/jarvis/intent"
	"github.com/jholhewres/jarvis/pkg/jarvis/mailer"
	"github.com/jholhewres/jarvis/pkg/jarvis/organizer"
	"github.com/jholhewres/jarvis/pkg/jarvis/scheduler"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMail struct {
	to, subject, body string
}

type fakeMail struct {
	sender string
	sent   []sentMail
	err    error
}

func (f *fakeMail) Send(_ context.Context, to, subject, body string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMail{to, subject, body})
	return nil
}

func (f *fakeMail) SenderAddress() string { return f.sender }

type fakeReminders struct {
	added []*scheduler.Reminder
}

func (f *fakeReminders) Add(r *scheduler.Reminder) error {
	if _, err := scheduler.CronSpec(r.Time); err != nil {
		return err
	}
	r.ID = "r1"
	f.added = append(f.added, r)
	return nil
}

type fakeFiles struct {
	root   string
	dryRun bool
	err    error
}

func (f *fakeFiles) Organize(root string, dryRun bool) (*organizer.Report, error) {
	f.root, f.dryRun = root, dryRun
	if f.err != nil {
		return nil, f.err
	}
	return &organizer.Report{Root: root, DryRun: dryRun, Moved: 3, Skipped: 1}, nil
}

// scripted answers questions in order and records them.
type scripted struct {
	answers   []string
	questions []string
}

func (s *scripted) Ask(_ context.Context, q string) (string, error) {
	s.questions = append(s.questions, q)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func TestDispatchChat(t *testing.T) {
	t.Parallel()

	var gotSystem, gotUser string
	chat := intent.CompleterFunc(func(_ context.Context, system, user string) (string, error) {
		gotSystem, gotUser = system, user
		return "At your service.", nil
	})
	d := NewDispatcher(DispatcherDeps{Chat: chat}, quietLogger())

	res := d.Dispatch(context.Background(), intent.ChatAction(""), nil)
	assert.True(t, res.OK)
	assert.Equal(t, intent.Chat, res.Intent)
	assert.Equal(t, "At your service.", res.Message)
	assert.Equal(t, ChatSystemPrompt, gotSystem)
	assert.Equal(t, DefaultChatQuery, gotUser)

	d.Dispatch(context.Background(), intent.ChatAction("what is software"), nil)
	assert.Equal(t, "what is software", gotUser)
}

func TestDispatchChatUnavailable(t *testing.T) {
	t.Parallel()

	res := NewDispatcher(DispatcherDeps{}, quietLogger()).
		Dispatch(context.Background(), intent.ChatAction("hi"), nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "set-key")

	failing := intent.CompleterFunc(func(context.Context, string, string) (string, error) {
		return "", errors.New("boom")
	})
	res = NewDispatcher(DispatcherDeps{Chat: failing}, quietLogger()).
		Dispatch(context.Background(), intent.ChatAction("hi"), nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "boom")
}

func TestDispatchSendEmail(t *testing.T) {
	t.Parallel()

	mail := &fakeMail{sender: "me@example.com"}
	d := NewDispatcher(DispatcherDeps{Mail: mail}, quietLogger())

	action := intent.NewAction(intent.SendEmail, intent.Slots{
		intent.SlotTo:      "bob@example.com",
		intent.SlotMessage: "hello there",
	})
	res := d.Dispatch(context.Background(), action, nil)

	assert.True(t, res.OK)
	assert.Equal(t, "Email sent to: bob@example.com", res.Message)
	require.Len(t, mail.sent, 1)
	assert.Equal(t, sentMail{"bob@example.com", intent.DefaultEmailSubject, "hello there"}, mail.sent[0])
}

func TestDispatchSendEmailPromptsForMissingSlots(t *testing.T) {
	t.Parallel()

	t.Run("recipient reply carries the message", func(t *testing.T) {
		mail := &fakeMail{}
		d := NewDispatcher(DispatcherDeps{Mail: mail}, quietLogger())
		p := &scripted{answers: []string{"bob at example dot com see you soon"}}

		res := d.Dispatch(context.Background(), intent.NewAction(intent.SendEmail, nil), p)

		assert.True(t, res.OK, res.Message)
		assert.Equal(t, []string{"Who should I send it to?"}, p.questions)
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "bob@example.com", mail.sent[0].to)
		assert.Equal(t, "see you soon", mail.sent[0].body)
	})

	t.Run("message asked separately", func(t *testing.T) {
		mail := &fakeMail{}
		d := NewDispatcher(DispatcherDeps{Mail: mail}, quietLogger())
		p := &scripted{answers: []string{"bob@example.com", "lunch at noon"}}

		res := d.Dispatch(context.Background(), intent.NewAction(intent.SendEmail, nil), p)

		assert.True(t, res.OK, res.Message)
		assert.Equal(t, []string{"Who should I send it to?", "What should be the message?"}, p.questions)
		require.Len(t, mail.sent, 1)
		assert.Equal(t, "lunch at noon", mail.sent[0].body)
	})

	t.Run("no answers", func(t *testing.T) {
		mail := &fakeMail{}
		d := NewDispatcher(DispatcherDeps{Mail: mail}, quietLogger())

		res := d.Dispatch(context.Background(), intent.NewAction(intent.SendEmail, nil), &scripted{})
		assert.False(t, res.OK)
		assert.Equal(t, "Missing email address or message.", res.Message)
		assert.Empty(t, mail.sent)

		res = d.Dispatch(context.Background(), intent.NewAction(intent.SendEmail, nil), nil)
		assert.Equal(t, "Missing email address or message.", res.Message)
	})
}

func TestDispatchSendEmailNotConfigured(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(DispatcherDeps{Mail: &fakeMail{err: mailer.ErrNotConfigured}}, quietLogger())
	action := intent.NewAction(intent.SendEmail, intent.Slots{
		intent.SlotTo:      "bob@example.com",
		intent.SlotMessage: "hi",
	})

	res := d.Dispatch(context.Background(), action, nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, EnvMailPassword)
}

func TestDispatchSetReminder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		slots   intent.Slots
		ok      bool
		message string
		emailTo string
	}{
		{
			name:    "plain",
			slots:   intent.Slots{intent.SlotTime: "09:00", intent.SlotMessage: "drink water"},
			ok:      true,
			message: "Reminder set for 09:00",
		},
		{
			name:    "email me uses the sender",
			slots:   intent.Slots{intent.SlotTime: "19:00", intent.SlotMessage: "pray", intent.SlotEmailMe: true},
			ok:      true,
			message: "Reminder set for 19:00 (Email will be sent to me@example.com)",
			emailTo: "me@example.com",
		},
		{
			name: "explicit target wins",
			slots: intent.Slots{
				intent.SlotTime: "09:00", intent.SlotMessage: "send report",
				intent.SlotEmailMe: true, intent.SlotEmailTo: "boss@example.com",
			},
			ok:      true,
			message: "Reminder set for 09:00 (Email will be sent to boss@example.com)",
			emailTo: "boss@example.com",
		},
		{
			name:    "missing time",
			slots:   intent.Slots{intent.SlotMessage: "stretch"},
			message: "Missing reminder time or message.",
		},
		{
			name:    "missing message",
			slots:   intent.Slots{intent.SlotTime: "09:00"},
			message: "Missing reminder time or message.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reminders := &fakeReminders{}
			d := NewDispatcher(DispatcherDeps{
				Mail:      &fakeMail{sender: "me@example.com"},
				Reminders: reminders,
			}, quietLogger())

			res := d.Dispatch(context.Background(), intent.NewAction(intent.SetReminder, tt.slots), nil)
			assert.Equal(t, tt.ok, res.OK)
			assert.Equal(t, tt.message, res.Message)

			if tt.ok {
				require.Len(t, reminders.added, 1)
				assert.Equal(t, tt.emailTo, reminders.added[0].EmailTo)
			} else {
				assert.Empty(t, reminders.added)
			}
		})
	}
}

func TestDispatchSetReminderInvalidTime(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(DispatcherDeps{Reminders: &fakeReminders{}}, quietLogger())
	res := d.Dispatch(context.Background(), intent.NewAction(intent.SetReminder, intent.Slots{
		intent.SlotTime: "25:00", intent.SlotMessage: "x",
	}), nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "invalid reminder time")
}

func TestDispatchOrganizeFiles(t *testing.T) {
	t.Parallel()

	files := &fakeFiles{}
	d := NewDispatcher(DispatcherDeps{Files: files}, quietLogger())

	res := d.Dispatch(context.Background(), intent.NewAction(intent.OrganizeFiles, intent.Slots{
		intent.SlotPath: "~/Downloads",
	}), nil)
	assert.True(t, res.OK)
	assert.Equal(t, "Files organized! (3 moved, 1 skipped)", res.Message)
	assert.Equal(t, "~/Downloads", files.root)
	assert.False(t, files.dryRun)

	res = d.Dispatch(context.Background(), intent.NewAction(intent.OrganizeFiles, intent.Slots{
		intent.SlotPath: "/tmp/x", intent.SlotDryRun: true,
	}), nil)
	assert.True(t, res.OK)
	assert.Equal(t, "Dry run completed. (3 moved, 1 skipped)", res.Message)
	assert.True(t, files.dryRun)

	res = d.Dispatch(context.Background(), intent.NewAction(intent.OrganizeFiles, nil), nil)
	assert.False(t, res.OK)
	assert.Equal(t, "Folder path missing.", res.Message)

	files.err = errors.New("folder not found: /nope")
	res = d.Dispatch(context.Background(), intent.NewAction(intent.OrganizeFiles, intent.Slots{
		intent.SlotPath: "/nope",
	}), nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "folder not found")
}

func TestDispatchUnknownAndCustomHandlers(t *testing.T) {
	t.Parallel()

	d := NewDispatcher(DispatcherDeps{}, quietLogger())

	res := d.Dispatch(context.Background(), intent.Action{Intent: "play_music"}, nil)
	assert.False(t, res.OK)
	assert.Contains(t, res.Message, "Unknown command")
	assert.Contains(t, res.Message, HelpText)

	d.RegisterHandler("play_music", func(context.Context, intent.Action, Prompter) Result {
		return Result{OK: true, Message: "playing"}
	})
	res = d.Dispatch(context.Background(), intent.Action{Intent: "play_music"}, nil)
	assert.True(t, res.OK)
	assert.Equal(t, intent.Intent("play_music"), res.Intent)
}
