package intent

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// staticCompleter returns a fixed response and records the last prompt.
type staticCompleter struct {
	response string
	err      error
	system   string
	user     string
	calls    int
}

func (c *staticCompleter) Complete(_ context.Context, system, user string) (string, error) {
	c.calls++
	c.system = system
	c.user = user
	return c.response, c.err
}

func newParser(t *testing.T, c Completer) *GenerativeParser {
	t.Helper()
	p, err := NewGenerativeParser(c, time.Second, discardLogger())
	require.NoError(t, err)
	return p
}

func TestInterpretDefaultsToChat(t *testing.T) {
	t.Parallel()

	in, err := New(nil, Config{}, discardLogger())
	require.NoError(t, err)

	for _, input := range []string{"asdkjasd", "", "   ", "organize my downloads"} {
		actions := in.Interpret(context.Background(), input)
		require.Len(t, actions, 1, "input %q", input)
		assert.Equal(t, Chat, actions[0].Intent)
		assert.Equal(t, Slots{SlotQuery: input}, actions[0].Slots)
	}
}

func TestInterpretPrefersRules(t *testing.T) {
	t.Parallel()

	c := &staticCompleter{response: `[{"intent":"chat","slots":{"query":"x"}}]`}
	in, err := New(c, Config{Timeout: time.Second}, discardLogger())
	require.NoError(t, err)

	actions := in.Interpret(context.Background(), "remind me to drink water at 9am email me")
	require.Len(t, actions, 1)
	assert.Equal(t, SetReminder, actions[0].Intent)
	assert.Zero(t, c.calls, "model must not be called when a rule matches")
}

func TestInterpretUsesModelFallback(t *testing.T) {
	t.Parallel()

	c := &staticCompleter{response: "```json\n[{\"intent\":\"organize_files\",\"slots\":{\"path\":\"~/Downloads\",\"dry_run\":true}}]\n```"}
	in, err := New(c, Config{Timeout: time.Second}, discardLogger())
	require.NoError(t, err)

	actions := in.Interpret(context.Background(), "tidy up my downloads folder")
	require.Len(t, actions, 1)
	assert.Equal(t, OrganizeFiles, actions[0].Intent)
	assert.Equal(t, Slots{SlotPath: "~/Downloads", SlotDryRun: true}, actions[0].Slots)
	assert.Equal(t, ExtractorPrompt, c.system)
	assert.Equal(t, "tidy up my downloads folder", c.user)
}

func TestInterpretModelFailuresFallBackToChat(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		c    *staticCompleter
	}{
		{"transport error", &staticCompleter{err: errors.New("connection refused")}},
		{"not json", &staticCompleter{response: "Sure! Here you go."}},
		{"empty array", &staticCompleter{response: "[]"}},
		{"missing intent", &staticCompleter{response: `[{"slots":{}}]`}},
		{"wrong slot type", &staticCompleter{response: `[{"intent":"chat","slots":"hi"}]`}},
		{"scalar", &staticCompleter{response: `"chat"`}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in, err := New(tt.c, Config{Timeout: time.Second}, discardLogger())
			require.NoError(t, err)

			actions := in.Interpret(context.Background(), "qwerty")
			require.Len(t, actions, 1)
			assert.Equal(t, ChatAction("qwerty"), actions[0])
			assert.Equal(t, 1, tt.c.calls)
		})
	}
}

func TestGenerativeParserDisabledWithoutCompleter(t *testing.T) {
	t.Parallel()

	p := newParser(t, nil)
	assert.False(t, p.Enabled())
	_, ok := p.Match(context.Background(), "anything")
	assert.False(t, ok)
}

func TestGenerativeParserSingleObject(t *testing.T) {
	t.Parallel()

	p := newParser(t, &staticCompleter{response: `{"intent":"chat","slots":{"query":"hi","mood":"happy"}}`})

	actions, ok := p.Match(context.Background(), "hi")
	require.True(t, ok)
	require.Len(t, actions, 1)
	assert.Equal(t, Slots{SlotQuery: "hi"}, actions[0].Slots, "unknown slot keys are dropped")
}

func TestGenerativeParserUnknownIntentBecomesChat(t *testing.T) {
	t.Parallel()

	p := newParser(t, &staticCompleter{response: `[{"intent":"weather","slots":{"city":"Lisbon"}},{"intent":"send_email","slots":{"to":"a@b.com"}}]`})

	actions, ok := p.Match(context.Background(), "weather in lisbon and mail a@b.com")
	require.True(t, ok)
	require.Len(t, actions, 2)
	assert.Equal(t, ChatAction("weather in lisbon and mail a@b.com"), actions[0])
	assert.Equal(t, SendEmail, actions[1].Intent)
	assert.Equal(t, Slots{SlotTo: "a@b.com", SlotSubject: nil, SlotMessage: nil}, actions[1].Slots)
}

func TestGenerativeParserRepairsReminder(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		response string
		text     string
		want     Slots
	}{
		{
			name:     "fills time and message",
			response: `[{"intent":"set_reminder","slots":{}}]`,
			text:     "Remind me to stretch @ 7pm",
			want: Slots{
				SlotTime:    "19:00",
				SlotMessage: "stretch",
				SlotEmailMe: nil,
				SlotEmailTo: nil,
			},
		},
		{
			name:     "sets email me flag",
			response: `[{"intent":"set_reminder","slots":{"time":"08:00","message":"stand up","email_me":false}}]`,
			text:     "stand up at 8 and email me",
			want: Slots{
				SlotTime:    "08:00",
				SlotMessage: "stand up",
				SlotEmailMe: true,
				SlotEmailTo: nil,
			},
		},
		{
			name:     "extracts email address",
			response: `[{"intent":"set_reminder","slots":{"time":"19:00","message":"stretch","email_to":""}}]`,
			text:     "remind me to stretch at 7pm and mail bob at example dot com",
			want: Slots{
				SlotTime:    "19:00",
				SlotMessage: "stretch",
				SlotEmailMe: nil,
				SlotEmailTo: "bob@example.com",
			},
		},
		{
			name:     "message stays absent when nothing remains",
			response: `[{"intent":"set_reminder","slots":{"time":"09:00"}}]`,
			text:     "remind me to ",
			want: Slots{
				SlotTime:    "09:00",
				SlotMessage: nil,
				SlotEmailMe: nil,
				SlotEmailTo: nil,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := newParser(t, &staticCompleter{response: tt.response})
			actions, ok := p.Match(context.Background(), tt.text)
			require.True(t, ok)
			require.Len(t, actions, 1)
			assert.Equal(t, SetReminder, actions[0].Intent)
			assert.Equal(t, tt.want, actions[0].Slots)
		})
	}
}

func TestGenerativeParserHonorsTimeout(t *testing.T) {
	t.Parallel()

	blocking := CompleterFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	p, err := NewGenerativeParser(blocking, 20*time.Millisecond, discardLogger())
	require.NoError(t, err)

	start := time.Now()
	_, ok := p.Match(context.Background(), "anything")
	assert.False(t, ok)
	assert.Less(t, time.Since(start), 2*time.Second)
}
