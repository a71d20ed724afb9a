package intent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleMatcher(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  string
		intent Intent
		slots  Slots
	}{
		{
			name:   "chat question keeps original text",
			input:  "What is software engineering?",
			intent: Chat,
			slots:  Slots{SlotQuery: "What is software engineering?"},
		},
		{
			name:   "chat after wake word",
			input:  "Hey Jarvis, tell me a joke",
			intent: Chat,
			slots:  Slots{SlotQuery: "Hey Jarvis, tell me a joke"},
		},
		{
			name:   "birthday with spoken email",
			input:  "send happy birthday to john at gmail dot com",
			intent: SendEmail,
			slots: Slots{
				SlotTo:      "john@gmail.com",
				SlotSubject: "Happy Birthday!",
				SlotMessage: "Happy Birthday! 🎉",
			},
		},
		{
			name:   "birthday without address",
			input:  "jarvis send a birthday wish to mom",
			intent: SendEmail,
			slots: Slots{
				SlotTo:      nil,
				SlotSubject: "Happy Birthday!",
				SlotMessage: "Happy Birthday! 🎉",
			},
		},
		{
			name:   "send email",
			input:  "Send email to Bob@Example.com See you tomorrow",
			intent: SendEmail,
			slots: Slots{
				SlotTo:      "bob@example.com",
				SlotSubject: "Automated Email",
				SlotMessage: "see you tomorrow",
			},
		},
		{
			name:   "reminder message first with email me",
			input:  "remind me to drink water at 9am email me",
			intent: SetReminder,
			slots: Slots{
				SlotTime:    "09:00",
				SlotMessage: "drink water",
				SlotEmailMe: true,
				SlotEmailTo: nil,
			},
		},
		{
			name:   "reminder with separate meridiem",
			input:  "remind me to call mom at 9 pm",
			intent: SetReminder,
			slots: Slots{
				SlotTime:    "21:00",
				SlotMessage: "call mom",
				SlotEmailMe: false,
				SlotEmailTo: nil,
			},
		},
		{
			name:   "reminder to explicit mailbox",
			input:  "remind me to pay rent at 10am to my mail alice@example.com",
			intent: SetReminder,
			slots: Slots{
				SlotTime:    "10:00",
				SlotMessage: "pay rent",
				SlotEmailMe: false,
				SlotEmailTo: "alice@example.com",
			},
		},
		{
			name:   "reminder time first",
			input:  "set reminder at 7:30am to stretch",
			intent: SetReminder,
			slots: Slots{
				SlotTime:    "07:30",
				SlotMessage: "stretch",
				SlotEmailMe: false,
				SlotEmailTo: nil,
			},
		},
		{
			name:   "reminder time first with email me",
			input:  "remind me @ 6pm to take the pills email me",
			intent: SetReminder,
			slots: Slots{
				SlotTime:    "18:00",
				SlotMessage: "take the pills",
				SlotEmailMe: true,
				SlotEmailTo: nil,
			},
		},
		{
			name:   "unparseable time is absent",
			input:  "remind me to call at noon",
			intent: SetReminder,
			slots: Slots{
				SlotTime:    nil,
				SlotMessage: "call",
				SlotEmailMe: false,
				SlotEmailTo: nil,
			},
		},
	}

	m := NewRuleMatcher()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			actions, ok := m.Match(context.Background(), tt.input)
			require.True(t, ok)
			require.Len(t, actions, 1)
			assert.Equal(t, tt.intent, actions[0].Intent)
			assert.Equal(t, tt.slots, actions[0].Slots)
		})
	}
}

func TestRuleMatcherNoMatch(t *testing.T) {
	t.Parallel()

	m := NewRuleMatcher()
	for _, input := range []string{
		"asdkjasd",
		"",
		"organize my downloads",
		"send a postcard to grandma",
		"remind me tomorrow",
	} {
		_, ok := m.Match(context.Background(), input)
		assert.False(t, ok, "input %q", input)
	}
}
