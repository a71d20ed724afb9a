package intent

import (
	"context"
	"regexp"
	"strings"
)

// chatTriggers route an utterance straight to chat when found anywhere in it.
var chatTriggers = []string{"what is", "who are you", "explain", "tell me", "define "}

var (
	birthdayPattern = regexp.MustCompile(
		`^send (?:a )?(?:happy birthday|birthday wish|birthday message) to (.+)`)

	sendEmailPattern = regexp.MustCompile(`^send email to (\S+)\s+(.+)`)

	// "remind me to <message> at <time> [email me | to my mail <email>]"
	reminderMessageFirst = regexp.MustCompile(
		`^(?:remind me|set reminder)\s+(?:to\s+)?(.+?)\s+(?:at|@)\s+([^\s]+(?:\s?(?:am|pm))?)\s*(?:.*?(email me)|.*?(?:to|at)\s*(?:my\s*)?mail\s*(\S+))?$`)

	// "remind me at <time> to <message> [email me | to my mail <email>]"
	reminderTimeFirst = regexp.MustCompile(
		`^(?:remind me|set reminder)\s+(?:at|@)\s+([^\s]+(?:\s?(?:am|pm))?)\s+(?:to\s+)?(.+?)(?:\s*(email me)|\s*(?:to|at)\s*(?:my\s*)?mail\s*(\S+))?$`)
)

const (
	birthdaySubject = "Happy Birthday!"
	birthdayMessage = "Happy Birthday! 🎉"

	// DefaultEmailSubject is used when an email request carries no subject.
	DefaultEmailSubject = "Automated Email"
)

// rule recognizes one phrasing of one intent. text is the original
// utterance; t is its lowercased form with wake words removed.
type rule struct {
	name  string
	match func(text, t string) (Action, bool)
}

// RuleMatcher resolves utterances with a fixed, ordered list of phrase
// rules. The first rule that matches wins.
type RuleMatcher struct {
	rules []rule
}

// NewRuleMatcher returns the matcher with the built-in rule set.
func NewRuleMatcher() *RuleMatcher {
	return &RuleMatcher{rules: []rule{
		{"chat", matchChat},
		{"birthday", matchBirthday},
		{"send_email", matchSendEmail},
		{"reminder_message_first", matchReminderMessageFirst},
		{"reminder_time_first", matchReminderTimeFirst},
	}}
}

// Name identifies the stage in logs.
func (m *RuleMatcher) Name() string { return "rules" }

// Match runs the rules against text.
func (m *RuleMatcher) Match(_ context.Context, text string) ([]Action, bool) {
	t := stripWakeWords(text)
	for _, r := range m.rules {
		if a, ok := r.match(text, t); ok {
			return []Action{a}, true
		}
	}
	return nil, false
}

func stripWakeWords(text string) string {
	t := strings.ToLower(strings.TrimSpace(text))
	t = strings.ReplaceAll(t, "hey jarvis", "")
	t = strings.ReplaceAll(t, "jarvis", "")
	return strings.TrimSpace(t)
}

func matchChat(text, t string) (Action, bool) {
	for _, trigger := range chatTriggers {
		if strings.Contains(t, trigger) {
			return ChatAction(text), true
		}
	}
	return Action{}, false
}

func matchBirthday(_, t string) (Action, bool) {
	m := birthdayPattern.FindStringSubmatch(t)
	if m == nil {
		return Action{}, false
	}

	var to any
	if email, ok := NormalizeSpokenEmail(m[1]); ok && strings.Contains(email, "@") {
		to = email
	}
	return NewAction(SendEmail, Slots{
		SlotTo:      to,
		SlotSubject: birthdaySubject,
		SlotMessage: birthdayMessage,
	}), true
}

func matchSendEmail(_, t string) (Action, bool) {
	m := sendEmailPattern.FindStringSubmatch(t)
	if m == nil {
		return Action{}, false
	}

	return NewAction(SendEmail, Slots{
		SlotTo:      optional(NormalizeSpokenEmail(m[1])),
		SlotSubject: DefaultEmailSubject,
		SlotMessage: m[2],
	}), true
}

func matchReminderMessageFirst(_, t string) (Action, bool) {
	m := reminderMessageFirst.FindStringSubmatch(t)
	if m == nil {
		return Action{}, false
	}
	return reminderAction(m[1], m[2], m[3], m[4]), true
}

func matchReminderTimeFirst(_, t string) (Action, bool) {
	m := reminderTimeFirst.FindStringSubmatch(t)
	if m == nil {
		return Action{}, false
	}
	return reminderAction(m[2], m[1], m[3], m[4]), true
}

func reminderAction(message, rawTime, emailMe, rawEmail string) Action {
	var emailTo any
	if rawEmail != "" {
		emailTo = optional(NormalizeSpokenEmail(rawEmail))
	}
	return NewAction(SetReminder, Slots{
		SlotTime:    optional(ParseTime(strings.TrimSpace(rawTime))),
		SlotMessage: strings.TrimSpace(message),
		SlotEmailMe: emailMe != "",
		SlotEmailTo: emailTo,
	})
}

// optional converts a (value, ok) pair into a slot value, nil when absent.
func optional(v string, ok bool) any {
	if !ok {
		return nil
	}
	return v
}
