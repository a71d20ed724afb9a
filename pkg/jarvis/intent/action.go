// Package intent turns free-text utterances into structured actions.
//
// Interpretation runs a chain of matchers: deterministic phrase rules first,
// then an optional language-model fallback, and finally a plain chat action.
// Every matcher produces the same Action shape so the dispatcher never needs
// to know which stage resolved an utterance.
package intent

import (
	"encoding/json"
	"strings"
)

// Intent is the closed set of things the assistant knows how to do.
type Intent string

const (
	SendEmail     Intent = "send_email"
	SetReminder   Intent = "set_reminder"
	OrganizeFiles Intent = "organize_files"
	Chat          Intent = "chat"
)

// Slot names.
const (
	SlotTo      = "to"
	SlotSubject = "subject"
	SlotMessage = "message"
	SlotTime    = "time"
	SlotEmailMe = "email_me"
	SlotEmailTo = "email_to"
	SlotPath    = "path"
	SlotDryRun  = "dry_run"
	SlotQuery   = "query"
)

// slotKeys lists the valid slot keys per intent, in display order.
var slotKeys = map[Intent][]string{
	SendEmail:     {SlotTo, SlotSubject, SlotMessage},
	SetReminder:   {SlotTime, SlotMessage, SlotEmailMe, SlotEmailTo},
	OrganizeFiles: {SlotPath, SlotDryRun},
	Chat:          {SlotQuery},
}

// Valid reports whether the intent belongs to the supported set.
func (i Intent) Valid() bool {
	_, ok := slotKeys[i]
	return ok
}

// SlotKeys returns the slot keys accepted by an intent.
func SlotKeys(i Intent) []string {
	keys := slotKeys[i]
	out := make([]string, len(keys))
	copy(out, keys)
	return out
}

// Slots holds the parameters of an action. A key mapped to nil means the
// value is known to be missing.
type Slots map[string]any

// String returns the slot as a non-empty string.
func (s Slots) String(key string) (string, bool) {
	v, ok := s[key].(string)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// Bool returns the slot as a boolean. Models sometimes answer with the
// strings "true"/"false"; those are accepted too.
func (s Slots) Bool(key string) bool {
	switch v := s[key].(type) {
	case bool:
		return v
	case string:
		return strings.EqualFold(strings.TrimSpace(v), "true")
	}
	return false
}

// blank mirrors how the repair pass decides a slot still needs filling:
// nil, empty string and false are all treated as unset.
func (s Slots) blank(key string) bool {
	switch v := s[key].(type) {
	case nil:
		return true
	case string:
		return v == ""
	case bool:
		return !v
	}
	return false
}

// Action is one unit of work produced by the interpreter.
type Action struct {
	Intent Intent `json:"intent"`
	Slots  Slots  `json:"slots"`
}

// NewAction builds a sanitized action.
func NewAction(i Intent, slots Slots) Action {
	return Action{Intent: i, Slots: slots}.Sanitize()
}

// ChatAction is the conversational fallback for an utterance.
func ChatAction(query string) Action {
	return NewAction(Chat, Slots{SlotQuery: query})
}

// Sanitize returns a copy whose slots contain exactly the keys valid for
// the intent. Unknown keys are dropped and missing keys are set to nil.
func (a Action) Sanitize() Action {
	keys := slotKeys[a.Intent]
	clean := make(Slots, len(keys))
	for _, k := range keys {
		clean[k] = a.Slots[k]
	}
	return Action{Intent: a.Intent, Slots: clean}
}

// String renders the action as compact JSON, mainly for logs.
func (a Action) String() string {
	b, err := json.Marshal(a)
	if err != nil {
		return string(a.Intent)
	}
	return string(b)
}
