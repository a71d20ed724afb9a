package intent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Completer is the language-model boundary: one system message, one user
// message, free text back.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

// CompleterFunc adapts a function to Completer.
type CompleterFunc func(ctx context.Context, system, user string) (string, error)

// Complete calls f.
func (f CompleterFunc) Complete(ctx context.Context, system, user string) (string, error) {
	return f(ctx, system, user)
}

// ExtractorPrompt is the instruction sent to the model.
const ExtractorPrompt = `
You are an intent extractor for a CLI assistant.

Allowed intents:
  - send_email (slots: to, subject, message)
  - set_reminder (slots: time, message, email_me, email_to)
  - organize_files (slots: path, dry_run)
  - chat (slots: query)

If user says things like "remind me to drink water at 9am email me", set:
  "time": "09:00" (24h),
  "message": "drink water",
  "email_me": true

If they provide an email inside text, set "email_to".
Return ONLY valid JSON array.
`

// actionListSchema is the minimum shape a model response must have.
const actionListSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "type": "array",
  "minItems": 1,
  "items": {
    "type": "object",
    "required": ["intent"],
    "properties": {
      "intent": {"type": "string"},
      "slots": {"type": ["object", "null"]}
    }
  }
}`

const defaultFallbackTimeout = 30 * time.Second

var (
	reminderLead = regexp.MustCompile(`(?i)(remind me|set reminder)\s+(to\s+)?`)
	reminderTail = regexp.MustCompile(`(?i)\s+(at|@)\s+.*$`)
)

// GenerativeParser asks a language model for actions when no rule matched.
// Its output is validated, restricted to the known intents and repaired with
// the same deterministic helpers the rules use.
type GenerativeParser struct {
	completer Completer
	schema    *jsonschema.Schema
	timeout   time.Duration
	logger    *slog.Logger
}

// NewGenerativeParser creates the fallback parser. A nil completer yields a
// parser that never matches. timeout <= 0 selects the default.
func NewGenerativeParser(completer Completer, timeout time.Duration, logger *slog.Logger) (*GenerativeParser, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout <= 0 {
		timeout = defaultFallbackTimeout
	}

	schema, err := compileActionSchema()
	if err != nil {
		return nil, err
	}

	return &GenerativeParser{
		completer: completer,
		schema:    schema,
		timeout:   timeout,
		logger:    logger.With("component", "intent-llm"),
	}, nil
}

func compileActionSchema() (*jsonschema.Schema, error) {
	var doc any
	if err := json.Unmarshal([]byte(actionListSchema), &doc); err != nil {
		return nil, fmt.Errorf("parsing action schema: %w", err)
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("actions.json", doc); err != nil {
		return nil, fmt.Errorf("adding action schema: %w", err)
	}
	schema, err := compiler.Compile("actions.json")
	if err != nil {
		return nil, fmt.Errorf("compiling action schema: %w", err)
	}
	return schema, nil
}

// Name identifies the stage in logs.
func (p *GenerativeParser) Name() string { return "llm" }

// Enabled reports whether a model is configured.
func (p *GenerativeParser) Enabled() bool { return p.completer != nil }

// Match queries the model. Any failure is logged and reported as no match.
func (p *GenerativeParser) Match(ctx context.Context, text string) ([]Action, bool) {
	if p.completer == nil {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	raw, err := p.completer.Complete(ctx, ExtractorPrompt, text)
	if err != nil {
		p.logger.Warn("intent extraction failed", "error", err)
		return nil, false
	}

	actions, err := p.parse(raw, text)
	if err != nil {
		p.logger.Warn("discarding model response", "error", err, "response", truncate(raw, 200))
		return nil, false
	}
	return actions, true
}

// parse decodes, validates and repairs a model response for text.
func (p *GenerativeParser) parse(raw, text string) ([]Action, error) {
	raw = strings.ReplaceAll(raw, "```json", "")
	raw = strings.ReplaceAll(raw, "```", "")
	raw = strings.TrimSpace(raw)

	var doc any
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if obj, ok := doc.(map[string]any); ok {
		doc = []any{obj}
	}

	if err := p.schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("unexpected shape: %w", err)
	}

	items := doc.([]any)
	actions := make([]Action, 0, len(items))
	for _, item := range items {
		obj := item.(map[string]any)
		name, _ := obj["intent"].(string)
		slots, _ := obj["slots"].(map[string]any)

		i := Intent(strings.TrimSpace(strings.ToLower(name)))
		if !i.Valid() {
			p.logger.Debug("unknown intent from model, using chat", "intent", name)
			actions = append(actions, ChatAction(text))
			continue
		}

		a := NewAction(i, Slots(slots))
		if i == SetReminder {
			repairReminder(a.Slots, text)
		}
		actions = append(actions, a)
	}
	return actions, nil
}

// repairReminder fills reminder slots the model left blank using the
// deterministic parsers over the original utterance.
func repairReminder(s Slots, text string) {
	if s.blank(SlotTime) {
		s[SlotTime] = optional(ParseTime(text))
	}

	if s.blank(SlotMessage) {
		msg := reminderLead.ReplaceAllString(text, "")
		msg = strings.TrimSpace(reminderTail.ReplaceAllString(msg, ""))
		s[SlotMessage] = optional(msg, msg != "")
	}

	if strings.Contains(strings.ToLower(text), "email me") && !s.Bool(SlotEmailMe) {
		s[SlotEmailMe] = true
	}

	if s.blank(SlotEmailTo) {
		email, _, ok := ExtractEmailAndMessage(text)
		s[SlotEmailTo] = optional(email, ok)
	}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
