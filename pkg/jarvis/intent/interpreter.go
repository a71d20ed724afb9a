package intent

import (
	"context"
	"log/slog"
)

// Matcher is one interpretation stage. It reports false when it cannot
// resolve the utterance so the next stage can try.
type Matcher interface {
	Name() string
	Match(ctx context.Context, text string) ([]Action, bool)
}

// Interpreter tries its matchers in order and falls back to chat.
// It holds no mutable state and is safe for concurrent use.
type Interpreter struct {
	matchers []Matcher
	logger   *slog.Logger
}

// NewInterpreter builds an interpreter from an ordered list of matchers.
// Nil matchers are skipped.
func NewInterpreter(logger *slog.Logger, matchers ...Matcher) *Interpreter {
	if logger == nil {
		logger = slog.Default()
	}

	chain := make([]Matcher, 0, len(matchers))
	for _, m := range matchers {
		if m != nil {
			chain = append(chain, m)
		}
	}

	return &Interpreter{
		matchers: chain,
		logger:   logger.With("component", "interpreter"),
	}
}

// New returns the standard chain: phrase rules, then the model fallback
// when a completer is given.
func New(completer Completer, cfg Config, logger *slog.Logger) (*Interpreter, error) {
	fallback, err := NewGenerativeParser(completer, cfg.Timeout, logger)
	if err != nil {
		return nil, err
	}
	return NewInterpreter(logger, NewRuleMatcher(), fallback), nil
}

// Interpret maps text to at least one action.
func (in *Interpreter) Interpret(ctx context.Context, text string) []Action {
	for _, m := range in.matchers {
		actions, ok := m.Match(ctx, text)
		if ok && len(actions) > 0 {
			in.logger.Debug("intent detected", "stage", m.Name(), "actions", len(actions))
			return actions
		}
	}

	in.logger.Debug("intent detected", "stage", "default")
	return []Action{ChatAction(text)}
}
