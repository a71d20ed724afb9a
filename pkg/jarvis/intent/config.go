package intent

import "time"

// Config tunes the interpreter.
type Config struct {
	// Timeout bounds a single model call made by the fallback stage.
	Timeout time.Duration
}
