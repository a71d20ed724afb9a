// Package assistant wires the interpreter to the capabilities that carry
// out its actions: chat, mail, reminders and the file organizer.
package assistant

import (
	"time"

	"github.com/jholhewres/jarvis/pkg/jarvis/database"
	"github.com/jholhewres/jarvis/pkg/jarvis/mailer"
)

// Config is the top-level configuration.
type Config struct {
	// Name is how the assistant refers to itself.
	Name string `yaml:"name"`

	LLM       LLMConfig       `yaml:"llm"`
	Mail      mailer.Config   `yaml:"mail"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Database  DatabaseConfig  `yaml:"database"`
	Gateway   GatewayConfig   `yaml:"gateway"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LLMConfig selects the language model used for the intent fallback and
// for chat replies.
type LLMConfig struct {
	// Provider is "openai" (any OpenAI-compatible endpoint) or "gemini".
	Provider string `yaml:"provider"`

	// BaseURL of the OpenAI-compatible API. Ignored for gemini.
	BaseURL string `yaml:"base_url"`

	// APIKey authenticates with the provider. Prefer the keyring or an
	// environment variable over storing it here.
	APIKey string `yaml:"api_key"`

	// Model used for intent extraction.
	Model string `yaml:"model"`

	// ChatModel used for chat replies. Empty means Model.
	ChatModel string `yaml:"chat_model"`

	// Timeout bounds each model call.
	Timeout time.Duration `yaml:"timeout"`
}

// SchedulerConfig configures reminder persistence.
type SchedulerConfig struct {
	Enabled bool `yaml:"enabled"`

	// Storage is "sqlite" (the central database) or "file" (JSON).
	Storage string `yaml:"storage"`

	// Path of the JSON file when Storage is "file".
	Path string `yaml:"path"`
}

// DatabaseConfig locates the central SQLite database.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// GatewayConfig configures the HTTP API.
type GatewayConfig struct {
	Address string `yaml:"address"`

	// AuthToken, when set, is required as a Bearer token on /api routes.
	AuthToken string `yaml:"auth_token"`

	CORSOrigins []string `yaml:"cors_origins"`
}

// LoggingConfig configures the slog handler.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `yaml:"level"`

	// Format is "text" or "json".
	Format string `yaml:"format"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() *Config {
	return &Config{
		Name: "Jarvis",
		LLM: LLMConfig{
			Provider: "openai",
			BaseURL:  "https://api.openai.com/v1",
			Model:    "gpt-4o-mini",
			Timeout:  30 * time.Second,
		},
		Mail: mailer.Config{
			Host: "smtp.gmail.com",
			Port: 587,
		},
		Scheduler: SchedulerConfig{
			Enabled: true,
			Storage: "sqlite",
			Path:    "./data/reminders.json",
		},
		Database: DatabaseConfig{
			Path: database.DefaultPath,
		},
		Gateway: GatewayConfig{
			Address: "127.0.0.1:8085",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ChatModelOrDefault returns the model used for chat replies.
func (c LLMConfig) ChatModelOrDefault() string {
	if c.ChatModel != "" {
		return c.ChatModel
	}
	return c.Model
}
