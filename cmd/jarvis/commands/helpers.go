package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jholhewres/jarvis/pkg/jarvis/assistant"
)

// resolveConfig loads the --config file, a discovered file or defaults.
// The returned path is empty when no file was found.
func resolveConfig(cmd *cobra.Command) (*assistant.Config, string, error) {
	configPath, _ := cmd.Root().PersistentFlags().GetString("config")

	cfg, path, err := assistant.LoadConfig(configPath)
	if err != nil {
		return nil, "", fmt.Errorf("loading config: %w", err)
	}
	return cfg, path, nil
}

// newLogger builds the slog logger from the logging section. --verbose
// forces debug.
func newLogger(cmd *cobra.Command, cfg *assistant.Config, w io.Writer) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")

	level := parseLevel(cfg.Logging.Level)
	if verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// interactiveLogger keeps the terminal clean: only warnings and errors
// unless --verbose is set.
func interactiveLogger(cmd *cobra.Command, cfg *assistant.Config) *slog.Logger {
	verbose, _ := cmd.Root().PersistentFlags().GetBool("verbose")
	if !verbose && parseLevel(cfg.Logging.Level) < slog.LevelWarn {
		quiet := *cfg
		quiet.Logging.Level = "warn"
		return newLogger(cmd, &quiet, os.Stderr)
	}
	return newLogger(cmd, cfg, os.Stderr)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// openAssistant loads config, resolves secrets and builds the assistant.
// Interactive commands log only warnings unless --verbose is set.
func openAssistant(cmd *cobra.Command, interactive bool) (*assistant.Assistant, *slog.Logger, error) {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return nil, nil, err
	}

	logger := newLogger(cmd, cfg, os.Stderr)
	if interactive {
		logger = interactiveLogger(cmd, cfg)
	}
	assistant.AuditSecrets(cfg, logger)
	assistant.ResolveSecrets(cfg, logger)

	a, err := assistant.New(cfg, assistant.Options{Out: cmd.OutOrStdout()}, logger)
	if err != nil {
		return nil, nil, err
	}
	return a, logger, nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
