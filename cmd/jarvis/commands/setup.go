package commands

import (
	"errors"
	"fmt"
	"net/mail"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/jholhewres/jarvis/pkg/jarvis/assistant"
)

// newSetupCmd creates `jarvis setup`, an interactive configuration wizard.
func newSetupCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "setup",
		Short: "Interactive configuration wizard",
		Long: `Walk through the model provider, email and gateway settings and
write a config file. Secrets go to the OS keyring when it is available.`,
		Args: cobra.NoArgs,
		RunE: runSetup,
	}
}

// setupAnswers holds the wizard's fields.
type setupAnswers struct {
	name        string
	provider    string
	model       string
	apiKey      string
	sender      string
	password    string
	storage     string
	gatewayAddr string
	useKeyring  bool
}

func runSetup(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Root().PersistentFlags().GetString("config")
	if path == "" {
		path = defaultConfigPath
	}

	cfg, _, err := assistant.LoadConfig(path)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		cfg = assistant.DefaultConfig()
	}

	ans := setupAnswers{
		name:        cfg.Name,
		provider:    cfg.LLM.Provider,
		model:       cfg.LLM.Model,
		sender:      cfg.Mail.Sender,
		storage:     cfg.Scheduler.Storage,
		gatewayAddr: cfg.Gateway.Address,
		useKeyring:  assistant.KeyringAvailable(),
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Assistant name").
				Value(&ans.name),
			huh.NewSelect[string]().
				Title("Model provider").
				Options(
					huh.NewOption("OpenAI-compatible", "openai"),
					huh.NewOption("Google Gemini", "gemini"),
				).
				Value(&ans.provider),
			huh.NewInput().
				Title("Model").
				Placeholder("gpt-4o-mini or gemini-2.5-flash").
				Value(&ans.model),
			huh.NewInput().
				Title("API key").
				Description("Leave empty to use rules only; chat needs a key.").
				EchoMode(huh.EchoModePassword).
				Value(&ans.apiKey),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Gmail address").
				Description("Used to send emails and emailed reminders.").
				Validate(validateOptionalEmail).
				Value(&ans.sender),
			huh.NewInput().
				Title("Gmail app password").
				EchoMode(huh.EchoModePassword).
				Value(&ans.password),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Reminder storage").
				Options(
					huh.NewOption("SQLite database", "sqlite"),
					huh.NewOption("JSON file", "file"),
				).
				Value(&ans.storage),
			huh.NewInput().
				Title("Gateway address").
				Value(&ans.gatewayAddr),
			huh.NewConfirm().
				Title("Store secrets in the OS keyring?").
				Value(&ans.useKeyring),
		),
	)
	if err := form.Run(); err != nil {
		return fmt.Errorf("setup cancelled: %w", err)
	}

	cfg.Name = strings.TrimSpace(ans.name)
	cfg.LLM.Provider = ans.provider
	cfg.LLM.Model = strings.TrimSpace(ans.model)
	cfg.Mail.Sender = strings.TrimSpace(ans.sender)
	cfg.Scheduler.Storage = ans.storage
	cfg.Gateway.Address = strings.TrimSpace(ans.gatewayAddr)

	if err := storeSecret(&cfg.LLM.APIKey, ans.apiKey, assistant.KeyringAPIKey, ans.useKeyring); err != nil {
		return err
	}
	if err := storeSecret(&cfg.Mail.Password, ans.password, assistant.KeyringMailPassword, ans.useKeyring); err != nil {
		return err
	}

	if err := assistant.SaveConfigToFile(cfg, path); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s. Try: jarvis chat\n", path)
	return nil
}

// storeSecret puts value in the keyring, or in the config field when the
// keyring is not used. Empty values leave the field untouched.
func storeSecret(field *string, value, key string, useKeyring bool) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	if useKeyring {
		if err := assistant.StoreKeyring(key, value); err != nil {
			return fmt.Errorf("storing %s in keyring: %w", key, err)
		}
		*field = ""
		return nil
	}
	*field = value
	return nil
}

func validateOptionalEmail(s string) error {
	s = strings.TrimSpace(s)
	if s == "" || assistant.IsEnvReference(s) {
		return nil
	}
	if _, err := mail.ParseAddress(s); err != nil {
		return errors.New("not a valid email address")
	}
	return nil
}
