package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/jholhewres/jarvis/pkg/jarvis/assistant"
)

const defaultConfigPath = "config.yaml"

// newConfigCmd creates `jarvis config` with its subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration",
		Long: `Manage the Jarvis configuration file and stored secrets.

Examples:
  jarvis config init
  jarvis config show
  jarvis config set-key
  jarvis config set-key --mail`,
	}

	cmd.AddCommand(
		newConfigInitCmd(),
		newConfigShowCmd(),
		newConfigSetKeyCmd(),
	)
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a default config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, _ := cmd.Root().PersistentFlags().GetString("config")
			if path == "" {
				path = defaultConfigPath
			}
			force, _ := cmd.Flags().GetBool("force")
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}

			cfg := assistant.DefaultConfig()
			cfg.LLM.APIKey = "${" + assistant.EnvAPIKey + "}"
			cfg.Mail.Sender = "${" + assistant.EnvMailSender + "}"
			cfg.Mail.Password = "${" + assistant.EnvMailPassword + "}"
			if err := assistant.SaveConfigToFile(cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config written to %s\n", path)
			return nil
		},
	}

	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the active configuration with secrets masked",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, path, err := resolveConfig(cmd)
			if err != nil {
				return err
			}

			masked := *cfg
			masked.LLM.APIKey = mask(cfg.LLM.APIKey)
			masked.Mail.Password = mask(cfg.Mail.Password)
			masked.Gateway.AuthToken = mask(cfg.Gateway.AuthToken)

			data, err := yaml.Marshal(&masked)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if path == "" {
				fmt.Fprintln(out, "# no config file found, showing defaults")
			} else {
				fmt.Fprintf(out, "# %s\n", path)
			}
			_, err = out.Write(data)
			return err
		},
	}
}

func newConfigSetKeyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "set-key",
		Short: "Store the model API key (or mail password) in the OS keyring",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			mail, _ := cmd.Flags().GetBool("mail")
			remove, _ := cmd.Flags().GetBool("delete")

			key, label := assistant.KeyringAPIKey, "API key"
			if mail {
				key, label = assistant.KeyringMailPassword, "Mail app password"
			}

			if remove {
				if err := assistant.DeleteKeyring(key); err != nil {
					return fmt.Errorf("removing %s from keyring: %w", label, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed from the OS keyring.\n", label)
				return nil
			}

			if !assistant.KeyringAvailable() {
				return errors.New("OS keyring is not available; set the value through an environment variable instead")
			}

			value, err := assistant.ReadPassword(label + ": ")
			if err != nil {
				return err
			}
			value = strings.TrimSpace(value)
			if value == "" {
				return errors.New("empty value, nothing stored")
			}

			if err := assistant.StoreKeyring(key, value); err != nil {
				return fmt.Errorf("storing %s in keyring: %w", label, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s stored in the OS keyring.\n", label)
			return nil
		},
	}

	cmd.Flags().Bool("mail", false, "store the SMTP app password instead of the API key")
	cmd.Flags().Bool("delete", false, "remove the stored value")
	return cmd
}

// mask keeps the first and last characters of a secret.
func mask(s string) string {
	switch {
	case s == "" || assistant.IsEnvReference(s):
		return s
	case len(s) <= 8:
		return "****"
	default:
		return s[:4] + "****" + s[len(s)-4:]
	}
}
