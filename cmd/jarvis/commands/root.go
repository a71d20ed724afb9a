// Package commands implements the jarvis CLI using cobra.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command with every subcommand registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "jarvis",
		Short: "Jarvis - intent-driven personal assistant",
		Long: `Jarvis turns plain sentences into actions: it sends emails, sets
daily reminders, tidies folders and chats.

Examples:
  jarvis chat
  jarvis chat "remind me to drink water at 9am"
  jarvis interpret "send happy birthday to bob@example.com"
  jarvis organize ~/Downloads --dry-run
  jarvis serve`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newChatCmd(),
		newInterpretCmd(),
		newOrganizeCmd(),
		newRemindersCmd(),
		newRememberCmd(),
		newRecallCmd(),
		newConfigCmd(),
		newSetupCmd(),
		newServeCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")

	return rootCmd
}
