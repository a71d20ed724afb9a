package commands

import (
	"strings"

	"github.com/spf13/cobra"
)

// newInterpretCmd creates `jarvis interpret`, which prints the actions a
// sentence maps to without executing them.
func newInterpretCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "interpret <text>",
		Short: "Show the actions a sentence is interpreted as",
		Long: `Run the interpreter only and print the resulting actions as JSON.

Examples:
  jarvis interpret "remind me to pray at 7pm email me"
  jarvis interpret "john at gmail dot com say hi"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openAssistant(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			actions := a.Interpret(cmd.Context(), strings.Join(args, " "))
			return printJSON(cmd.OutOrStdout(), actions)
		},
	}
}
