package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// newRememberCmd creates `jarvis remember`, which stores a fact.
func newRememberCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remember <key> <value>",
		Short: "Store a fact in long-term memory",
		Long: `Store a fact Jarvis should keep. Keys are case-insensitive.

Examples:
  jarvis remember city Lisbon
  jarvis remember "favorite color" blue
  jarvis remember city --forget`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			forget, _ := cmd.Flags().GetBool("forget")
			if !forget && len(args) < 2 {
				return fmt.Errorf("a value is required unless --forget is set")
			}

			a, _, err := openAssistant(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			if forget {
				if err := a.Memory().Delete(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %q.\n", args[0])
				return nil
			}

			if err := a.Memory().Save(args[0], args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Remembered %s = %q\n", strings.ToLower(strings.TrimSpace(args[0])), args[1])
			return nil
		},
	}

	cmd.Flags().Bool("forget", false, "delete the fact instead")
	return cmd
}

// newRecallCmd creates `jarvis recall`, which prints one or all facts.
func newRecallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "recall [key]",
		Short: "Show remembered facts",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, _, err := openAssistant(cmd, true)
			if err != nil {
				return err
			}
			defer a.Close()

			out := cmd.OutOrStdout()
			if len(args) == 1 {
				v, ok, err := a.Memory().Get(args[0])
				if err != nil {
					return err
				}
				if !ok {
					fmt.Fprintf(out, "I don't remember anything about %q.\n", args[0])
					return nil
				}
				fmt.Fprintln(out, v)
				return nil
			}

			facts, err := a.Memory().All()
			if err != nil {
				return err
			}
			if len(facts) == 0 {
				fmt.Fprintln(out, "Nothing remembered yet.")
				return nil
			}
			tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			for _, f := range facts {
				fmt.Fprintf(tw, "%s\t%s\n", f.Key, f.Value)
			}
			return tw.Flush()
		},
	}
}
