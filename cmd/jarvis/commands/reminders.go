package commands

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/jholhewres/jarvis/pkg/jarvis/scheduler"
)

// newRemindersCmd creates `jarvis reminders` with its subcommands.
func newRemindersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reminders",
		Aliases: []string{"reminder"},
		Short:   "Manage daily reminders",
	}

	cmd.AddCommand(
		newRemindersListCmd(),
		newRemindersAddCmd(),
		newRemindersRemoveCmd(),
	)
	return cmd
}

// withReminders opens the assistant with persisted reminders loaded.
func withReminders(cmd *cobra.Command, fn func(s *scheduler.Scheduler) error) error {
	a, _, err := openAssistant(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	s := a.Scheduler()
	if s == nil {
		return errors.New("reminders are disabled (scheduler.enabled is false)")
	}
	if err := s.Load(); err != nil {
		return fmt.Errorf("loading reminders: %w", err)
	}
	return fn(s)
}

func newRemindersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List reminders",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withReminders(cmd, func(s *scheduler.Scheduler) error {
				list := s.List()
				out := cmd.OutOrStdout()
				if len(list) == 0 {
					fmt.Fprintln(out, "No reminders.")
					return nil
				}

				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tTIME\tMESSAGE\tEMAIL\tRUNS\tLAST ERROR")
				for _, r := range list {
					fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
						r.ID, r.Time, r.Message, dash(r.EmailTo), r.RunCount, dash(r.LastError))
				}
				return tw.Flush()
			})
		},
	}
}

func newRemindersAddCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <HH:MM> <message>",
		Short: "Add a daily reminder",
		Long: `Add a reminder that fires every day at the given 24-hour time.

Examples:
  jarvis reminders add 09:00 drink water
  jarvis reminders add 18:30 send report --email boss@example.com`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			emailTo, _ := cmd.Flags().GetString("email")
			return withReminders(cmd, func(s *scheduler.Scheduler) error {
				r := &scheduler.Reminder{
					Time:    args[0],
					Message: strings.Join(args[1:], " "),
					EmailTo: emailTo,
				}
				if err := s.Add(r); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reminder %s set for %s\n", r.ID, r.Time)
				return nil
			})
		},
	}

	cmd.Flags().String("email", "", "also email the reminder to this address")
	return cmd
}

func newRemindersRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "remove <id>",
		Aliases: []string{"rm"},
		Short:   "Remove a reminder",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withReminders(cmd, func(s *scheduler.Scheduler) error {
				if err := s.Remove(args[0]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reminder %s removed.\n", args[0])
				return nil
			})
		},
	}
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
