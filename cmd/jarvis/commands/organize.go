package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jholhewres/jarvis/pkg/jarvis/organizer"
)

// newOrganizeCmd creates `jarvis organize`.
func newOrganizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "organize <path>",
		Short: "Sort a folder's files into category subfolders",
		Long: `Move the top-level files of a folder into Images, Documents, Code and
other category folders. Use --dry-run to preview.

Examples:
  jarvis organize ~/Downloads --dry-run
  jarvis organize "C:\Users\you\Desktop"`,
		Args: cobra.ExactArgs(1),
		RunE: runOrganize,
	}

	cmd.Flags().Bool("dry-run", false, "only report what would be moved")
	return cmd
}

func runOrganize(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	report, err := organizer.New(newLogger(cmd, cfg, cmd.ErrOrStderr())).Organize(args[0], dryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range report.Moves {
		fmt.Fprintf(out, "  %s -> %s\n", m.From, m.To)
	}
	if dryRun {
		fmt.Fprintf(out, "Dry run completed. %d to move, %d skipped.\n", report.Moved, report.Skipped)
		return nil
	}
	fmt.Fprintf(out, "Files organized! %d moved, %d skipped.\n", report.Moved, report.Skipped)
	return nil
}
