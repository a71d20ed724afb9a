package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/chzyer/readline"
	"github.com/spf13/cobra"

	"github.com/jholhewres/jarvis/pkg/jarvis/assistant"
)

// newChatCmd creates the `jarvis chat` command.
func newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat [message]",
		Short: "Talk to Jarvis",
		Long: `Send one message, or start an interactive session without arguments.
In the session type "help" for examples and "exit" to quit.

Examples:
  jarvis chat "remind me at 23:20 to stretch"
  jarvis chat`,
		RunE: runChat,
	}
}

func runChat(cmd *cobra.Command, args []string) error {
	a, _, err := openAssistant(cmd, true)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	if len(args) > 0 {
		printResults(cmd.OutOrStdout(), a.Handle(ctx, strings.Join(args, " "), formPrompter{}))
		return nil
	}

	if err := a.Start(ctx); err != nil {
		return err
	}
	return runREPL(ctx, a)
}

func runREPL(ctx context.Context, a *assistant.Assistant) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "You: ",
		HistoryFile:     historyFile(),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("starting prompt: %w", err)
	}
	defer rl.Close()

	out := rl.Stdout()
	name := a.Config().Name
	fmt.Fprintf(out, "%s is ready. Type `help` for examples, `exit` to quit.\n", name)

	prompter := &linePrompter{rl: rl}
	for {
		line, err := rl.Readline()
		if errors.Is(err, readline.ErrInterrupt) {
			if line == "" {
				return nil
			}
			continue
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}

		text := strings.TrimSpace(line)
		switch strings.ToLower(text) {
		case "":
			continue
		case "exit", "quit", "stop":
			fmt.Fprintln(out, "Goodbye.")
			return nil
		case "help":
			fmt.Fprintln(out, assistant.HelpText)
			continue
		}

		for _, res := range a.Handle(ctx, text, prompter) {
			fmt.Fprintf(out, "%s: %s\n", name, res.Message)
		}
	}
}

func printResults(w io.Writer, results []assistant.Result) {
	for _, res := range results {
		fmt.Fprintln(w, res.Message)
	}
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".jarvis_history")
}

// linePrompter asks follow-up questions on the REPL line.
type linePrompter struct {
	rl *readline.Instance
}

func (p *linePrompter) Ask(_ context.Context, question string) (string, error) {
	prev := "You: "
	p.rl.SetPrompt(question + " ")
	defer p.rl.SetPrompt(prev)
	return p.rl.Readline()
}

// formPrompter asks follow-up questions with a one-field form.
type formPrompter struct{}

func (formPrompter) Ask(_ context.Context, question string) (string, error) {
	var answer string
	err := huh.NewInput().
		Title(question).
		Value(&answer).
		Run()
	return answer, err
}
