package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/jholhewres/jarvis/pkg/jarvis/gateway"
)

// newServeCmd creates `jarvis serve`, which runs the reminder scheduler
// and the HTTP gateway until interrupted.
func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the scheduler and the HTTP API",
		Long: `Start Jarvis as a service: reminders fire on schedule and the JSON
API accepts messages.

Examples:
  jarvis serve
  jarvis serve --addr 0.0.0.0:8085`,
		Args: cobra.NoArgs,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "gateway listen address (overrides gateway.address)")
	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, logger, err := openAssistant(cmd, false)
	if err != nil {
		return err
	}
	defer a.Close()

	cfg := a.Config()
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		cfg.Gateway.Address = addr
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx); err != nil {
		return err
	}

	var gw *gateway.Gateway
	if s := a.Scheduler(); s != nil {
		gw = gateway.New(a, s, cfg.Gateway, logger)
	} else {
		gw = gateway.New(a, nil, cfg.Gateway, logger)
	}
	if err := gw.Start(ctx); err != nil {
		return err
	}

	logger.Info("Jarvis running. Press Ctrl+C to stop.", "name", cfg.Name, "address", cfg.Gateway.Address)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logger.Info("shutdown signal received, stopping...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := gw.Stop(shutdownCtx); err != nil {
		logger.Error("gateway shutdown failed", "error", err)
	}

	logger.Info("Jarvis stopped")
	return nil
}
