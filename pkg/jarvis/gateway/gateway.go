// Package gateway exposes the assistant over a small JSON HTTP API.
package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/jholhewres/jarvis/pkg/jarvis/assistant"
	"github.com/jholhewres/jarvis/pkg/jarvis/intent"
	"github.com/jholhewres/jarvis/pkg/jarvis/scheduler"
)

// Backend interprets and executes utterances.
type Backend interface {
	Interpret(ctx context.Context, text string) []intent.Action
	Execute(ctx context.Context, actions []intent.Action, p assistant.Prompter) []assistant.Result
}

// Reminders lists and removes scheduled reminders.
type Reminders interface {
	List() []scheduler.Reminder
	Remove(id string) error
}

// Gateway is the HTTP API gateway.
type Gateway struct {
	backend   Backend
	reminders Reminders
	config    assistant.GatewayConfig
	server    *http.Server
	logger    *slog.Logger
	startedAt time.Time
}

// New creates a Gateway. reminders may be nil when the scheduler is
// disabled.
func New(backend Backend, reminders Reminders, cfg assistant.GatewayConfig, logger *slog.Logger) *Gateway {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Address == "" {
		cfg.Address = "127.0.0.1:8085"
	}
	return &Gateway{
		backend:   backend,
		reminders: reminders,
		config:    cfg,
		logger:    logger.With("component", "gateway"),
		startedAt: time.Now(),
	}
}

// Handler returns the routed handler with all middleware applied.
func (g *Gateway) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", g.handleHealth)
	mux.HandleFunc("POST /api/interpret", g.handleInterpret)
	mux.HandleFunc("POST /api/message", g.handleMessage)
	mux.HandleFunc("GET /api/reminders", g.handleListReminders)
	mux.HandleFunc("DELETE /api/reminders/{id}", g.handleDeleteReminder)

	return g.securityHeadersMiddleware(g.corsMiddleware(g.authMiddleware(mux)))
}

// Start starts the HTTP server in the background.
func (g *Gateway) Start(_ context.Context) error {
	g.startedAt = time.Now()
	g.server = &http.Server{
		Addr:              g.config.Address,
		Handler:           g.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if g.config.AuthToken == "" && !isLocalAddress(g.config.Address) {
		g.logger.Warn("SECURITY: gateway has no auth token and is bound to a non-loopback address",
			"address", g.config.Address)
	}

	ln, err := net.Listen("tcp", g.config.Address)
	if err != nil {
		return err
	}

	go func() {
		if err := g.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			g.logger.Error("gateway server error", "error", err)
		}
	}()
	g.logger.Info("gateway started", "address", ln.Addr().String())
	return nil
}

// Stop gracefully shuts down the HTTP server.
func (g *Gateway) Stop(ctx context.Context) error {
	if g.server == nil {
		return nil
	}
	g.logger.Info("gateway stopping...")
	return g.server.Shutdown(ctx)
}

func isLocalAddress(addr string) bool {
	host, _, _ := net.SplitHostPort(addr)
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
