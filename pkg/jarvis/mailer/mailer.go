// Package mailer sends plain-text email over SMTP with STARTTLS.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/wneessen/go-mail"
)

// ErrNotConfigured is returned when the sender credentials are missing.
var ErrNotConfigured = errors.New("mail sender not configured")

const (
	defaultHost = "smtp.gmail.com"
	defaultPort = 587
)

// Config holds SMTP settings.
type Config struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// Sender is the From address and the SMTP username.
	Sender string `yaml:"sender"`

	// Password is the SMTP password (for Gmail, an app password).
	Password string `yaml:"password"`
}

// Sender delivers a message. Implemented by Mailer and by test fakes.
type Sender interface {
	Send(ctx context.Context, to, subject, body string) error
}

// Dialer abstracts the SMTP transport so tests can capture messages.
type Dialer interface {
	DialAndSend(ctx context.Context, msg *mail.Msg) error
}

// Mailer sends mail through an SMTP relay.
type Mailer struct {
	cfg    Config
	dialer Dialer
	logger *slog.Logger
}

// New creates a Mailer. Missing host/port fall back to Gmail's submission
// endpoint. dialer may be nil to use a real SMTP client.
func New(cfg Config, dialer Dialer, logger *slog.Logger) *Mailer {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Host == "" {
		cfg.Host = defaultHost
	}
	if cfg.Port == 0 {
		cfg.Port = defaultPort
	}

	m := &Mailer{cfg: cfg, dialer: dialer, logger: logger.With("component", "mailer")}
	if m.dialer == nil {
		m.dialer = &smtpDialer{cfg: cfg}
	}
	return m
}

// Configured reports whether credentials are present.
func (m *Mailer) Configured() bool {
	return m.cfg.Sender != "" && m.cfg.Password != ""
}

// SenderAddress returns the configured From address.
func (m *Mailer) SenderAddress() string {
	return m.cfg.Sender
}

// Send delivers a plain-text message to a single recipient.
func (m *Mailer) Send(ctx context.Context, to, subject, body string) error {
	if !m.Configured() {
		return ErrNotConfigured
	}

	to = strings.TrimSpace(to)
	if to == "" {
		return fmt.Errorf("recipient is required")
	}

	msg := mail.NewMsg()
	if err := msg.From(m.cfg.Sender); err != nil {
		return fmt.Errorf("invalid sender %q: %w", m.cfg.Sender, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := m.dialer.DialAndSend(ctx, msg); err != nil {
		m.logger.Error("email delivery failed", "to", to, "error", err)
		return fmt.Errorf("sending email to %s: %w", to, err)
	}

	m.logger.Info("email sent", "to", to, "subject", subject)
	return nil
}

// smtpDialer is the production transport.
type smtpDialer struct {
	cfg Config
}

func (d *smtpDialer) DialAndSend(ctx context.Context, msg *mail.Msg) error {
	client, err := mail.NewClient(d.cfg.Host,
		mail.WithPort(d.cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(d.cfg.Sender),
		mail.WithPassword(d.cfg.Password),
		mail.WithTLSPolicy(mail.TLSMandatory),
	)
	if err != nil {
		return fmt.Errorf("creating SMTP client: %w", err)
	}
	return client.DialAndSendWithContext(ctx, msg)
}
