package email

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/mailgun/mailgun-go/v4"

	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

// sendTimeout bounds a single provider call.
const sendTimeout = 30 * time.Second

// Message is a rendered email ready to send.
type Message struct {
	To      string
	ToName  string
	Subject string
	HTML    string
	Text    string
}

// Sender delivers a message and returns the provider's message ID.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// NewSender picks Mailgun when it is configured and enabled, otherwise a
// sender that only logs.
func NewSender(cfg *Config, log *slog.Logger) Sender {
	if cfg.Enabled && cfg.IsConfigured() {
		log.Info("using Mailgun sender",
			logger.Scope("email"),
			slog.String("domain", cfg.MailgunDomain),
			slog.String("from", cfg.FromEmail))
		return NewMailgunSender(cfg, log)
	}
	log.Info("using log-only email sender, Mailgun not configured or email disabled", logger.Scope("email"))
	return &logSender{log: log.With(logger.Scope("email.noop"))}
}

// MailgunSender sends through the Mailgun HTTP API.
type MailgunSender struct {
	cfg    *Config
	log    *slog.Logger
	client *mailgun.MailgunImpl
}

// NewMailgunSender creates a new Mailgun email sender.
func NewMailgunSender(cfg *Config, log *slog.Logger) *MailgunSender {
	client := mailgun.NewMailgun(cfg.MailgunDomain, cfg.MailgunAPIKey)
	if cfg.MailgunAPIBase != "" {
		client.SetAPIBase(cfg.MailgunAPIBase)
	}
	return &MailgunSender{
		cfg:    cfg,
		log:    log.With(logger.Scope("email.mailgun")),
		client: client,
	}
}

// Send implements Sender.
func (s *MailgunSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := s.validate(); err != nil {
		return "", err
	}
	if msg.To == "" {
		return "", errors.New("recipient is required")
	}

	to := msg.To
	if msg.ToName != "" {
		to = fmt.Sprintf("%s <%s>", msg.ToName, msg.To)
	}

	m := s.client.NewMessage(s.cfg.From(), msg.Subject, msg.Text, to)
	if msg.HTML != "" {
		m.SetHtml(msg.HTML)
	}

	sendCtx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	_, id, err := s.client.Send(sendCtx, m)
	if err != nil {
		return "", fmt.Errorf("mailgun send: %w", err)
	}

	s.log.Info("email sent", slog.String("message_id", id))
	return id, nil
}

func (s *MailgunSender) validate() error {
	switch {
	case s.cfg.MailgunDomain == "":
		return errors.New("MAILGUN_DOMAIN is required")
	case s.cfg.MailgunAPIKey == "":
		return errors.New("MAILGUN_API_KEY is required")
	case s.cfg.FromEmail == "":
		return errors.New("EMAIL_FROM_ADDRESS is required")
	}
	return nil
}

// logSender stands in for a provider in development.
type logSender struct {
	log *slog.Logger
}

func (s *logSender) Send(_ context.Context, msg Message) (string, error) {
	s.log.Info("email send skipped",
		slog.String("to", msg.To),
		slog.String("subject", msg.Subject),
		slog.Int("html_bytes", len(msg.HTML)))
	return "noop-" + msg.To, nil
}
