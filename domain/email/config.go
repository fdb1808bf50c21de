package email

import (
	"time"

	"github.com/zerovacancy/zerovacancy/internal/config"
)

// Config is the email section of the app config with durations resolved.
type Config struct {
	Enabled        bool
	MailgunDomain  string
	MailgunAPIKey  string
	MailgunAPIBase string
	FromEmail      string
	FromName       string
	MaxAttempts    int
	RetryBase      time.Duration
	PollInterval   time.Duration
	BatchSize      int
}

// NewConfig creates email configuration from the app config
func NewConfig(cfg *config.Config) *Config {
	c := &Config{
		Enabled:        cfg.Email.Enabled,
		MailgunDomain:  cfg.Email.MailgunDomain,
		MailgunAPIKey:  cfg.Email.MailgunAPIKey,
		MailgunAPIBase: cfg.Email.MailgunAPIBase,
		FromEmail:      cfg.Email.FromEmail,
		FromName:       cfg.Email.FromName,
		MaxAttempts:    cfg.Email.MaxRetries,
		RetryBase:      time.Duration(cfg.Email.RetryDelaySec) * time.Second,
		PollInterval:   time.Duration(cfg.Email.WorkerIntervalMs) * time.Millisecond,
		BatchSize:      cfg.Email.WorkerBatchSize,
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
	if c.PollInterval <= 0 {
		c.PollInterval = 5 * time.Second
	}
	if c.BatchSize <= 0 {
		c.BatchSize = 10
	}
	return c
}

// IsConfigured returns true if Mailgun is configured
func (c *Config) IsConfigured() bool {
	return c.MailgunDomain != "" && c.MailgunAPIKey != ""
}

// From is the RFC 5322 sender.
func (c *Config) From() string {
	if c.FromName == "" {
		return c.FromEmail
	}
	return c.FromName + " <" + c.FromEmail + ">"
}
