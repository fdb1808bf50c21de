package config

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"go.uber.org/fx"
)

var Module = fx.Module("config",
	fx.Provide(NewConfig),
)

// Config holds all application configuration
type Config struct {
	// Server settings
	ServerPort    int    `env:"SERVER_PORT" envDefault:"4002"`
	ServerAddress string `env:"SERVER_ADDRESS" envDefault:"0.0.0.0"`
	Environment   string `env:"ENVIRONMENT" envDefault:"local"`
	Debug         bool   `env:"DEBUG" envDefault:"false"`

	Database  DatabaseConfig
	Email     EmailConfig
	Waitlist  WaitlistConfig
	Site      SiteConfig
	Locations LocationsConfig
	Scheduler SchedulerConfig
	Otel      OtelConfig

	// Server timeouts
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"30s"`
	IdleTimeout     time.Duration `env:"SERVER_IDLE_TIMEOUT" envDefault:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host         string        `env:"POSTGRES_HOST" envDefault:""`
	Port         int           `env:"POSTGRES_PORT" envDefault:"5432"`
	User         string        `env:"POSTGRES_USER" envDefault:"zerovacancy"`
	Password     string        `env:"POSTGRES_PASSWORD" envDefault:""`
	Database     string        `env:"POSTGRES_DB" envDefault:"zerovacancy"`
	SSLMode      string        `env:"POSTGRES_SSL_MODE" envDefault:"disable"`
	MaxOpenConns int           `env:"DB_MAX_OPEN_CONNS" envDefault:"10"`
	MaxIdleConns int           `env:"DB_MAX_IDLE_CONNS" envDefault:"2"`
	MaxIdleTime  time.Duration `env:"DB_MAX_IDLE_TIME" envDefault:"5m"`
	QueryDebug   bool          `env:"DB_QUERY_DEBUG" envDefault:"false"`
}

// DSN returns the PostgreSQL connection string
func (d *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode,
	)
}

// IsConfigured reports whether enough is set to attempt a connection.
func (d *DatabaseConfig) IsConfigured() bool {
	return d.Host != "" && d.User != "" && d.Database != ""
}

// EmailConfig holds email service configuration
type EmailConfig struct {
	// Enabled determines if email sending is enabled
	Enabled bool `env:"EMAIL_ENABLED" envDefault:"false"`
	// MailgunDomain is the Mailgun sending domain
	MailgunDomain string `env:"MAILGUN_DOMAIN" envDefault:""`
	// MailgunAPIKey is the Mailgun API key
	MailgunAPIKey string `env:"MAILGUN_API_KEY" envDefault:""`
	// MailgunAPIBase overrides the API endpoint, e.g. https://api.eu.mailgun.net/v3
	MailgunAPIBase string `env:"MAILGUN_API_BASE" envDefault:""`
	FromEmail      string `env:"EMAIL_FROM_ADDRESS" envDefault:"hello@zerovacancy.ai"`
	FromName       string `env:"EMAIL_FROM_NAME" envDefault:"ZeroVacancy"`
	// MaxRetries is the maximum number of delivery attempts per job
	MaxRetries       int `env:"EMAIL_MAX_RETRIES" envDefault:"3"`
	RetryDelaySec    int `env:"EMAIL_RETRY_DELAY_SEC" envDefault:"60"`
	WorkerIntervalMs int `env:"EMAIL_WORKER_INTERVAL_MS" envDefault:"5000"`
	WorkerBatchSize  int `env:"EMAIL_WORKER_BATCH_SIZE" envDefault:"10"`
}

// IsConfigured returns true if Mailgun is configured
func (e *EmailConfig) IsConfigured() bool {
	return e.MailgunDomain != "" && e.MailgunAPIKey != ""
}

// WaitlistConfig controls the public signup endpoint.
type WaitlistConfig struct {
	// DefaultSource is recorded when the request omits a source
	DefaultSource string `env:"WAITLIST_DEFAULT_SOURCE" envDefault:"website"`
	// RequestsPerMinute and Burst bound signups per client IP
	RequestsPerMinute int `env:"WAITLIST_RATE_PER_MINUTE" envDefault:"10"`
	Burst             int `env:"WAITLIST_RATE_BURST" envDefault:"5"`
	// MaxBodyBytes caps the request body, metadata included
	MaxBodyBytes int64 `env:"WAITLIST_MAX_BODY_BYTES" envDefault:"16384"`
	// WelcomeTemplate is the email template enqueued for new signups
	WelcomeTemplate string `env:"WAITLIST_WELCOME_TEMPLATE" envDefault:"waitlist-welcome"`
	WelcomeSubject  string `env:"WAITLIST_WELCOME_SUBJECT" envDefault:"You're on the ZeroVacancy waitlist"`
}

// SiteConfig holds public-facing links and branding.
type SiteConfig struct {
	Name    string `env:"SITE_NAME" envDefault:"ZeroVacancy"`
	BaseURL string `env:"SITE_BASE_URL" envDefault:"http://localhost:4002"`
	// Hosted third-party flows the thin pages hand off to
	AuthURL        string        `env:"SITE_AUTH_URL" envDefault:""`
	AccountURL     string        `env:"SITE_ACCOUNT_URL" envDefault:""`
	ConnectURL     string        `env:"SITE_CONNECT_ONBOARDING_URL" envDefault:""`
	CheckoutURL    string        `env:"SITE_CHECKOUT_URL" envDefault:""`
	VisitCookie    string        `env:"SITE_VISIT_COOKIE" envDefault:"zv_visited"`
	VisitCookieTTL time.Duration `env:"SITE_VISIT_COOKIE_TTL" envDefault:"8760h"`
}

// LocationsConfig tunes the suggestion search.
type LocationsConfig struct {
	MaxPerGroup   int           `env:"LOCATIONS_MAX_PER_GROUP" envDefault:"5"`
	MaxNearby     int           `env:"LOCATIONS_MAX_NEARBY" envDefault:"10"`
	DebounceDelay time.Duration `env:"LOCATIONS_DEBOUNCE_DELAY" envDefault:"300ms"`
}

// SchedulerConfig holds scheduled maintenance settings.
type SchedulerConfig struct {
	Enabled               bool          `env:"SCHEDULER_ENABLED" envDefault:"true"`
	EmailRecoveryInterval time.Duration `env:"SCHEDULER_EMAIL_RECOVERY_INTERVAL" envDefault:"10m"`
	EmailStaleMinutes     int           `env:"SCHEDULER_EMAIL_STALE_MINUTES" envDefault:"10"`
	EmailPruneInterval    time.Duration `env:"SCHEDULER_EMAIL_PRUNE_INTERVAL" envDefault:"24h"`
	EmailRetentionDays    int           `env:"SCHEDULER_EMAIL_RETENTION_DAYS" envDefault:"30"`
	// EmailPruneSchedule is a cron expression ("0 3 * * *") that overrides EmailPruneInterval
	EmailPruneSchedule string `env:"SCHEDULER_EMAIL_PRUNE_SCHEDULE" envDefault:""`
}

// NewConfig loads configuration from environment variables
func NewConfig(log *slog.Logger) (*Config, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}

	log.Info("configuration loaded",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.ServerPort),
		slog.String("db_host", cfg.Database.Host),
		slog.Bool("email_enabled", cfg.Email.Enabled),
	)

	return cfg, nil
}

// Load parses the environment without logging; used by tools outside the fx graph.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}
