package waitlist

import (
	"context"
	"errors"
	"log/slog"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.opentelemetry.io/otel/attribute"

	"github.com/zerovacancy/zerovacancy/domain/email"
	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/apperror"
	"github.com/zerovacancy/zerovacancy/pkg/logger"
	"github.com/zerovacancy/zerovacancy/pkg/tracing"
)

var signups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "waitlist_signups_total",
	Help: "Waitlist join attempts by outcome",
}, []string{"status"})

// Outcomes beyond the two client-facing statuses, for metrics only.
const (
	outcomeInvalid     = "invalid"
	outcomeError       = "error"
	outcomeRateLimited = "rate_limited"
)

// Mailer queues the welcome email. *email.JobsService satisfies it.
type Mailer interface {
	Enqueue(ctx context.Context, opts email.EnqueueOptions) (*email.Job, error)
}

// Service handles waitlist signups.
type Service struct {
	store  Store
	mailer Mailer
	cfg    config.WaitlistConfig
	site   config.SiteConfig
	log    *slog.Logger
}

// NewService creates a waitlist service. A nil store makes every Join fail
// with a configuration error; a nil mailer skips welcome emails.
func NewService(store Store, mailer Mailer, cfg *config.Config, log *slog.Logger) *Service {
	return &Service{
		store:  store,
		mailer: mailer,
		cfg:    cfg.Waitlist,
		site:   cfg.Site,
		log:    log.With(logger.Scope("waitlist")),
	}
}

// Join adds req.Email to the waitlist. A repeat address is not an error:
// it yields StatusAlreadySubscribed and leaves the table unchanged. The
// welcome email is queued best-effort and never fails the signup.
func (s *Service) Join(ctx context.Context, req JoinRequest) (*JoinResult, error) {
	ctx, span := tracing.Start(ctx, "waitlist.join")
	defer span.End()

	if s.store == nil || s.site.Name == "" {
		signups.WithLabelValues(outcomeError).Inc()
		s.log.Error("waitlist signup rejected, server is missing database or site configuration")
		return nil, apperror.ErrNotConfigured
	}

	addr, err := ValidateEmail(req.Email)
	if err != nil {
		signups.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}
	if err := validateMetadata(req.Metadata); err != nil {
		signups.WithLabelValues(outcomeInvalid).Inc()
		return nil, err
	}

	signup := &Signup{
		ID:               uuid.NewString(),
		Email:            addr,
		Source:           normalizeSource(req.Source, s.cfg.DefaultSource),
		MarketingConsent: req.MarketingConsent,
		Metadata:         req.Metadata,
	}
	if signup.Metadata == nil {
		signup.Metadata = map[string]any{}
	}
	span.SetAttributes(attribute.String("zerovacancy.waitlist.source", signup.Source))

	err = s.store.Insert(ctx, signup)
	if errors.Is(err, ErrDuplicate) {
		signups.WithLabelValues(StatusAlreadySubscribed).Inc()
		s.log.Info("waitlist signup already present", slog.String("source", signup.Source))
		return &JoinResult{Status: StatusAlreadySubscribed}, nil
	}
	if err != nil {
		signups.WithLabelValues(outcomeError).Inc()
		tracing.Fail(span, err)
		return nil, apperror.ErrDatabase.WithInternal(err)
	}

	signups.WithLabelValues(StatusSubscribed).Inc()
	s.log.Info("waitlist signup created",
		slog.String("id", signup.ID),
		slog.String("source", signup.Source),
		slog.Bool("marketing_consent", signup.MarketingConsent))

	s.sendWelcome(ctx, signup)

	return &JoinResult{Status: StatusSubscribed, ID: signup.ID}, nil
}

// Count returns the number of signups.
func (s *Service) Count(ctx context.Context) (int, error) {
	if s.store == nil {
		return 0, apperror.ErrNotConfigured
	}
	return s.store.Count(ctx)
}

func (s *Service) sendWelcome(ctx context.Context, signup *Signup) {
	if s.mailer == nil || s.cfg.WelcomeTemplate == "" {
		return
	}

	sourceType := "waitlist_signup"
	_, err := s.mailer.Enqueue(ctx, email.EnqueueOptions{
		TemplateName: s.cfg.WelcomeTemplate,
		ToEmail:      signup.Email,
		Subject:      s.cfg.WelcomeSubject,
		TemplateData: map[string]any{
			"email":    signup.Email,
			"siteName": s.site.Name,
			"siteUrl":  s.site.BaseURL,
			"ctaUrl":   s.site.BaseURL,
		},
		SourceType: &sourceType,
		SourceID:   &signup.ID,
	})
	if err != nil {
		s.log.Warn("welcome email not queued", slog.String("id", signup.ID), logger.Error(err))
	}
}
