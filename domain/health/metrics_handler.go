package health

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/zerovacancy/zerovacancy/domain/email"
	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/apperror"
)

// JobStats reports email queue depth.
type JobStats interface {
	Stats(ctx context.Context) (*email.QueueStats, error)
}

// MetricsHandler serves Prometheus metrics and job queue counts.
type MetricsHandler struct {
	jobs JobStats
}

// NewMetricsHandler creates a new metrics handler. Queue counts are only
// available when the database is configured.
func NewMetricsHandler(jobs *email.JobsService, cfg *config.Config) *MetricsHandler {
	if !cfg.Database.IsConfigured() || jobs == nil {
		return &MetricsHandler{}
	}
	return &MetricsHandler{jobs: jobs}
}

// JobQueueMetrics is the body of GET /api/metrics/jobs.
type JobQueueMetrics struct {
	Queue      string `json:"queue"`
	Pending    int64  `json:"pending"`
	Processing int64  `json:"processing"`
	Sent       int64  `json:"sent"`
	DeadLetter int64  `json:"dead_letter"`
	Total      int64  `json:"total"`
	Timestamp  string `json:"timestamp"`
}

// JobMetrics returns email queue counts.
// GET /api/metrics/jobs
func (h *MetricsHandler) JobMetrics(c echo.Context) error {
	if h.jobs == nil {
		return apperror.ErrNotConfigured.WithMessage("database is not configured")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), checkTimeout)
	defer cancel()

	s, err := h.jobs.Stats(ctx)
	if err != nil {
		return apperror.ErrDatabase.WithInternal(err)
	}

	return c.JSON(http.StatusOK, JobQueueMetrics{
		Queue:      "email",
		Pending:    s.Pending,
		Processing: s.Processing,
		Sent:       s.Sent,
		DeadLetter: s.DeadLetter,
		Total:      s.Pending + s.Processing + s.Sent + s.DeadLetter,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	})
}

// Prometheus exposes the default registry.
// GET /metrics
var Prometheus = echo.WrapHandler(promhttp.Handler())
