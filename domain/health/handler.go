package health

import (
	"context"
	"net/http"
	"runtime"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"

	"github.com/zerovacancy/zerovacancy/internal/config"
)

const (
	StatusHealthy       = "healthy"
	StatusUnhealthy     = "unhealthy"
	StatusDegraded      = "degraded"
	StatusNotConfigured = "not_configured"

	checkTimeout = 5 * time.Second
)

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler handles health check requests
type Handler struct {
	db      Pinger
	pool    *pgxpool.Pool
	cfg     *config.Config
	startAt time.Time
}

// NewHandler creates a new health handler. A nil pool means the database is
// not configured; the site still serves pages in that state.
func NewHandler(pool *pgxpool.Pool, cfg *config.Config) *Handler {
	h := NewHandlerWithPinger(nil, cfg)
	if pool != nil {
		h.db = pool
		h.pool = pool
	}
	return h
}

// NewHandlerWithPinger builds a Handler over any Pinger.
func NewHandlerWithPinger(db Pinger, cfg *config.Config) *Handler {
	return &Handler{db: db, cfg: cfg, startAt: time.Now()}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Timestamp string           `json:"timestamp"`
	Uptime    string           `json:"uptime"`
	Version   string           `json:"version"`
	Checks    map[string]Check `json:"checks"`
}

// Check represents an individual health check result
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

func (h *Handler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{Status: StatusNotConfigured, Message: "POSTGRES_HOST is not set"}
	}
	ctx, cancel := context.WithTimeout(ctx, checkTimeout)
	defer cancel()
	if err := h.db.Ping(ctx); err != nil {
		return Check{Status: StatusUnhealthy, Message: err.Error()}
	}
	return Check{Status: StatusHealthy}
}

// Health returns the overall service health.
// GET /health
func (h *Handler) Health(c echo.Context) error {
	db := h.checkDatabase(c.Request().Context())

	status, code := StatusHealthy, http.StatusOK
	switch db.Status {
	case StatusUnhealthy:
		status, code = StatusUnhealthy, http.StatusServiceUnavailable
	case StatusNotConfigured:
		status = StatusDegraded
	}

	return c.JSON(code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Uptime:    time.Since(h.startAt).Round(time.Second).String(),
		Version:   Version,
		Checks:    map[string]Check{"database": db},
	})
}

// Healthz is the liveness probe.
// GET /healthz
func (h *Handler) Healthz(c echo.Context) error {
	return c.String(http.StatusOK, "OK")
}

// Ready is the readiness probe. An unconfigured database still reports ready
// since pages and suggestions work without it.
// GET /ready
func (h *Handler) Ready(c echo.Context) error {
	db := h.checkDatabase(c.Request().Context())
	switch db.Status {
	case StatusUnhealthy:
		return c.JSON(http.StatusServiceUnavailable, map[string]any{
			"status":  "not_ready",
			"message": "Database connection failed",
		})
	case StatusNotConfigured:
		return c.JSON(http.StatusOK, map[string]any{
			"status":   "ready",
			"database": StatusNotConfigured,
		})
	}
	return c.JSON(http.StatusOK, map[string]any{"status": "ready"})
}

// Version returns build information.
// GET /api/version
func (h *Handler) Version(c echo.Context) error {
	return c.JSON(http.StatusOK, Info())
}

// Debug returns runtime information outside production.
// GET /debug
func (h *Handler) Debug(c echo.Context) error {
	if h.cfg.Environment == "production" {
		return echo.NewHTTPError(http.StatusNotFound, "Not found")
	}

	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	out := map[string]any{
		"environment": h.cfg.Environment,
		"debug":       h.cfg.Debug,
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"build":       Info(),
		"memory": map[string]any{
			"alloc_mb":       mem.Alloc / 1024 / 1024,
			"total_alloc_mb": mem.TotalAlloc / 1024 / 1024,
			"sys_mb":         mem.Sys / 1024 / 1024,
			"num_gc":         mem.NumGC,
		},
	}
	if h.pool != nil {
		stat := h.pool.Stat()
		out["database"] = map[string]any{
			"host":        h.cfg.Database.Host,
			"database":    h.cfg.Database.Database,
			"pool_total":  stat.TotalConns(),
			"pool_idle":   stat.IdleConns(),
			"pool_in_use": stat.AcquiredConns(),
		}
	}
	return c.JSON(http.StatusOK, out)
}
