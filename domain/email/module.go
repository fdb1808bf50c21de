package email

import (
	"context"
	"log/slog"

	"go.uber.org/fx"

	"github.com/zerovacancy/zerovacancy/internal/config"
)

// Module provides the email queue, renderer, sender and worker.
var Module = fx.Module("email",
	fx.Provide(
		NewConfig,
		NewJobsService,
		func(s *JobsService) Queue { return s },
		NewTemplates,
		NewSender,
		NewWorker,
	),
	fx.Invoke(RegisterWorkerLifecycle),
)

// RegisterWorkerLifecycle runs the worker for the lifetime of the app. The
// worker needs the jobs table, so it stays off without a database.
func RegisterWorkerLifecycle(lc fx.Lifecycle, worker *Worker, cfg *Config, appCfg *config.Config, log *slog.Logger) {
	if !cfg.Enabled {
		return
	}
	if !appCfg.Database.IsConfigured() {
		log.Warn("email enabled but database not configured, worker not started")
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error { return worker.Start(ctx) },
		OnStop:  func(ctx context.Context) error { return worker.Stop(ctx) },
	})
}
