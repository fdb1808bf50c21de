// Command server runs the ZeroVacancy landing site, its JSON API, the email
// worker and the maintenance scheduler in one process.
package main

import (
	"log/slog"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/zerovacancy/zerovacancy/domain/email"
	"github.com/zerovacancy/zerovacancy/domain/health"
	"github.com/zerovacancy/zerovacancy/domain/locations"
	"github.com/zerovacancy/zerovacancy/domain/pricing"
	"github.com/zerovacancy/zerovacancy/domain/scheduler"
	"github.com/zerovacancy/zerovacancy/domain/site"
	"github.com/zerovacancy/zerovacancy/domain/tracing"
	"github.com/zerovacancy/zerovacancy/domain/waitlist"
	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/internal/database"
	"github.com/zerovacancy/zerovacancy/internal/server"
	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

func main() {
	// .env fills unset variables; .env.local overrides everything
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	fx.New(
		fx.WithLogger(func(log *slog.Logger) fxevent.Logger {
			return &fxevent.SlogLogger{Logger: log}
		}),
		app(),
	).Run()
}

// app is every module the server runs, in start order.
func app() fx.Option {
	return fx.Options(
		// Infrastructure modules
		logger.Module,
		config.Module,
		database.Module,
		server.Module,
		tracing.Module,

		// Domain modules
		health.Module,
		locations.Module,
		pricing.Module,
		email.Module,
		waitlist.Module,
		scheduler.Module,

		// Server-rendered pages
		site.Module,
	)
}
