package waitlist

import (
	"go.uber.org/fx"

	"github.com/zerovacancy/zerovacancy/domain/email"
	"github.com/zerovacancy/zerovacancy/internal/config"
)

var Module = fx.Module("waitlist",
	fx.Provide(
		NewStore,
		func(jobs *email.JobsService) Mailer { return jobs },
		func(cfg *config.Config) *IPRateLimiter {
			return NewIPRateLimiter(cfg.Waitlist.RequestsPerMinute, cfg.Waitlist.Burst)
		},
		NewService,
		NewHandler,
	),
	fx.Invoke(RegisterRoutes),
)
