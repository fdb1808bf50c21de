package site

import (
	"go.uber.org/fx"

	"github.com/zerovacancy/zerovacancy/domain/locations"
	"github.com/zerovacancy/zerovacancy/domain/pricing"
	"github.com/zerovacancy/zerovacancy/domain/waitlist"
)

// DepsParams collects the domain services the pages use.
type DepsParams struct {
	fx.In

	Locations *locations.Service
	Pricing   *pricing.Service
	Waitlist  *waitlist.Service
	Visits    VisitTracker
}

func newDeps(p DepsParams) Deps {
	return Deps{
		Suggest:  p.Locations,
		Pricing:  p.Pricing,
		Waitlist: p.Waitlist,
		Visits:   p.Visits,
	}
}

var Module = fx.Module("site",
	fx.Provide(
		NewVisitTracker,
		newDeps,
		NewPages,
		NewRouter,
	),
	fx.Invoke(RegisterRoutes),
)
