package site

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	g "maragu.dev/gomponents"

	"github.com/zerovacancy/zerovacancy/domain/locations"
	"github.com/zerovacancy/zerovacancy/domain/pricing"
	"github.com/zerovacancy/zerovacancy/domain/waitlist"
	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/apperror"
	"github.com/zerovacancy/zerovacancy/pkg/logger"
)

const maxFormBytes = 16 << 10

// Suggester is satisfied by *locations.Service.
type Suggester interface {
	Suggest(ctx context.Context, query string) locations.GroupedSuggestions
}

// Pricer is satisfied by *pricing.Service.
type Pricer interface {
	Quotes(rawCycle string) (pricing.Cycle, []pricing.Quote, error)
}

// Joiner is satisfied by *waitlist.Service.
type Joiner interface {
	Join(ctx context.Context, req waitlist.JoinRequest) (*waitlist.JoinResult, error)
}

// Deps are the services the pages read from.
type Deps struct {
	Suggest  Suggester
	Pricing  Pricer
	Waitlist Joiner
	Visits   VisitTracker
}

// Pages renders the public site.
type Pages struct {
	cfg      config.SiteConfig
	deps     Deps
	debounce time.Duration
	log      *slog.Logger
}

// NewPages creates the page handlers.
func NewPages(cfg *config.Config, deps Deps, log *slog.Logger) *Pages {
	debounce := cfg.Locations.DebounceDelay
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}
	return &Pages{
		cfg:      cfg.Site,
		deps:     deps,
		debounce: debounce,
		log:      log.With(logger.Scope("site")),
	}
}

// Home renders the landing page. ?q= pre-renders suggestions and ?cycle=
// selects the billing cycle; an unknown cycle falls back to monthly.
// GET /
func (p *Pages) Home(w http.ResponseWriter, r *http.Request) {
	p.renderHome(w, r, http.StatusOK, WaitlistFormState{})
}

func (p *Pages) renderHome(w http.ResponseWriter, r *http.Request, status int, form WaitlistFormState) {
	ctx := r.Context()

	firstVisit := !p.deps.Visits.HasVisited(r)
	if firstVisit {
		p.deps.Visits.MarkVisited(w)
	}

	query := r.URL.Query().Get("q")
	suggestions := p.deps.Suggest.Suggest(ctx, query)

	cycle, quotes, err := p.deps.Pricing.Quotes(r.URL.Query().Get("cycle"))
	if err != nil {
		cycle, quotes, err = p.deps.Pricing.Quotes(string(pricing.Monthly))
	}
	if err != nil {
		p.log.Error("pricing unavailable", logger.Error(err))
	}

	p.render(w, status, PageConfig{SiteName: p.cfg.Name},
		Hero(firstVisit),
		HowItWorks(),
		SearchPreview(SearchPreviewProps{
			Query:       query,
			Suggestions: suggestions,
			MinLength:   locations.MinQueryLength,
			DebounceMs:  p.debounce.Milliseconds(),
		}),
		Features(),
		g.If(len(quotes) > 0, PricingSection(cycle, quotes, p.cfg.CheckoutURL)),
		WaitlistForm(form),
	)
}

// JoinWaitlist handles the form post when scripts are unavailable and
// re-renders the home page with the outcome.
// POST /waitlist
func (p *Pages) JoinWaitlist(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxFormBytes)
	if err := r.ParseForm(); err != nil {
		p.renderHome(w, r, http.StatusBadRequest, WaitlistFormState{Error: "The form could not be read, please try again."})
		return
	}

	consent, _ := strconv.ParseBool(r.PostFormValue("marketingConsent"))
	form := WaitlistFormState{Email: r.PostFormValue("email"), Consent: consent}

	res, err := p.deps.Waitlist.Join(r.Context(), waitlist.JoinRequest{
		Email:            form.Email,
		Source:           r.PostFormValue("source"),
		MarketingConsent: consent,
		Metadata:         map[string]any{"channel": "form"},
	})
	if err != nil {
		status, msg := http.StatusInternalServerError, "Something went wrong, please try again later."
		if appErr, ok := apperror.As(err); ok {
			status = appErr.HTTPStatus
			if status < 500 {
				msg = appErr.Message
			}
		}
		if status >= 500 {
			p.log.Error("waitlist form failed", logger.Error(err))
		}
		form.Error = msg
		p.renderHome(w, r, status, form)
		return
	}

	form.Email = ""
	form.Notice = "You're on the list! Check your inbox for a welcome email."
	if !res.Created() {
		form.Notice = "You're already on the list. We'll be in touch soon."
	}
	p.renderHome(w, r, http.StatusOK, form)
}

// Account hands off to the hosted account portal.
// GET /account
func (p *Pages) Account(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, PageConfig{SiteName: p.cfg.Name, Title: "Account - " + p.cfg.Name},
		HandoffPage(HandoffProps{
			Heading:     "Your account",
			Description: "Manage your subscription, payment method and invoices in the billing portal.",
			ActionLabel: "Open billing portal",
			URL:         p.cfg.AccountURL,
		}))
}

// Auth hands off to the hosted sign-in flow, forwarding plan selection.
// GET /auth
func (p *Pages) Auth(w http.ResponseWriter, r *http.Request) {
	target := p.cfg.AuthURL
	if target != "" && r.URL.RawQuery != "" {
		target += "?" + r.URL.Query().Encode()
	}
	p.render(w, http.StatusOK, PageConfig{SiteName: p.cfg.Name, Title: "Sign in - " + p.cfg.Name},
		HandoffPage(HandoffProps{
			Heading:     "Sign in to " + p.cfg.Name,
			Description: "Sign in or create an account to book creators and manage your listings.",
			ActionLabel: "Continue to sign in",
			URL:         target,
		}))
}

// ConnectOnboarding hands off to the payout onboarding flow for creators.
// GET /connect/onboarding
func (p *Pages) ConnectOnboarding(w http.ResponseWriter, r *http.Request) {
	p.render(w, http.StatusOK, PageConfig{SiteName: p.cfg.Name, Title: "Creator onboarding - " + p.cfg.Name},
		HandoffPage(HandoffProps{
			Heading:     "Get paid as a creator",
			Description: "Set up payouts with our payment partner to start accepting bookings.",
			ActionLabel: "Start onboarding",
			URL:         p.cfg.ConnectURL,
		}))
}

func (p *Pages) render(w http.ResponseWriter, status int, cfg PageConfig, content ...g.Node) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := Layout(cfg, content...).Render(w); err != nil {
		p.log.Warn("page render failed", logger.Error(err))
	}
}
