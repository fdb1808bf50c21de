package site

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zerovacancy/zerovacancy/domain/locations"
	"github.com/zerovacancy/zerovacancy/domain/pricing"
	"github.com/zerovacancy/zerovacancy/domain/waitlist"
	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/apperror"
)

type fakeJoiner struct {
	seen  map[string]bool
	calls []waitlist.JoinRequest
	err   error
}

func (f *fakeJoiner) Join(_ context.Context, req waitlist.JoinRequest) (*waitlist.JoinResult, error) {
	f.calls = append(f.calls, req)
	if f.err != nil {
		return nil, f.err
	}
	addr, err := waitlist.ValidateEmail(req.Email)
	if err != nil {
		return nil, err
	}
	if f.seen[addr] {
		return &waitlist.JoinResult{Status: waitlist.StatusAlreadySubscribed}, nil
	}
	f.seen[addr] = true
	return &waitlist.JoinResult{Status: waitlist.StatusSubscribed, ID: "id-1"}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() *config.Config {
	return &config.Config{
		Site: config.SiteConfig{
			Name:           "ZeroVacancy",
			BaseURL:        "http://localhost:4002",
			VisitCookie:    "zv_visited",
			VisitCookieTTL: time.Hour,
		},
		Locations: config.LocationsConfig{DebounceDelay: 300 * time.Millisecond},
	}
}

func newTestRouter(t *testing.T, cfg *config.Config, joiner *fakeJoiner) http.Handler {
	t.Helper()
	log := testLogger()

	locs, err := locations.LoadDefault()
	require.NoError(t, err)
	prices, err := pricing.NewService(log)
	require.NoError(t, err)
	if joiner == nil {
		joiner = &fakeJoiner{seen: map[string]bool{}}
	}

	pages := NewPages(cfg, Deps{
		Suggest:  locations.NewServiceWithIndex(locations.NewIndex(locs), 5, log),
		Pricing:  prices,
		Waitlist: joiner,
		Visits:   NewVisitTracker(cfg),
	}, log)

	r, err := NewRouter(pages)
	require.NoError(t, err)
	return r
}

func do(h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func postForm(h http.Handler, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(h, req)
}

func TestHome(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	for _, want := range []string{
		`id="hero"`,
		`id="how-it-works"`,
		`id="search"`,
		`id="features"`,
		`id="pricing"`,
		`id="waitlist"`,
		`data-debounce-ms="300"`,
		`data-min-length="2"`,
		"$49",
	} {
		assert.Contains(t, body, want)
	}
}

func TestHome_FirstVisit(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Contains(t, rec.Body.String(), "welcome-banner")

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "zv_visited", cookies[0].Name)
	assert.Equal(t, "1", cookies[0].Value)
	assert.Equal(t, 3600, cookies[0].MaxAge)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])
	rec = do(h, req)
	assert.NotContains(t, rec.Body.String(), "welcome-banner")
	assert.Empty(t, rec.Result().Cookies())
}

func TestHome_ServerRenderedSuggestions(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/?q=Austin", nil))
	body := rec.Body.String()
	assert.Contains(t, body, `data-value="Austin, TX"`)
	assert.Contains(t, body, `aria-expanded="true"`)
	assert.Equal(t, 1, strings.Count(body, `role="option"`))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/?q=A", nil))
	body = rec.Body.String()
	assert.Contains(t, body, `aria-expanded="false"`)
	assert.NotContains(t, body, `role="option"`)
}

func TestHome_PricingCycle(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/?cycle=annual", nil))
	body := rec.Body.String()
	assert.Contains(t, body, "$39.20")
	assert.Contains(t, body, "$470.40 billed yearly, save $117.60")

	rec = do(h, httptest.NewRequest(http.MethodGet, "/?cycle=weekly", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Billed monthly")
}

func TestHome_CheckoutLinks(t *testing.T) {
	cfg := testConfig()
	cfg.Site.CheckoutURL = "https://pay.example.com/checkout"
	h := newTestRouter(t, cfg, nil)

	body := do(h, httptest.NewRequest(http.MethodGet, "/", nil)).Body.String()
	assert.Contains(t, body, `href="https://pay.example.com/checkout?plan=premium&amp;cycle=monthly"`)
	assert.Contains(t, body, `href="/auth?plan=basic&amp;cycle=monthly"`)
}

func TestJoinWaitlist_Form(t *testing.T) {
	joiner := &fakeJoiner{seen: map[string]bool{}}
	h := newTestRouter(t, testConfig(), joiner)

	form := url.Values{"email": {"Jane@Example.com"}, "source": {"landing_page"}, "marketingConsent": {"true"}}
	rec := postForm(h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "on the list! Check your inbox")

	rec = postForm(h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "already on the list")

	require.Len(t, joiner.calls, 2)
	assert.True(t, joiner.calls[0].MarketingConsent)
	assert.Equal(t, "landing_page", joiner.calls[0].Source)
	assert.Equal(t, "form", joiner.calls[0].Metadata["channel"])
}

func TestJoinWaitlist_InvalidEmail(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := postForm(h, url.Values{"email": {"not-an-email"}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "email must contain a single @")
	assert.Contains(t, body, `value="not-an-email"`)
}

func TestJoinWaitlist_ServerError(t *testing.T) {
	h := newTestRouter(t, testConfig(), &fakeJoiner{err: apperror.ErrNotConfigured})

	rec := postForm(h, url.Values{"email": {"jane@example.com"}})
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Something went wrong")
	assert.NotContains(t, rec.Body.String(), "Server configuration error")
}

func TestHandoffPages(t *testing.T) {
	cfg := testConfig()
	cfg.Site.AccountURL = "https://billing.example.com/portal"
	cfg.Site.AuthURL = "https://auth.example.com/sign-in"
	h := newTestRouter(t, cfg, nil)

	body := do(h, httptest.NewRequest(http.MethodGet, "/account", nil)).Body.String()
	assert.Contains(t, body, `href="https://billing.example.com/portal"`)

	body = do(h, httptest.NewRequest(http.MethodGet, "/auth?plan=professional&cycle=annual", nil)).Body.String()
	assert.Contains(t, body, `href="https://auth.example.com/sign-in?cycle=annual&amp;plan=professional"`)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/connect/onboarding", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "not available yet")
}

func TestStaticAssets(t *testing.T) {
	h := newTestRouter(t, testConfig(), nil)

	rec := do(h, httptest.NewRequest(http.MethodGet, "/static/styles.css", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/css")
	assert.Equal(t, "public, max-age=3600", rec.Header().Get("Cache-Control"))

	rec = do(h, httptest.NewRequest(http.MethodGet, "/static/js/location-input.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "createDebouncer")

	rec = do(h, httptest.NewRequest(http.MethodGet, "/static/js/waitlist.js", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "isValidEmail")
}

func TestRegisterRoutes_MountsOnEcho(t *testing.T) {
	cfg := testConfig()
	log := testLogger()
	prices, err := pricing.NewService(log)
	require.NoError(t, err)
	locs, err := locations.LoadDefault()
	require.NoError(t, err)

	r, err := NewRouter(NewPages(cfg, Deps{
		Suggest:  locations.NewServiceWithIndex(locations.NewIndex(locs), 5, log),
		Pricing:  prices,
		Waitlist: &fakeJoiner{seen: map[string]bool{}},
		Visits:   NewVisitTracker(cfg),
	}, log))
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e, r)

	for _, path := range []string{"/", "/account", "/auth", "/connect/onboarding", "/static/styles.css"} {
		rec := do(e, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestVisitTracker(t *testing.T) {
	cfg := testConfig()
	cfg.Site.BaseURL = "https://zerovacancy.ai"
	cfg.Site.VisitCookie = ""
	cfg.Site.VisitCookieTTL = 0

	tr := NewVisitTracker(cfg).(*CookieVisitTracker)
	assert.Equal(t, "zv_visited", tr.Name)
	assert.Equal(t, 365*24*time.Hour, tr.TTL)
	assert.True(t, tr.Secure)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.False(t, tr.HasVisited(req))

	req.AddCookie(&http.Cookie{Name: "zv_visited", Value: "0"})
	assert.False(t, tr.HasVisited(req))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: "zv_visited", Value: "1"})
	assert.True(t, tr.HasVisited(req))
}
