package site

import (
	"net/http"
	"strings"
	"time"

	"github.com/zerovacancy/zerovacancy/internal/config"
)

// VisitTracker remembers whether a browser has seen the landing page before.
type VisitTracker interface {
	HasVisited(r *http.Request) bool
	MarkVisited(w http.ResponseWriter)
}

// CookieVisitTracker keeps the first-visit flag in a cookie.
type CookieVisitTracker struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// NewVisitTracker builds a cookie tracker from site settings. The cookie is
// marked Secure when the site is served over https.
func NewVisitTracker(cfg *config.Config) VisitTracker {
	name := cfg.Site.VisitCookie
	if name == "" {
		name = "zv_visited"
	}
	ttl := cfg.Site.VisitCookieTTL
	if ttl <= 0 {
		ttl = 365 * 24 * time.Hour
	}
	return &CookieVisitTracker{
		Name:   name,
		TTL:    ttl,
		Secure: strings.HasPrefix(cfg.Site.BaseURL, "https://"),
	}
}

func (t *CookieVisitTracker) HasVisited(r *http.Request) bool {
	c, err := r.Cookie(t.Name)
	return err == nil && c.Value == "1"
}

func (t *CookieVisitTracker) MarkVisited(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     t.Name,
		Value:    "1",
		Path:     "/",
		MaxAge:   int(t.TTL / time.Second),
		HttpOnly: true,
		Secure:   t.Secure,
		SameSite: http.SameSiteLaxMode,
	})
}
