package site

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/labstack/echo/v4"
)

//go:embed static
var staticFS embed.FS

// NewRouter builds the page router.
func NewRouter(p *Pages) (chi.Router, error) {
	staticSub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, fmt.Errorf("static assets: %w", err)
	}

	r := chi.NewRouter()
	r.Use(middleware.Compress(5, "text/html", "text/css", "text/javascript", "application/javascript"))

	r.Group(func(r chi.Router) {
		r.Use(middleware.SetHeader("Cache-Control", "public, max-age=3600"))
		r.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.NoCache)
		r.Get("/", p.Home)
		r.Post("/waitlist", p.JoinWaitlist)
		r.Get("/account", p.Account)
		r.Get("/auth", p.Auth)
		r.Get("/connect/onboarding", p.ConnectOnboarding)
	})

	return r, nil
}

// RegisterRoutes mounts the page router on echo alongside the JSON API.
func RegisterRoutes(e *echo.Echo, r chi.Router) {
	h := echo.WrapHandler(r)
	e.GET("/", h)
	e.POST("/waitlist", h)
	e.GET("/account", h)
	e.GET("/auth", h)
	e.GET("/connect/onboarding", h)
	e.GET("/static/*", h)
}
