package waitlist

import "github.com/labstack/echo/v4"

// RegisterRoutes registers waitlist routes
func RegisterRoutes(e *echo.Echo, h *Handler, limiter *IPRateLimiter) {
	g := e.Group("/api/waitlist")
	g.POST("", h.Join, limiter.Middleware())
	g.GET("/count", h.Count)
}
