package pricing

import "github.com/labstack/echo/v4"

// RegisterRoutes registers pricing routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/pricing")
	g.GET("", h.List)
	g.GET("/:plan", h.Get)
}
