package locations

import "github.com/labstack/echo/v4"

// RegisterRoutes registers location routes
func RegisterRoutes(e *echo.Echo, h *Handler) {
	g := e.Group("/api/locations")
	g.GET("/suggest", h.Suggest)
	g.GET("/nearby", h.Nearby)
}
