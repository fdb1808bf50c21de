package locations

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/zerovacancy/zerovacancy/pkg/apperror"
)

// Handler serves the location API.
type Handler struct {
	svc *Service
}

// NewHandler creates a new locations handler
func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// Suggest returns grouped city and zip suggestions.
// GET /api/locations/suggest?q=
func (h *Handler) Suggest(c echo.Context) error {
	return c.JSON(http.StatusOK, h.svc.Suggest(c.Request().Context(), c.QueryParam("q")))
}

// Nearby returns the dataset entries closest to a point given either as
// lat/lng or as a geohash.
// GET /api/locations/nearby?lat=&lng=&limit=
// GET /api/locations/nearby?geohash=&limit=
func (h *Handler) Nearby(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return apperror.NewBadRequest("limit must be a positive integer")
		}
		limit = n
	}

	var (
		res []NearbyLocation
		err error
	)
	if hash := c.QueryParam("geohash"); hash != "" {
		res, err = h.svc.NearbyGeohash(c.Request().Context(), hash, limit)
	} else {
		lat, latErr := strconv.ParseFloat(c.QueryParam("lat"), 64)
		lng, lngErr := strconv.ParseFloat(c.QueryParam("lng"), 64)
		if latErr != nil || lngErr != nil {
			return apperror.NewBadRequest("lat and lng are required numbers")
		}
		res, err = h.svc.Nearby(c.Request().Context(), lat, lng, limit)
	}

	switch {
	case errors.Is(err, ErrInvalidCoordinates):
		return apperror.NewBadRequest("lat must be within [-90, 90] and lng within [-180, 180]")
	case errors.Is(err, ErrInvalidGeohash):
		return apperror.NewBadRequest("geohash is not valid")
	case err != nil:
		return apperror.NewInternal("nearby lookup failed", err)
	}

	return c.JSON(http.StatusOK, NearbyResponse{Locations: res})
}
