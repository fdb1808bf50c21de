package pricing

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zerovacancy/zerovacancy/pkg/apperror"
)

// QuotesResponse is the body of GET /api/pricing.
type QuotesResponse struct {
	Cycle Cycle   `json:"cycle"`
	Plans []Quote `json:"plans"`
}

// Handler serves the pricing API.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

// List prices every plan.
// GET /api/pricing?cycle=monthly|annual
func (h *Handler) List(c echo.Context) error {
	cycle, quotes, err := h.svc.Quotes(c.QueryParam("cycle"))
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, QuotesResponse{Cycle: cycle, Plans: quotes})
}

// Get prices one plan.
// GET /api/pricing/:plan?cycle=monthly|annual
func (h *Handler) Get(c echo.Context) error {
	planID := c.Param("plan")
	q, err := h.svc.Quote(planID, c.QueryParam("cycle"))
	if errors.Is(err, ErrUnknownPlan) {
		return apperror.NewNotFound("plan", planID)
	}
	if err != nil {
		return toAppError(err)
	}
	return c.JSON(http.StatusOK, q)
}

func toAppError(err error) error {
	if errors.Is(err, ErrUnknownCycle) {
		return apperror.NewBadRequest("cycle must be monthly or annual")
	}
	return apperror.NewInternal("pricing failed", err)
}
