package waitlist

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/zerovacancy/zerovacancy/internal/config"
	"github.com/zerovacancy/zerovacancy/pkg/apperror"
)

// Handler serves the waitlist API.
type Handler struct {
	svc          *Service
	maxBodyBytes int64
}

// NewHandler creates a new waitlist handler
func NewHandler(svc *Service, cfg *config.Config) *Handler {
	return &Handler{svc: svc, maxBodyBytes: cfg.Waitlist.MaxBodyBytes}
}

// Join adds an email to the waitlist.
// POST /api/waitlist
//
// 201 {"status":"subscribed","id":...} for a new address,
// 200 {"status":"already_subscribed"} for a known one.
func (h *Handler) Join(c echo.Context) error {
	req, err := h.decode(c)
	if err != nil {
		return err
	}

	res, err := h.svc.Join(c.Request().Context(), req)
	if err != nil {
		return err
	}

	status := http.StatusOK
	if res.Created() {
		status = http.StatusCreated
	}
	return c.JSON(status, res)
}

// Count returns the number of signups.
// GET /api/waitlist/count
func (h *Handler) Count(c echo.Context) error {
	n, err := h.svc.Count(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]int{"count": n})
}

func (h *Handler) decode(c echo.Context) (JoinRequest, error) {
	var req JoinRequest

	r := c.Request()
	if r.Body == nil || r.ContentLength == 0 {
		return req, apperror.NewBadRequest("request body is required")
	}
	if h.maxBodyBytes > 0 {
		r.Body = http.MaxBytesReader(c.Response(), r.Body, h.maxBodyBytes)
	}

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.As(err, &tooLarge):
			return req, echo.NewHTTPError(http.StatusRequestEntityTooLarge, "request body is too large")
		case errors.Is(err, io.EOF):
			return req, apperror.NewBadRequest("request body is required")
		case errors.As(err, &typeErr):
			return req, apperror.NewBadRequest("field " + typeErr.Field + " has the wrong type")
		default:
			return req, apperror.NewBadRequest("request body must be a JSON object")
		}
	}
	return req, nil
}
