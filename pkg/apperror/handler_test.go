package apperror

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/tidwall/gjson"
)

func serve(t *testing.T, method string, err error) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(method, "/api/waitlist", nil)
	rec := httptest.NewRecorder()
	HTTPErrorHandler(slog.Default())(err, e.NewContext(req, rec))
	return rec
}

func TestHTTPErrorHandler_AppError(t *testing.T) {
	rec := serve(t, http.MethodPost, NewBadRequest("email is required"))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := rec.Body.String()
	assert.Equal(t, "bad_request", gjson.Get(body, "error.code").String())
	assert.Equal(t, "email is required", gjson.Get(body, "error.message").String())
}

func TestHTTPErrorHandler_WrappedAppError(t *testing.T) {
	err := fmt.Errorf("join waitlist: %w", ErrNotConfigured)
	rec := serve(t, http.MethodPost, err)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "server_misconfigured", gjson.Get(rec.Body.String(), "error.code").String())
}

func TestHTTPErrorHandler_Details(t *testing.T) {
	err := ErrValidation.WithDetails(map[string]any{"field": "email"})
	rec := serve(t, http.MethodPost, err)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "email", gjson.Get(rec.Body.String(), "error.details.field").String())
}

func TestHTTPErrorHandler_EchoError(t *testing.T) {
	tests := []struct {
		status   int
		wantCode string
	}{
		{http.StatusNotFound, "not_found"},
		{http.StatusMethodNotAllowed, "method_not_allowed"},
		{http.StatusTooManyRequests, "rate_limited"},
		{http.StatusTeapot, "error"},
		{http.StatusBadGateway, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			rec := serve(t, http.MethodGet, echo.NewHTTPError(tt.status, "nope"))
			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.wantCode, gjson.Get(rec.Body.String(), "error.code").String())
			assert.Equal(t, "nope", gjson.Get(rec.Body.String(), "error.message").String())
		})
	}
}

func TestHTTPErrorHandler_UnknownErrorIsOpaque(t *testing.T) {
	rec := serve(t, http.MethodGet, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "An internal error occurred", gjson.Get(rec.Body.String(), "error.message").String())
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	rec := serve(t, http.MethodHead, ErrNotFound)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestErrorCopiesDoNotMutateSentinels(t *testing.T) {
	_ = ErrBadRequest.WithMessage("changed").WithInternal(errors.New("cause"))

	assert.Equal(t, "Invalid request", ErrBadRequest.Message)
	assert.Nil(t, ErrBadRequest.Internal)
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "not_found: Resource not found", ErrNotFound.Error())
	assert.Equal(t, "internal_error: boom (db down)", NewInternal("boom", errors.New("db down")).Error())
	assert.Equal(t, "not_found: plan 'gold' not found", NewNotFound("plan", "gold").Error())
}
