package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/transport"
)

const loginPath = "/login"

// errorResponse is the canonical error envelope for all API errors.
// Fields is populated only for validation failures so forms can render
// per-field messages.
type errorResponse struct {
	Error  string              `json:"error"`
	Fields map[string][]string `json:"errors,omitempty"`
}

// NewHTTPErrorHandler returns an echo.HTTPErrorHandler that:
//   - Sends an expired session back to the login page: a normalized
//     AuthenticationRequired error becomes a 302 to /login, suppressed
//     when the request is already there.
//   - Maps the rest of the error taxonomy to deterministic HTTP codes.
//   - Logs unexpected errors internally without leaking details.
func NewHTTPErrorHandler(log zerolog.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		if errors.Is(err, domain.ErrAuthenticationRequired) {
			// Navigation requests bounce to the login page; calls to the
			// auth endpoints themselves (and anything already on /login)
			// get the plain 401 so a failed attempt renders in place.
			p := c.Request().URL.Path
			if p != loginPath && !strings.HasPrefix(p, "/auth/") {
				_ = c.Redirect(http.StatusFound, loginPath)
				return
			}
			_ = c.JSON(http.StatusUnauthorized, errorResponse{Error: "Authentication required"})
			return
		}

		code, msg := resolveError(err, log, c)
		_ = c.JSON(code, errorResponse{Error: msg, Fields: transport.FieldErrors(err)})
	}
}

func resolveError(err error, log zerolog.Logger, c echo.Context) (int, string) {
	// Echo's own errors (bind failures, 404 from router, etc.)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code, fmt.Sprintf("%v", he.Message)
	}

	// Taxonomy errors → deterministic HTTP codes.
	switch {
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden, "Insufficient permissions"
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound, "Resource not found"
	case errors.Is(err, domain.ErrValidation):
		return http.StatusUnprocessableEntity, "Validation failed"
	}

	// A normalized upstream error with no taxonomy mapping keeps its
	// message and status.
	var ae *transport.APIError
	if errors.As(err, &ae) {
		code := ae.Status
		if code == 0 {
			code = http.StatusBadGateway
		}
		return code, ae.Message
	}

	// Unexpected error: log the real cause, return a generic message.
	log.Error().
		Err(err).
		Str("method", c.Request().Method).
		Str("path", c.Path()).
		Msg("unhandled error")

	return http.StatusInternalServerError, "An unexpected error occurred"
}
