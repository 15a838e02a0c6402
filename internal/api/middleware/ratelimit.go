package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"golang.org/x/time/rate"
)

// AuthRateLimit throttles login/register attempts. The gateway serves a
// single operator, so one shared limiter is enough; bursts cover a
// mistyped password without opening the door to credential stuffing
// against the backend.
func AuthRateLimit(r rate.Limit, burst int) echo.MiddlewareFunc {
	limiter := rate.NewLimiter(r, burst)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !limiter.Allow() {
				return echo.NewHTTPError(http.StatusTooManyRequests, "too many attempts")
			}
			return next(c)
		}
	}
}
