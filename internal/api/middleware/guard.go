package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/brokerhub/admin-gateway/internal/api/metrics"
	"github.com/brokerhub/admin-gateway/internal/audit"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
	"github.com/brokerhub/admin-gateway/internal/guard"
	"github.com/brokerhub/admin-gateway/internal/session"
)

// Auditor receives access events worth recording. Satisfied by
// *audit.Dispatcher.
type Auditor interface {
	Record(event ports.AccessEvent)
}

// Guard applies the route guard to every request on the group it is
// mounted on: render continues down the chain, a redirect answers 302,
// and an unhydrated session answers 503 until InitializeAuth has run.
// Redirects are audited; waits and plain renders are not.
func Guard(g *guard.Guard, store *session.Store, auditor Auditor) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			path := c.Request().URL.Path
			snap := store.Snapshot()
			decision := g.Decide(path, snap)

			metrics.GuardDecisionsTotal.WithLabelValues(string(decision.Action), decision.Reason).Inc()

			switch decision.Action {
			case guard.ActionWait:
				c.Response().Header().Set("Retry-After", "1")
				return c.JSON(http.StatusServiceUnavailable, map[string]string{
					"error": "session not hydrated",
				})
			case guard.ActionRedirect:
				if auditor != nil {
					auditor.Record(audit.NewEvent(path, string(decision.Action), decision.Target, decision.Reason, snap))
				}
				return c.Redirect(http.StatusFound, decision.Target)
			default:
				return next(c)
			}
		}
	}
}
