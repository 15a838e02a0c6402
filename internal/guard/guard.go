// Package guard decides, for every navigation, whether the current
// session may see the requested path: render it, wait for hydration, or
// redirect somewhere safer. Decide is pure and synchronous; the HTTP
// middleware adapter owns all side effects.
package guard

import (
	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/routing"
)

// Action is the outcome class of a guard decision.
type Action string

const (
	ActionRender   Action = "render"
	ActionWait     Action = "wait"
	ActionRedirect Action = "redirect"
)

// Decision reasons, used for audit records and metric labels.
const (
	ReasonUnhydrated      = "unhydrated"
	ReasonEntryPoint      = "entry_point"
	ReasonAuthRouteBounce = "auth_route_bounce"
	ReasonPublic          = "public"
	ReasonUnauthenticated = "unauthenticated"
	ReasonRoleMismatch    = "role_mismatch"
	ReasonAllowed         = "allowed"
)

// Decision is the guard's verdict for one path/session pair.
type Decision struct {
	Action Action
	// Target is the redirect destination; empty unless Action is
	// ActionRedirect.
	Target string
	Reason string
}

// Guard combines the route policy service with a session snapshot. It
// holds no state of its own and is safe to call repeatedly: at most one
// redirect results from any call.
type Guard struct {
	routes *routing.Service
}

func New(routes *routing.Service) *Guard {
	return &Guard{routes: routes}
}

// Decide applies the access policy in fixed order. An unhydrated session
// always waits — never a redirect before the persisted state has been
// read. Role mismatch redirects to the login page, same as an
// unauthenticated visitor; there is no distinct forbidden page.
func (g *Guard) Decide(path string, s domain.Session) Decision {
	if !s.Hydrated {
		return Decision{Action: ActionWait, Reason: ReasonUnhydrated}
	}

	if g.routes.NeedsRoleBasedRedirect(path) {
		if s.IsAuthenticated {
			return Decision{
				Action: ActionRedirect,
				Target: g.routes.RoleDefaultRoute(s.Role()),
				Reason: ReasonEntryPoint,
			}
		}
		return Decision{Action: ActionRedirect, Target: "/login", Reason: ReasonEntryPoint}
	}

	if g.routes.IsAuthRoute(path) && s.IsAuthenticated {
		return Decision{
			Action: ActionRedirect,
			Target: g.routes.RoleDefaultRoute(s.Role()),
			Reason: ReasonAuthRouteBounce,
		}
	}

	if g.routes.IsPublicRoute(path) {
		return Decision{Action: ActionRender, Reason: ReasonPublic}
	}

	if !s.IsAuthenticated {
		return Decision{
			Action: ActionRedirect,
			Target: g.routes.UnauthenticatedRedirect(path),
			Reason: ReasonUnauthenticated,
		}
	}

	if !g.routes.CanUserAccessRoute(path, s.Role()) {
		return Decision{Action: ActionRedirect, Target: "/login", Reason: ReasonRoleMismatch}
	}

	return Decision{Action: ActionRender, Reason: ReasonAllowed}
}
