package routing

import (
	"strings"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

const loginPath = "/login"

// entryPointPaths are placeholders that always resolve to a role-specific
// landing page rather than rendering directly.
var entryPointPaths = map[string]struct{}{
	"/":          {},
	"/dashboard": {},
}

// authRoutePaths are reachable only without a session; an authenticated
// visitor is bounced to their landing page.
var authRoutePaths = map[string]struct{}{
	"/login":    {},
	"/register": {},
}

// Service answers route policy questions over a validated Table. It is
// pure and side-effect free: no I/O, no mutable state, never an error —
// an unmatched path is a deny, not an exception.
type Service struct {
	table Table
}

// NewService builds a Service after validating the table.
func NewService(table Table) (*Service, error) {
	if err := table.Validate(); err != nil {
		return nil, err
	}
	return &Service{table: table}, nil
}

// FindRouteConfig resolves a path against the policy table.
// Exact string equality against any entry wins immediately, regardless of
// that entry's Exact flag. Otherwise, among non-exact entries whose path
// is a prefix of the candidate at a "/" boundary (so /users never matches
// /userswhatever), the longest path wins. No match returns nil.
func (s *Service) FindRouteConfig(path string) *RouteConfig {
	var best *RouteConfig
	for _, list := range [][]RouteConfig{s.table.Public, s.table.Private} {
		for i := range list {
			rc := &list[i]
			if rc.Path == path {
				out := *rc
				return &out
			}
			if rc.Exact {
				continue
			}
			if strings.HasPrefix(path, rc.Path+"/") {
				if best == nil || len(rc.Path) > len(best.Path) {
					best = rc
				}
			}
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// IsPublicRoute reports whether path matches a public entry. Unmatched
// paths are not public: deny by default.
func (s *Service) IsPublicRoute(path string) bool {
	rc := s.FindRouteConfig(path)
	return rc != nil && rc.Public
}

// IsPrivateRoute reports whether path matches a private entry. Unmatched
// paths are not private either; they are unknown, which the guard treats
// as deny.
func (s *Service) IsPrivateRoute(path string) bool {
	rc := s.FindRouteConfig(path)
	return rc != nil && !rc.Public
}

// CanUserAccessRoute decides whether a session holding role may access
// path. Public routes admit everyone; unknown paths admit no one; a
// private route with no role restriction admits any authenticated role.
func (s *Service) CanUserAccessRoute(path string, role domain.Role) bool {
	if s.IsPublicRoute(path) {
		return true
	}
	rc := s.FindRouteConfig(path)
	if rc == nil {
		return false
	}
	return rc.AllowsRole(role)
}

// UnauthenticatedRedirect returns where to send a visitor with no session
// who asked for path: the matched route's DefaultRedirect when set,
// otherwise the login page.
func (s *Service) UnauthenticatedRedirect(path string) string {
	if rc := s.FindRouteConfig(path); rc != nil && rc.DefaultRedirect != "" {
		return rc.DefaultRedirect
	}
	return loginPath
}

// RoleDefaultRoute returns the landing page for a role. A role missing
// from the map is a configuration defect; the service degrades to the
// login page rather than failing.
func (s *Service) RoleDefaultRoute(role domain.Role) string {
	if target, ok := s.table.RoleDefaultRoutes[role]; ok {
		return target
	}
	return loginPath
}

// NeedsRoleBasedRedirect reports whether path is an entry-point
// placeholder ("/" or "/dashboard") that must resolve to a role landing
// page instead of rendering.
func (s *Service) NeedsRoleBasedRedirect(path string) bool {
	_, ok := entryPointPaths[path]
	return ok
}

// IsAuthRoute reports whether path belongs to the unauthenticated-only
// set (login, register).
func (s *Service) IsAuthRoute(path string) bool {
	_, ok := authRoutePaths[path]
	return ok
}
