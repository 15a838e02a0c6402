package routing

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

// RouteConfig is one declarative route policy: a path prefix, whether a
// session is required, and — for private routes — which roles may enter.
type RouteConfig struct {
	// Path is a prefix and uniquely identifies the entry across the
	// public and private tables.
	Path string `validate:"required,startswith=/"`
	// Public routes require no session.
	Public bool
	// Exact restricts matching to string equality; without it the path
	// matches itself and all sub-paths.
	Exact bool
	// AllowedRoles, when non-empty, restricts access to member roles.
	// Empty means any authenticated role.
	AllowedRoles []domain.Role `validate:"dive,oneof=SUPER_ADMIN ADMIN AGENT CLIENT REVIEWER USER"`
	// DefaultRedirect overrides /login as the destination for an
	// unauthenticated visitor of this route.
	DefaultRedirect string `validate:"omitempty,startswith=/"`
}

// AllowsRole reports whether the entry admits the given role. An empty
// allowed set admits every authenticated role.
func (rc RouteConfig) AllowsRole(role domain.Role) bool {
	if len(rc.AllowedRoles) == 0 {
		return true
	}
	for _, r := range rc.AllowedRoles {
		if r == role {
			return true
		}
	}
	return false
}

// Table is the full route policy: the public and private route lists plus
// the per-role landing page map. It is plain data; the Service holds all
// behavior.
type Table struct {
	Public  []RouteConfig
	Private []RouteConfig
	// RoleDefaultRoutes sends an authenticated user "home". It must be
	// total over domain.AllRoles; a missing entry falls back to /login
	// at lookup time but is rejected by Validate.
	RoleDefaultRoutes map[domain.Role]string
}

// Validate checks the table invariants: per-entry field constraints,
// path uniqueness across both lists, role sets drawn from the closed
// enum, default redirects resolving to known routes, and a total role
// default map.
func (t Table) Validate() error {
	v := validator.New()

	seen := make(map[string]struct{}, len(t.Public)+len(t.Private))
	for _, rc := range t.all() {
		if err := v.Struct(rc); err != nil {
			return fmt.Errorf("%w: route %q: %v", domain.ErrInvalidRouteTable, rc.Path, err)
		}
		if _, dup := seen[rc.Path]; dup {
			return fmt.Errorf("%w: duplicate path %q", domain.ErrInvalidRouteTable, rc.Path)
		}
		seen[rc.Path] = struct{}{}
	}

	for _, rc := range t.Private {
		if rc.Public {
			return fmt.Errorf("%w: route %q listed private but flagged public", domain.ErrInvalidRouteTable, rc.Path)
		}
	}
	for _, rc := range t.Public {
		if !rc.Public {
			return fmt.Errorf("%w: route %q listed public but not flagged public", domain.ErrInvalidRouteTable, rc.Path)
		}
	}

	for _, rc := range t.all() {
		if rc.DefaultRedirect == "" {
			continue
		}
		if _, known := seen[rc.DefaultRedirect]; !known {
			return fmt.Errorf("%w: route %q redirects to unknown path %q", domain.ErrInvalidRouteTable, rc.Path, rc.DefaultRedirect)
		}
	}

	for _, role := range domain.AllRoles {
		target, ok := t.RoleDefaultRoutes[role]
		if !ok {
			return fmt.Errorf("%w: no default route for role %s", domain.ErrInvalidRouteTable, role)
		}
		if !strings.HasPrefix(target, "/") {
			return fmt.Errorf("%w: default route for role %s is not absolute: %q", domain.ErrInvalidRouteTable, role, target)
		}
	}

	return nil
}

func (t Table) all() []RouteConfig {
	out := make([]RouteConfig, 0, len(t.Public)+len(t.Private))
	out = append(out, t.Public...)
	out = append(out, t.Private...)
	return out
}

// DefaultTable is the route policy for the brokerage admin platform.
func DefaultTable() Table {
	return Table{
		Public: []RouteConfig{
			{Path: "/login", Public: true, Exact: true},
			{Path: "/register", Public: true, Exact: true},
			{Path: "/forgot-password", Public: true},
		},
		Private: []RouteConfig{
			{Path: "/admin", AllowedRoles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin}},
			{Path: "/admin/users", AllowedRoles: []domain.Role{domain.RoleSuperAdmin}},
			{Path: "/agent", AllowedRoles: []domain.Role{domain.RoleAgent}},
			{Path: "/client", AllowedRoles: []domain.Role{domain.RoleClient}},
			{Path: "/reviewer", AllowedRoles: []domain.Role{domain.RoleReviewer}},
			{Path: "/policies"},
			{Path: "/contracts"},
			{Path: "/payments", AllowedRoles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin, domain.RoleAgent}},
			{Path: "/benefits"},
			{Path: "/coverages"},
			{Path: "/users", AllowedRoles: []domain.Role{domain.RoleSuperAdmin, domain.RoleAdmin}},
			{Path: "/profile"},
			{Path: "/onboarding", DefaultRedirect: "/register"},
		},
		RoleDefaultRoutes: map[domain.Role]string{
			domain.RoleSuperAdmin: "/admin",
			domain.RoleAdmin:      "/admin",
			domain.RoleAgent:      "/agent",
			domain.RoleClient:     "/client",
			domain.RoleReviewer:   "/reviewer",
			domain.RoleUser:       "/profile",
		},
	}
}
