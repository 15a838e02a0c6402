package domain

// Role is the closed set of actor roles in the brokerage platform.
// There is no hierarchy: membership in a route's allowed set is the
// only access test.
type Role string

const (
	RoleSuperAdmin Role = "SUPER_ADMIN"
	RoleAdmin      Role = "ADMIN"
	RoleAgent      Role = "AGENT"
	RoleClient     Role = "CLIENT"
	RoleReviewer   Role = "REVIEWER"
	RoleUser       Role = "USER"
)

// AllRoles lists every valid Role. Kept in sync with the constants above;
// table validation iterates it to verify allowed-role sets and the
// role default-route map.
var AllRoles = []Role{
	RoleSuperAdmin,
	RoleAdmin,
	RoleAgent,
	RoleClient,
	RoleReviewer,
	RoleUser,
}

// Valid reports whether r is a member of the closed role set.
func (r Role) Valid() bool {
	for _, known := range AllRoles {
		if r == known {
			return true
		}
	}
	return false
}
