package ports

import (
	"context"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

// Credentials carries a login attempt.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration carries a new-account request.
type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is what the auth backend returns on success: an opaque
// bearer token and the authenticated user. The gateway never inspects
// the token.
type AuthResult struct {
	Token string       `json:"token"`
	User  *domain.User `json:"user"`
}

// AuthBackend is the external authentication collaborator reached over
// HTTP. Implementations normalize every failure before returning it.
type AuthBackend interface {
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)
	Register(ctx context.Context, reg Registration) (*AuthResult, error)
	Logout(ctx context.Context) error
}
