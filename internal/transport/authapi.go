package transport

import (
	"context"

	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

// AuthAPI implements ports.AuthBackend against the brokerage auth
// endpoints. Responses are expected as {"token": "...", "user": {...}}.
type AuthAPI struct {
	client *Client
}

// NewAuthAPI wraps an existing transport client.
func NewAuthAPI(client *Client) *AuthAPI {
	return &AuthAPI{client: client}
}

// Login exchanges credentials for an opaque bearer token.
func (a *AuthAPI) Login(ctx context.Context, creds ports.Credentials) (*ports.AuthResult, error) {
	resp, err := a.client.Post(ctx, "/auth/login", creds)
	if err != nil {
		return nil, err
	}

	var result ports.AuthResult
	if err := resp.Decode(&result); err != nil {
		return nil, NormalizeFailure(err)
	}

	// Pin the fresh token immediately so calls issued before the
	// persisted envelope lands still carry it.
	a.client.SetAuthToken(result.Token)
	return &result, nil
}

// Register creates an account; same response contract as Login.
func (a *AuthAPI) Register(ctx context.Context, reg ports.Registration) (*ports.AuthResult, error) {
	resp, err := a.client.Post(ctx, "/auth/register", reg)
	if err != nil {
		return nil, err
	}

	var result ports.AuthResult
	if err := resp.Decode(&result); err != nil {
		return nil, NormalizeFailure(err)
	}

	a.client.SetAuthToken(result.Token)
	return &result, nil
}

// Logout tells the backend to revoke the token. Best effort: the local
// session is already cleared by the caller; a backend failure only gets
// logged upstream.
func (a *AuthAPI) Logout(ctx context.Context) error {
	defer a.client.RemoveAuthToken()
	_, err := a.client.Post(ctx, "/auth/logout", nil)
	return err
}
