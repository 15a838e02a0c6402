package ports

import (
	"context"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

// SessionStorage persists the session envelope across restarts. A single
// key holds the serialized {state: {token, user}} document.
//
// Load returns (nil, nil) when nothing is persisted; corruption is an
// error the caller resolves to an unauthenticated session, never a crash.
type SessionStorage interface {
	Load(ctx context.Context) (*domain.SessionEnvelope, error)
	Save(ctx context.Context, env domain.SessionEnvelope) error
	Clear(ctx context.Context) error
}
