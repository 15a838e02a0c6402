package ports

import (
	"context"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
)

// AccessEvent records one access-control outcome worth keeping: a denied
// navigation, a redirect, or a forced logout. Plain renders are not
// audited.
type AccessEvent struct {
	ID        string      `json:"id"`
	Path      string      `json:"path"`
	Action    string      `json:"action"`
	Target    string      `json:"target,omitempty"`
	Role      domain.Role `json:"role,omitempty"`
	UserID    string      `json:"user_id,omitempty"`
	Reason    string      `json:"reason,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// AuditRepository persists access events.
type AuditRepository interface {
	Insert(ctx context.Context, event AccessEvent) error
	ListByPath(ctx context.Context, path string, limit int64) ([]AccessEvent, error)
}
