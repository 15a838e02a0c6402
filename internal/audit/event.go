package audit

import (
	"time"

	"github.com/google/uuid"

	"github.com/brokerhub/admin-gateway/internal/core/domain"
	"github.com/brokerhub/admin-gateway/internal/core/ports"
)

// Forced-logout events carry this action; guard events carry the
// decision action verbatim.
const ActionForcedLogout = "forced_logout"

// NewEvent builds an access event for a guard outcome.
func NewEvent(path, action, target, reason string, s domain.Session) ports.AccessEvent {
	event := ports.AccessEvent{
		ID:        uuid.NewString(),
		Path:      path,
		Action:    action,
		Target:    target,
		Reason:    reason,
		Role:      s.Role(),
		Timestamp: time.Now().UTC().Unix(),
	}
	if s.User != nil {
		event.UserID = s.User.ID
	}
	return event
}
