// Package audit defines the access-change event emitted by role and
// assignment mutations, and the write-only sink that consumes it. The core
// never depends on the sink succeeding.
package audit

import (
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// EventType classifies an access-change event.
type EventType string

const (
	EventRoleAssign       EventType = "role_assign"
	EventRoleRevoke       EventType = "role_revoke"
	EventPermissionChange EventType = "permission_change"
)

// IsValid checks if the event type is known.
func (t EventType) IsValid() bool {
	switch t {
	case EventRoleAssign, EventRoleRevoke, EventPermissionChange:
		return true
	}
	return false
}

// String returns the string representation of the event type.
func (t EventType) String() string { return string(t) }

// Event is an access-change record destined for the activity log.
type Event struct {
	ID         shared.ID
	EventType  EventType
	UserID     shared.ID
	RoleID     shared.ID
	RoleName   string
	AssignedBy *shared.ID
	Timestamp  time.Time
	Metadata   map[string]any
}

// NewEvent builds an event with a fresh ID and the given timestamp.
func NewEvent(eventType EventType, userID, roleID shared.ID, roleName string, assignedBy *shared.ID, at time.Time) Event {
	return Event{
		ID:         shared.NewID(),
		EventType:  eventType,
		UserID:     userID,
		RoleID:     roleID,
		RoleName:   roleName,
		AssignedBy: assignedBy,
		Timestamp:  at,
		Metadata:   map[string]any{},
	}
}
