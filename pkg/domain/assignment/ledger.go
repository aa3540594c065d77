package assignment

import (
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Ledger owns the Assignment lifecycle. Like role.Catalog it is a pure
// value-to-value transformer with an injected clock.
type Ledger struct {
	clock shared.Clock
}

// NewLedger creates a Ledger. A nil clock falls back to the system clock.
func NewLedger(clock shared.Clock) Ledger {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return Ledger{clock: clock}
}

// CreateInput carries the fields accepted when granting a role.
type CreateInput struct {
	UserID     shared.ID
	RoleID     shared.ID
	AssignedBy *shared.ID
	ExpiresAt  *time.Time
	// Active overrides the default activation state (true) when set.
	Active   *bool
	Metadata map[string]any
}

// Create builds a new Assignment with assignedAt == createdAt == updatedAt.
func (l Ledger) Create(input CreateInput) Assignment {
	now := l.clock.Now()
	active := true
	if input.Active != nil {
		active = *input.Active
	}
	return Assignment{
		id:         shared.NewID(),
		userID:     input.UserID,
		roleID:     input.RoleID,
		assignedBy: copyIDPtr(input.AssignedBy),
		assignedAt: now,
		expiresAt:  copyTimePtr(input.ExpiresAt),
		isActive:   active,
		metadata:   copyMetadata(input.Metadata),
		createdAt:  now,
		updatedAt:  now,
	}
}

// Activate turns the assignment on; a no-op when already active.
func (l Ledger) Activate(a Assignment) Assignment {
	if a.isActive {
		return a
	}
	a.isActive = true
	a.updatedAt = shared.NextAfter(l.clock, a.updatedAt)
	return a
}

// Deactivate turns the assignment off; a no-op when already inactive.
func (l Ledger) Deactivate(a Assignment) Assignment {
	if !a.isActive {
		return a
	}
	a.isActive = false
	a.updatedAt = shared.NextAfter(l.clock, a.updatedAt)
	return a
}

// UpdateExpiration replaces expiresAt (nil clears it) and bumps updatedAt.
func (l Ledger) UpdateExpiration(a Assignment, expiresAt *time.Time) Assignment {
	a.expiresAt = copyTimePtr(expiresAt)
	a.updatedAt = shared.NextAfter(l.clock, a.updatedAt)
	return a
}

// UpdateMetadata shallow-merges patch into the metadata bag and bumps
// updatedAt.
func (l Ledger) UpdateMetadata(a Assignment, patch map[string]any) Assignment {
	merged := copyMetadata(a.metadata)
	for k, v := range patch {
		merged[k] = v
	}
	a.metadata = merged
	a.updatedAt = shared.NextAfter(l.clock, a.updatedAt)
	return a
}

// IsExpired evaluates Assignment.IsExpired against the ledger's clock.
func (l Ledger) IsExpired(a Assignment) bool {
	return a.IsExpired(l.clock.Now())
}

// IsValid evaluates Assignment.IsValid against the ledger's clock.
func (l Ledger) IsValid(a Assignment) bool {
	return a.IsValid(l.clock.Now())
}
