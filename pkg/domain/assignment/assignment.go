// Package assignment provides the user-role assignment aggregate: a
// time-boxed, activatable binding of a user to a role. Assignments are
// immutable values with the same return-new-instance discipline as roles.
package assignment

import (
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Assignment represents a user-role binding. The zero value is not valid;
// use Ledger.Create or Reconstruct.
type Assignment struct {
	id         shared.ID
	userID     shared.ID
	roleID     shared.ID
	assignedBy *shared.ID
	assignedAt time.Time
	expiresAt  *time.Time // nil means the assignment never expires
	isActive   bool
	metadata   map[string]any
	createdAt  time.Time
	updatedAt  time.Time
}

// Reconstruct recreates an Assignment from persistence.
func Reconstruct(
	id, userID, roleID shared.ID,
	assignedBy *shared.ID,
	assignedAt time.Time,
	expiresAt *time.Time,
	isActive bool,
	metadata map[string]any,
	createdAt, updatedAt time.Time,
) Assignment {
	return Assignment{
		id:         id,
		userID:     userID,
		roleID:     roleID,
		assignedBy: copyIDPtr(assignedBy),
		assignedAt: assignedAt,
		expiresAt:  copyTimePtr(expiresAt),
		isActive:   isActive,
		metadata:   copyMetadata(metadata),
		createdAt:  createdAt,
		updatedAt:  updatedAt,
	}
}

// ID returns the assignment ID.
func (a Assignment) ID() shared.ID { return a.id }

// UserID returns the bound user.
func (a Assignment) UserID() shared.ID { return a.userID }

// RoleID returns the bound role.
func (a Assignment) RoleID() shared.ID { return a.roleID }

// AssignedBy returns who granted the assignment, if recorded.
func (a Assignment) AssignedBy() *shared.ID { return copyIDPtr(a.assignedBy) }

// AssignedAt returns when the grant was made.
func (a Assignment) AssignedAt() time.Time { return a.assignedAt }

// ExpiresAt returns the expiration instant, or nil for a permanent grant.
func (a Assignment) ExpiresAt() *time.Time { return copyTimePtr(a.expiresAt) }

// IsActive returns the activation flag.
func (a Assignment) IsActive() bool { return a.isActive }

// Metadata returns a copy of the metadata bag.
func (a Assignment) Metadata() map[string]any { return copyMetadata(a.metadata) }

// CreatedAt returns when the record was created.
func (a Assignment) CreatedAt() time.Time { return a.createdAt }

// UpdatedAt returns the last modification time, strictly increasing under
// mutation.
func (a Assignment) UpdatedAt() time.Time { return a.updatedAt }

// IsExpired reports whether the assignment has lapsed at the given instant.
// An absent expiresAt never expires; an expiresAt exactly equal to now has
// not expired yet.
func (a Assignment) IsExpired(now time.Time) bool {
	return a.expiresAt != nil && now.After(*a.expiresAt)
}

// IsValid reports whether the assignment currently grants its role:
// active and not expired.
func (a Assignment) IsValid(now time.Time) bool {
	return a.isActive && !a.IsExpired(now)
}

func copyIDPtr(id *shared.ID) *shared.ID {
	if id == nil {
		return nil
	}
	v := *id
	return &v
}

func copyTimePtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
