package assignment

import (
	"fmt"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Domain errors for assignment operations.
var (
	ErrAssignmentNotFound = fmt.Errorf("assignment %w", shared.ErrNotFound)

	// ErrDuplicateGrant reports a second active assignment for the same
	// (user, role) pair. Enforced both by the service-level guard and by
	// the storage unique index.
	ErrDuplicateGrant = fmt.Errorf("active assignment for user and role %w", shared.ErrAlreadyExists)
)

// NotFoundError creates a not found error for a specific assignment.
func NotFoundError(id shared.ID) error {
	return fmt.Errorf("assignment with id %s %w", id, shared.ErrNotFound)
}
