package role

import (
	"fmt"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Domain errors for role operations.
var (
	ErrRoleNotFound   = fmt.Errorf("role %w", shared.ErrNotFound)
	ErrRoleNameExists = fmt.Errorf("role name %w", shared.ErrAlreadyExists)
	ErrRoleInUse      = fmt.Errorf("%w: role is assigned to users", shared.ErrConflict)

	// ErrDeactivateSystemRole is the sole invariant breach an entity
	// operation can report.
	ErrDeactivateSystemRole = shared.InvariantError("cannot deactivate system role")

	// ErrDeleteSystemRole guards the storage-level delete path.
	ErrDeleteSystemRole = shared.InvariantError("cannot delete system role")

	// ErrModifySystemRole guards service-level edits of system role
	// definitions.
	ErrModifySystemRole = shared.InvariantError("cannot modify system role")
)

// NotFoundError creates a not found error for a specific role.
func NotFoundError(id shared.ID) error {
	return fmt.Errorf("role with id %s %w", id, shared.ErrNotFound)
}

// NameExistsError creates an already exists error for a specific name.
func NameExistsError(name string) error {
	return fmt.Errorf("role with name %q %w", name, shared.ErrAlreadyExists)
}
