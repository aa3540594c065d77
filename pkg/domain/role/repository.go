package role

import (
	"context"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Repository defines the interface for role persistence. Implementations must
// map storage-level uniqueness violations on name to ErrRoleNameExists and
// missing rows to ErrRoleNotFound.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (Role, error)
	FindByName(ctx context.Context, name string) (Role, error)
	FindAll(ctx context.Context) ([]Role, error)
	FindActive(ctx context.Context) ([]Role, error)
	FindSystem(ctx context.Context) ([]Role, error)
	FindCustom(ctx context.Context) ([]Role, error)

	// FindByIDs loads several roles in one consistent snapshot. IDs without a
	// matching role are silently skipped.
	FindByIDs(ctx context.Context, ids []shared.ID) ([]Role, error)

	Create(ctx context.Context, r Role) error
	Update(ctx context.Context, r Role) error
	Delete(ctx context.Context, id shared.ID) error

	ExistsByID(ctx context.Context, id shared.ID) (bool, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
}
