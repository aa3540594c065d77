package assignment

import (
	"context"
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Repository defines the interface for assignment persistence.
//
// FindActiveByUserID and FindActiveByRoleID must read a single consistent
// snapshot: a concurrent grant or revoke may be observed entirely or not at
// all, never partially. The permission evaluator relies on this.
type Repository interface {
	FindByID(ctx context.Context, id shared.ID) (Assignment, error)
	FindByUserID(ctx context.Context, userID shared.ID) ([]Assignment, error)
	FindByRoleID(ctx context.Context, roleID shared.ID) ([]Assignment, error)

	// FindActiveByUserID returns assignments with isActive == true for the
	// user. Expiration is not filtered here; callers apply IsValid.
	FindActiveByUserID(ctx context.Context, userID shared.ID) ([]Assignment, error)
	FindActiveByRoleID(ctx context.Context, roleID shared.ID) ([]Assignment, error)

	// FindExpired returns active assignments whose expiresAt lies strictly
	// before the given instant. Used by the expiration sweeper.
	FindExpired(ctx context.Context, before time.Time) ([]Assignment, error)

	Create(ctx context.Context, a Assignment) error
	Update(ctx context.Context, a Assignment) error
	Delete(ctx context.Context, id shared.ID) error
}
