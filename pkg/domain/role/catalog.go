package role

import (
	"strings"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Catalog owns the Role lifecycle. All operations are pure: they take Role
// values and return new ones. The clock is injected so the monotonic
// updatedAt guarantee holds even when two mutations land on the same tick.
type Catalog struct {
	clock shared.Clock
}

// NewCatalog creates a Catalog. A nil clock falls back to the system clock.
func NewCatalog(clock shared.Clock) Catalog {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return Catalog{clock: clock}
}

// CreateInput carries the fields accepted at role creation.
type CreateInput struct {
	Name        string
	DisplayName string
	Description string
	Level       int
	IsSystem    bool
	Permissions []string
	Metadata    map[string]any
}

// InfoPatch carries a partial update of the role's informational fields.
// Nil fields are left unchanged.
type InfoPatch struct {
	DisplayName *string
	Description *string
	Level       *int
}

// Create builds a new Role. Name is lowercased and trimmed, displayName and
// description are trimmed, permissions are normalized and deduplicated, and
// the role starts active with createdAt == updatedAt == now.
func (c Catalog) Create(input CreateInput) Role {
	now := c.clock.Now()
	return Role{
		id:          shared.NewID(),
		name:        strings.ToLower(strings.TrimSpace(input.Name)),
		displayName: strings.TrimSpace(input.DisplayName),
		description: strings.TrimSpace(input.Description),
		level:       input.Level,
		isSystem:    input.IsSystem,
		permissions: NormalizePermissions(input.Permissions),
		metadata:    copyMetadata(input.Metadata),
		isActive:    true,
		createdAt:   now,
		updatedAt:   now,
	}
}

// UpdateInfo replaces only the fields set in patch and bumps updatedAt.
func (c Catalog) UpdateInfo(r Role, patch InfoPatch) Role {
	if patch.DisplayName != nil {
		r.displayName = strings.TrimSpace(*patch.DisplayName)
	}
	if patch.Description != nil {
		r.description = strings.TrimSpace(*patch.Description)
	}
	if patch.Level != nil {
		r.level = *patch.Level
	}
	r.updatedAt = shared.NextAfter(c.clock, r.updatedAt)
	return r
}

// UpdatePermissions replaces the permission set with the normalized,
// deduplicated form of perms and bumps updatedAt.
func (c Catalog) UpdatePermissions(r Role, perms []string) Role {
	r.permissions = NormalizePermissions(perms)
	r.updatedAt = shared.NextAfter(c.clock, r.updatedAt)
	return r
}

// AddPermission adds a single permission. When the role already holds it the
// identical value is returned with no timestamp bump, so the call is
// idempotent down to referential equality.
func (c Catalog) AddPermission(r Role, perm string) Role {
	p := NormalizePermission(perm)
	if p == "" || r.HasPermission(p) {
		return r
	}
	return c.UpdatePermissions(r, append(r.Permissions(), p))
}

// RemovePermission filters out a single permission. Unlike AddPermission this
// always produces a new version, even when the permission was absent.
func (c Catalog) RemovePermission(r Role, perm string) Role {
	p := NormalizePermission(perm)
	next := make([]string, 0, len(r.permissions))
	for _, existing := range r.permissions {
		if existing != p {
			next = append(next, existing)
		}
	}
	return c.UpdatePermissions(r, next)
}

// Activate turns the role on. Already-active roles are returned unchanged.
func (c Catalog) Activate(r Role) Role {
	if r.isActive {
		return r
	}
	r.isActive = true
	r.updatedAt = shared.NextAfter(c.clock, r.updatedAt)
	return r
}

// Deactivate turns the role off. Already-inactive roles are returned
// unchanged. System roles can never be deactivated; that is the single
// entity operation that fails.
func (c Catalog) Deactivate(r Role) (Role, error) {
	if !r.isActive {
		return r, nil
	}
	if r.isSystem {
		return r, ErrDeactivateSystemRole
	}
	r.isActive = false
	r.updatedAt = shared.NextAfter(c.clock, r.updatedAt)
	return r, nil
}
