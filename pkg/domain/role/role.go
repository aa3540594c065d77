// Package role provides the role aggregate for role-based access control.
// A role is a named, leveled bundle of permissions, optionally system-protected.
// Roles are immutable values: every mutating operation returns a new Role and
// never changes the receiver.
package role

import (
	"slices"
	"strings"
	"time"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Level bounds for role authority. Higher level means more authority.
const (
	MinLevel = 0
	MaxLevel = 1000
)

// Role represents a role entity. The zero value is not a valid role; use
// Catalog.Create or Reconstruct.
type Role struct {
	id          shared.ID
	name        string // lowercase, trimmed; unique; never changes post-creation
	displayName string
	description string
	level       int
	isSystem    bool
	permissions []string // normalized, deduplicated, sorted
	metadata    map[string]any
	isActive    bool
	createdAt   time.Time
	updatedAt   time.Time
}

// Reconstruct recreates a Role from persistence. It trusts the stored values
// except for permission normalization, which is re-applied so older rows can
// never smuggle duplicates back in.
func Reconstruct(
	id shared.ID,
	name, displayName, description string,
	level int,
	isSystem bool,
	permissions []string,
	metadata map[string]any,
	isActive bool,
	createdAt, updatedAt time.Time,
) Role {
	return Role{
		id:          id,
		name:        name,
		displayName: displayName,
		description: description,
		level:       level,
		isSystem:    isSystem,
		permissions: NormalizePermissions(permissions),
		metadata:    copyMetadata(metadata),
		isActive:    isActive,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the role ID.
func (r Role) ID() shared.ID { return r.id }

// Name returns the normalized role name.
func (r Role) Name() string { return r.name }

// DisplayName returns the human label.
func (r Role) DisplayName() string { return r.displayName }

// Description returns the role description.
func (r Role) Description() string { return r.description }

// Level returns the authority level.
func (r Role) Level() int { return r.level }

// IsSystem returns true for protected system roles.
func (r Role) IsSystem() bool { return r.isSystem }

// IsActive returns the activation state.
func (r Role) IsActive() bool { return r.isActive }

// Permissions returns a copy of the permission set, sorted.
func (r Role) Permissions() []string {
	return slices.Clone(r.permissions)
}

// PermissionCount returns the number of permissions.
func (r Role) PermissionCount() int { return len(r.permissions) }

// Metadata returns a copy of the metadata bag.
func (r Role) Metadata() map[string]any {
	return copyMetadata(r.metadata)
}

// CreatedAt returns when the role was created.
func (r Role) CreatedAt() time.Time { return r.createdAt }

// UpdatedAt returns the last modification time. It strictly increases on
// every effective mutation.
func (r Role) UpdatedAt() time.Time { return r.updatedAt }

// CanBeDeleted reports whether the role may be removed. System roles never can.
func (r Role) CanBeDeleted() bool { return !r.isSystem }

// CanBeModified reports whether the role accepts lifecycle changes.
func (r Role) CanBeModified() bool { return !r.isSystem }

// HasPermission checks membership of a single permission. The input is
// normalized before comparison.
func (r Role) HasPermission(perm string) bool {
	p := NormalizePermission(perm)
	if p == "" {
		return false
	}
	_, found := slices.BinarySearch(r.permissions, p)
	return found
}

// HasAnyPermission checks whether the role holds at least one of perms.
func (r Role) HasAnyPermission(perms ...string) bool {
	for _, p := range perms {
		if r.HasPermission(p) {
			return true
		}
	}
	return false
}

// HasAllPermissions checks whether the role holds every one of perms.
func (r Role) HasAllPermissions(perms ...string) bool {
	for _, p := range perms {
		if !r.HasPermission(p) {
			return false
		}
	}
	return true
}

// HasReadPermissions reports whether the role carries any read-class permission.
func (r Role) HasReadPermissions() bool {
	return r.HasAnyPermission(ReadPermissions...)
}

// HasWritePermissions reports whether the role carries any write-class permission.
func (r Role) HasWritePermissions() bool {
	return r.HasAnyPermission(WritePermissions...)
}

// HasAdminPermissions reports whether the role carries any admin-class permission.
func (r Role) HasAdminPermissions() bool {
	return r.HasAnyPermission(AdminPermissions...)
}

// HasUserManagementPermissions reports whether the role can manage user accounts.
func (r Role) HasUserManagementPermissions() bool {
	return r.HasAnyPermission(UserManagementPermissions...)
}

// IsHigherLevel reports whether r outranks other. Exactly one of IsHigherLevel,
// IsSameLevel and IsLowerLevel holds for any pair of roles.
func (r Role) IsHigherLevel(other Role) bool { return r.level > other.level }

// IsSameLevel reports whether r and other share a level.
func (r Role) IsSameLevel(other Role) bool { return r.level == other.level }

// IsLowerLevel reports whether other outranks r.
func (r Role) IsLowerLevel(other Role) bool { return r.level < other.level }

// NormalizePermission trims whitespace and lowercases a permission token.
func NormalizePermission(perm string) string {
	return strings.ToLower(strings.TrimSpace(perm))
}

// NormalizePermissions normalizes every entry, drops empties and duplicates,
// and returns the result sorted.
func NormalizePermissions(perms []string) []string {
	if len(perms) == 0 {
		return []string{}
	}
	seen := make(map[string]struct{}, len(perms))
	out := make([]string, 0, len(perms))
	for _, p := range perms {
		n := NormalizePermission(p)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	slices.Sort(out)
	return out
}

func copyMetadata(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
