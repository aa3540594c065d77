package app

import (
	"context"
	"fmt"
	"time"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
)

// PermissionInvalidator drops cached permission snapshots. Satisfied by
// redis.PermissionCache.
type PermissionInvalidator interface {
	Invalidate(ctx context.Context, userID shared.ID) error
	InvalidateAll(ctx context.Context) error
}

// RoleService handles role catalog operations.
type RoleService struct {
	roles       role.Repository
	assignments assignment.Repository
	catalog     role.Catalog
	recorder    audit.Recorder
	invalidator PermissionInvalidator
	clock       shared.Clock
	logger      *logger.Logger
}

// RoleServiceOption is a functional option for RoleService.
type RoleServiceOption func(*RoleService)

// WithRoleRecorder sets the audit sink for RoleService.
func WithRoleRecorder(recorder audit.Recorder) RoleServiceOption {
	return func(s *RoleService) {
		s.recorder = recorder
	}
}

// WithRoleInvalidator sets the permission cache invalidator.
func WithRoleInvalidator(inv PermissionInvalidator) RoleServiceOption {
	return func(s *RoleService) {
		s.invalidator = inv
	}
}

// WithRoleClock overrides the clock. Tests freeze it.
func WithRoleClock(clock shared.Clock) RoleServiceOption {
	return func(s *RoleService) {
		s.clock = clock
		s.catalog = role.NewCatalog(clock)
	}
}

// NewRoleService creates a new RoleService.
func NewRoleService(
	roles role.Repository,
	assignments assignment.Repository,
	log *logger.Logger,
	opts ...RoleServiceOption,
) *RoleService {
	s := &RoleService{
		roles:       roles,
		assignments: assignments,
		catalog:     role.NewCatalog(nil),
		recorder:    audit.NopRecorder{},
		clock:       shared.SystemClock{},
		logger:      log.With("service", "role"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateRole creates a new role after field validation and a name
// uniqueness check.
func (s *RoleService) CreateRole(ctx context.Context, input role.CreateInput) (role.Role, error) {
	if res := role.ValidateCreate(input); !res.Valid() {
		return role.Role{}, fmt.Errorf("%w: %s", shared.ErrValidation, res.String())
	}

	created := s.catalog.Create(input)
	exists, err := s.roles.ExistsByName(ctx, created.Name())
	if err != nil {
		return role.Role{}, fmt.Errorf("check role name: %w", err)
	}
	if exists {
		return role.Role{}, role.NameExistsError(created.Name())
	}

	if err := s.roles.Create(ctx, created); err != nil {
		return role.Role{}, err
	}

	s.logger.Info("role created",
		"role_id", created.ID(),
		"name", created.Name(),
		"level", created.Level(),
		"system", created.IsSystem(),
	)
	return created, nil
}

// GetRole returns a role by ID.
func (s *RoleService) GetRole(ctx context.Context, id shared.ID) (role.Role, error) {
	return s.roles.FindByID(ctx, id)
}

// GetRoleByName returns a role by its normalized name.
func (s *RoleService) GetRoleByName(ctx context.Context, name string) (role.Role, error) {
	return s.roles.FindByName(ctx, name)
}

// RoleFilter selects a role listing subset.
type RoleFilter string

// Role listing filters.
const (
	RoleFilterAll    RoleFilter = "all"
	RoleFilterActive RoleFilter = "active"
	RoleFilterSystem RoleFilter = "system"
	RoleFilterCustom RoleFilter = "custom"
)

// ListRoles returns roles matching the filter, ordered by level descending.
func (s *RoleService) ListRoles(ctx context.Context, filter RoleFilter) ([]role.Role, error) {
	switch filter {
	case RoleFilterActive:
		return s.roles.FindActive(ctx)
	case RoleFilterSystem:
		return s.roles.FindSystem(ctx)
	case RoleFilterCustom:
		return s.roles.FindCustom(ctx)
	case RoleFilterAll, "":
		return s.roles.FindAll(ctx)
	default:
		return nil, fmt.Errorf("%w: unknown role filter %q", shared.ErrValidation, filter)
	}
}

// UpdateRoleInfo patches a role's informational fields. System roles cannot
// be edited.
func (s *RoleService) UpdateRoleInfo(ctx context.Context, id shared.ID, patch role.InfoPatch) (role.Role, error) {
	return s.mutate(ctx, id, func(r role.Role) (role.Role, error) {
		if !r.CanBeModified() {
			return r, role.ErrModifySystemRole
		}
		updated := s.catalog.UpdateInfo(r, patch)
		if res := role.Validate(updated); !res.Valid() {
			return r, fmt.Errorf("%w: %s", shared.ErrValidation, res.String())
		}
		return updated, nil
	})
}

// UpdateRolePermissions replaces a role's permission set.
func (s *RoleService) UpdateRolePermissions(ctx context.Context, id shared.ID, perms []string) (role.Role, error) {
	updated, err := s.mutate(ctx, id, func(r role.Role) (role.Role, error) {
		if !r.CanBeModified() {
			return r, role.ErrModifySystemRole
		}
		return s.catalog.UpdatePermissions(r, perms), nil
	})
	if err != nil {
		return role.Role{}, err
	}
	s.recordPermissionChange(ctx, updated)
	return updated, nil
}

// AddPermission grants one permission to a role. Adding a permission the
// role already holds changes nothing and emits no event.
func (s *RoleService) AddPermission(ctx context.Context, id shared.ID, perm string) (role.Role, error) {
	current, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return role.Role{}, err
	}
	if !current.CanBeModified() {
		return role.Role{}, role.ErrModifySystemRole
	}

	updated := s.catalog.AddPermission(current, perm)
	if updated.UpdatedAt().Equal(current.UpdatedAt()) {
		return current, nil
	}

	if err := s.roles.Update(ctx, updated); err != nil {
		return role.Role{}, err
	}
	s.invalidateAll(ctx)
	s.recordPermissionChange(ctx, updated)
	return updated, nil
}

// RemovePermission removes one permission from a role. The role is
// persisted with a bumped timestamp even when the permission was absent.
func (s *RoleService) RemovePermission(ctx context.Context, id shared.ID, perm string) (role.Role, error) {
	updated, err := s.mutate(ctx, id, func(r role.Role) (role.Role, error) {
		if !r.CanBeModified() {
			return r, role.ErrModifySystemRole
		}
		return s.catalog.RemovePermission(r, perm), nil
	})
	if err != nil {
		return role.Role{}, err
	}
	s.recordPermissionChange(ctx, updated)
	return updated, nil
}

// ActivateRole turns a role on.
func (s *RoleService) ActivateRole(ctx context.Context, id shared.ID) (role.Role, error) {
	return s.mutate(ctx, id, func(r role.Role) (role.Role, error) {
		return s.catalog.Activate(r), nil
	})
}

// DeactivateRole turns a role off. System roles refuse.
func (s *RoleService) DeactivateRole(ctx context.Context, id shared.ID) (role.Role, error) {
	return s.mutate(ctx, id, func(r role.Role) (role.Role, error) {
		return s.catalog.Deactivate(r)
	})
}

// DeleteRole removes a custom role that has no assignments.
func (s *RoleService) DeleteRole(ctx context.Context, id shared.ID) error {
	r, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if !r.CanBeDeleted() {
		return role.ErrDeleteSystemRole
	}

	existing, err := s.assignments.FindByRoleID(ctx, id)
	if err != nil {
		return fmt.Errorf("check role usage: %w", err)
	}
	if len(existing) > 0 {
		return role.ErrRoleInUse
	}

	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("role deleted", "role_id", id, "name", r.Name())
	s.invalidateAll(ctx)
	return nil
}

// mutate loads a role, applies fn and persists the result when it changed.
func (s *RoleService) mutate(ctx context.Context, id shared.ID, fn func(role.Role) (role.Role, error)) (role.Role, error) {
	current, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return role.Role{}, err
	}

	updated, err := fn(current)
	if err != nil {
		return role.Role{}, err
	}
	if updated.UpdatedAt().Equal(current.UpdatedAt()) {
		return updated, nil
	}

	if err := s.roles.Update(ctx, updated); err != nil {
		return role.Role{}, err
	}
	s.invalidateAll(ctx)
	return updated, nil
}

// recordPermissionChange emits a permission_change event for the role. The
// event carries no user; a role edit affects every holder.
func (s *RoleService) recordPermissionChange(ctx context.Context, r role.Role) {
	event := audit.NewEvent(audit.EventPermissionChange, shared.ID{}, r.ID(), r.Name(), nil, s.now())
	event.Metadata["permissions"] = r.Permissions()
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logger.Error("failed to record permission change", "role_id", r.ID(), "error", err)
	}
}

// invalidateAll drops every cached permission snapshot. A role definition
// change can affect any user holding it.
func (s *RoleService) invalidateAll(ctx context.Context) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.InvalidateAll(ctx); err != nil {
		s.logger.Warn("failed to invalidate permission cache", "error", err)
	}
}

func (s *RoleService) now() time.Time {
	return s.clock.Now()
}
