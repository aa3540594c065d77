// Package accesscontrol computes effective permissions for users. It reads
// roles and assignments through their repositories and aggregates currently
// valid assignments into a deduplicated permission set; it holds no state and
// performs no locking of its own.
package accesscontrol

import (
	"context"
	"fmt"
	"slices"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
)

// NoRoleLevel is the sentinel returned for a user with no active assignment.
// It is below MinLevel so any real role outranks it.
const NoRoleLevel = -1

// Evaluator resolves a user's effective permissions and hierarchy position.
type Evaluator struct {
	roles       role.Repository
	assignments assignment.Repository
	clock       shared.Clock
}

// NewEvaluator creates an Evaluator. A nil clock falls back to the system
// clock.
func NewEvaluator(roles role.Repository, assignments assignment.Repository, clock shared.Clock) *Evaluator {
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &Evaluator{
		roles:       roles,
		assignments: assignments,
		clock:       clock,
	}
}

// GetActiveAssignments returns every assignment of the user for which
// IsValid holds: active and not expired at the evaluation instant. The read
// comes from a single repository snapshot.
func (e *Evaluator) GetActiveAssignments(ctx context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	all, err := e.assignments.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load assignments for user %s: %w", userID, err)
	}
	now := e.clock.Now()
	valid := make([]assignment.Assignment, 0, len(all))
	for _, a := range all {
		if a.IsValid(now) {
			valid = append(valid, a)
		}
	}
	return valid, nil
}

// GetUserPermissions returns the set union of permissions over every role
// referenced by a valid assignment, sorted. Roles reached only through
// expired or inactive assignments contribute nothing. A user with no valid
// assignments gets an empty, non-nil set.
func (e *Evaluator) GetUserPermissions(ctx context.Context, userID shared.ID) ([]string, error) {
	roles, err := e.activeRoles(ctx, userID)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{})
	for _, r := range roles {
		for _, p := range r.Permissions() {
			set[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	slices.Sort(out)
	return out, nil
}

// GetUserHighestRoleLevel returns the maximum level over roles reachable via
// valid assignments, or NoRoleLevel when the user has none.
func (e *Evaluator) GetUserHighestRoleLevel(ctx context.Context, userID shared.ID) (int, error) {
	roles, err := e.activeRoles(ctx, userID)
	if err != nil {
		return NoRoleLevel, err
	}
	highest := NoRoleLevel
	for _, r := range roles {
		if r.Level() > highest {
			highest = r.Level()
		}
	}
	return highest, nil
}

// HasUserPermission reports whether the user's effective permission set
// contains perm. The input is normalized before comparison.
func (e *Evaluator) HasUserPermission(ctx context.Context, userID shared.ID, perm string) (bool, error) {
	perms, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	p := role.NormalizePermission(perm)
	_, found := slices.BinarySearch(perms, p)
	return found, nil
}

// HasUserAnyPermission reports whether the user holds at least one of perms.
func (e *Evaluator) HasUserAnyPermission(ctx context.Context, userID shared.ID, perms ...string) (bool, error) {
	effective, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if _, found := slices.BinarySearch(effective, role.NormalizePermission(p)); found {
			return true, nil
		}
	}
	return false, nil
}

// HasUserAllPermissions reports whether the user holds every one of perms.
func (e *Evaluator) HasUserAllPermissions(ctx context.Context, userID shared.ID, perms ...string) (bool, error) {
	effective, err := e.GetUserPermissions(ctx, userID)
	if err != nil {
		return false, err
	}
	for _, p := range perms {
		if _, found := slices.BinarySearch(effective, role.NormalizePermission(p)); !found {
			return false, nil
		}
	}
	return true, nil
}

// activeRoles loads the distinct roles referenced by valid assignments.
// Assignment validity is the only filter: an inactive role reached through a
// valid assignment still contributes its permissions.
func (e *Evaluator) activeRoles(ctx context.Context, userID shared.ID) ([]role.Role, error) {
	valid, err := e.GetActiveAssignments(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(valid) == 0 {
		return nil, nil
	}
	ids := make([]shared.ID, 0, len(valid))
	seen := make(map[shared.ID]struct{}, len(valid))
	for _, a := range valid {
		if _, dup := seen[a.RoleID()]; dup {
			continue
		}
		seen[a.RoleID()] = struct{}{}
		ids = append(ids, a.RoleID())
	}
	roles, err := e.roles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load roles for user %s: %w", userID, err)
	}
	return roles, nil
}
