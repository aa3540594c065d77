package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
)

func newRoleFixture(t *testing.T) (*RoleService, *memRoles, *memAssignments, *recorderFake, *invalidatorFake, *testClock) {
	t.Helper()
	roles := newMemRoles()
	assignments := newMemAssignments()
	recorder := &recorderFake{}
	invalidator := &invalidatorFake{}
	clock := newTestClock()

	svc := NewRoleService(roles, assignments, testLogger(),
		WithRoleRecorder(recorder),
		WithRoleInvalidator(invalidator),
		WithRoleClock(clock),
	)
	return svc, roles, assignments, recorder, invalidator, clock
}

func editorInput() role.CreateInput {
	return role.CreateInput{
		Name:        "editor",
		DisplayName: "Editor",
		Description: "Edits content.",
		Level:       20,
		Permissions: []string{"users:read", "Users:Read ", "roles:read"},
	}
}

func TestCreateRoleNormalizesAndPersists(t *testing.T) {
	svc, _, _, _, _, _ := newRoleFixture(t)

	created, err := svc.CreateRole(context.Background(), editorInput())
	require.NoError(t, err)

	assert.Equal(t, "editor", created.Name())
	// Duplicate after normalization collapses; set stays sorted.
	assert.Equal(t, []string{"roles:read", "users:read"}, created.Permissions())
	assert.True(t, created.IsActive())
}

func TestCreateRoleRejectsDuplicateName(t *testing.T) {
	svc, _, _, _, _, _ := newRoleFixture(t)

	_, err := svc.CreateRole(context.Background(), editorInput())
	require.NoError(t, err)

	_, err = svc.CreateRole(context.Background(), editorInput())
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestCreateRoleRejectsInvalidInput(t *testing.T) {
	svc, _, _, _, _, _ := newRoleFixture(t)

	input := editorInput()
	input.Name = "x"

	_, err := svc.CreateRole(context.Background(), input)
	assert.True(t, shared.IsValidation(err))
}

func TestAddPermissionIdempotent(t *testing.T) {
	svc, _, _, recorder, invalidator, _ := newRoleFixture(t)

	created, err := svc.CreateRole(context.Background(), editorInput())
	require.NoError(t, err)

	// A genuinely new permission bumps the role and emits an event.
	updated, err := svc.AddPermission(context.Background(), created.ID(), "reports:export")
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt().After(created.UpdatedAt()))
	assert.Len(t, recorder.ofType(audit.EventPermissionChange), 1)
	assert.Equal(t, 1, invalidator.all)

	// Adding it again changes nothing: same value, no event, no
	// invalidation.
	again, err := svc.AddPermission(context.Background(), created.ID(), "reports:export")
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt().Equal(updated.UpdatedAt()))
	assert.Len(t, recorder.ofType(audit.EventPermissionChange), 1)
	assert.Equal(t, 1, invalidator.all)
}

func TestRemovePermissionAlwaysBumps(t *testing.T) {
	svc, _, _, recorder, _, _ := newRoleFixture(t)

	created, err := svc.CreateRole(context.Background(), editorInput())
	require.NoError(t, err)

	// Removing an absent permission still persists a bumped timestamp.
	updated, err := svc.RemovePermission(context.Background(), created.ID(), "never:held")
	require.NoError(t, err)
	assert.True(t, updated.UpdatedAt().After(created.UpdatedAt()))
	assert.Len(t, recorder.ofType(audit.EventPermissionChange), 1)
}

func TestSystemRoleRefusesEdits(t *testing.T) {
	svc, roles, _, _, _, _ := newRoleFixture(t)

	input := editorInput()
	input.Name = "admin"
	input.IsSystem = true
	created, err := svc.CreateRole(context.Background(), input)
	require.NoError(t, err)

	_, err = svc.AddPermission(context.Background(), created.ID(), "extra:perm")
	assert.ErrorIs(t, err, role.ErrModifySystemRole)

	_, err = svc.DeactivateRole(context.Background(), created.ID())
	assert.ErrorIs(t, err, role.ErrDeactivateSystemRole)

	err = svc.DeleteRole(context.Background(), created.ID())
	assert.ErrorIs(t, err, role.ErrDeleteSystemRole)

	// Nothing was persisted through the refusals.
	stored, err := roles.FindByID(context.Background(), created.ID())
	require.NoError(t, err)
	assert.True(t, stored.UpdatedAt().Equal(created.UpdatedAt()))
}

func TestDeactivateRoleIsIdempotent(t *testing.T) {
	svc, _, _, _, _, _ := newRoleFixture(t)

	created, err := svc.CreateRole(context.Background(), editorInput())
	require.NoError(t, err)

	first, err := svc.DeactivateRole(context.Background(), created.ID())
	require.NoError(t, err)
	assert.False(t, first.IsActive())

	second, err := svc.DeactivateRole(context.Background(), created.ID())
	require.NoError(t, err)
	assert.True(t, second.UpdatedAt().Equal(first.UpdatedAt()))
}

func TestDeleteRoleInUse(t *testing.T) {
	svc, _, assignments, _, _, clock := newRoleFixture(t)

	created, err := svc.CreateRole(context.Background(), editorInput())
	require.NoError(t, err)

	ledger := assignment.NewLedger(clock)
	granted := ledger.Create(assignment.CreateInput{
		UserID: shared.NewID(),
		RoleID: created.ID(),
	})
	require.NoError(t, assignments.Create(context.Background(), granted))

	err = svc.DeleteRole(context.Background(), created.ID())
	assert.ErrorIs(t, err, role.ErrRoleInUse)
}

func TestListRolesFilters(t *testing.T) {
	svc, _, _, _, _, _ := newRoleFixture(t)

	custom := editorInput()
	_, err := svc.CreateRole(context.Background(), custom)
	require.NoError(t, err)

	system := editorInput()
	system.Name = "admin"
	system.IsSystem = true
	_, err = svc.CreateRole(context.Background(), system)
	require.NoError(t, err)

	all, err := svc.ListRoles(context.Background(), RoleFilterAll)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	sys, err := svc.ListRoles(context.Background(), RoleFilterSystem)
	require.NoError(t, err)
	assert.Len(t, sys, 1)

	_, err = svc.ListRoles(context.Background(), RoleFilter("bogus"))
	assert.True(t, shared.IsValidation(err))
}
