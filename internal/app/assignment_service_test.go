package app

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
)

type assignmentFixture struct {
	svc         *AssignmentService
	roles       *memRoles
	assignments *memAssignments
	users       *memUsers
	recorder    *recorderFake
	invalidator *invalidatorFake
	clock       *testClock

	member *user.User
	editor role.Role
}

func newAssignmentFixture(t *testing.T) *assignmentFixture {
	t.Helper()
	f := &assignmentFixture{
		roles:       newMemRoles(),
		assignments: newMemAssignments(),
		users:       newMemUsers(),
		recorder:    &recorderFake{},
		invalidator: &invalidatorFake{},
		clock:       newTestClock(),
	}
	f.svc = NewAssignmentService(f.assignments, f.roles, f.users, testLogger(),
		WithAssignmentRecorder(f.recorder),
		WithAssignmentInvalidator(f.invalidator),
		WithAssignmentClock(f.clock),
	)

	f.member = user.New("casey@example.com", "Casey", "hash")
	require.NoError(t, f.users.Create(context.Background(), f.member))

	catalog := role.NewCatalog(f.clock)
	f.editor = catalog.Create(role.CreateInput{
		Name:        "editor",
		DisplayName: "Editor",
		Level:       20,
		Permissions: []string{"users:read"},
	})
	require.NoError(t, f.roles.Create(context.Background(), f.editor))
	return f
}

func (f *assignmentFixture) grant(t *testing.T) assignment.Assignment {
	t.Helper()
	created, err := f.svc.AssignRole(context.Background(), assignment.CreateInput{
		UserID: f.member.ID(),
		RoleID: f.editor.ID(),
	})
	require.NoError(t, err)
	return created
}

func TestAssignRole(t *testing.T) {
	f := newAssignmentFixture(t)

	created := f.grant(t)

	assert.True(t, created.IsActive())
	assert.True(t, created.UserID().Equal(f.member.ID()))
	assert.Len(t, f.recorder.ofType(audit.EventRoleAssign), 1)
	assert.Len(t, f.invalidator.users, 1)
}

func TestAssignRoleRejectsDuplicateGrant(t *testing.T) {
	f := newAssignmentFixture(t)

	f.grant(t)

	_, err := f.svc.AssignRole(context.Background(), assignment.CreateInput{
		UserID: f.member.ID(),
		RoleID: f.editor.ID(),
	})
	assert.ErrorIs(t, err, assignment.ErrDuplicateGrant)
}

func TestAssignRoleUnknownReferences(t *testing.T) {
	f := newAssignmentFixture(t)

	_, err := f.svc.AssignRole(context.Background(), assignment.CreateInput{
		UserID: shared.NewID(),
		RoleID: f.editor.ID(),
	})
	assert.True(t, shared.IsNotFound(err))

	_, err = f.svc.AssignRole(context.Background(), assignment.CreateInput{
		UserID: f.member.ID(),
		RoleID: shared.NewID(),
	})
	assert.True(t, shared.IsNotFound(err))
}

func TestRevokeRoleIsIdempotent(t *testing.T) {
	f := newAssignmentFixture(t)

	created := f.grant(t)
	revoker := shared.NewID()

	revoked, err := f.svc.RevokeRole(context.Background(), created.ID(), &revoker)
	require.NoError(t, err)
	assert.False(t, revoked.IsActive())
	assert.Len(t, f.recorder.ofType(audit.EventRoleRevoke), 1)

	// Revoking again is a no-op: no second event, no extra write.
	again, err := f.svc.RevokeRole(context.Background(), created.ID(), &revoker)
	require.NoError(t, err)
	assert.True(t, again.UpdatedAt().Equal(revoked.UpdatedAt()))
	assert.Len(t, f.recorder.ofType(audit.EventRoleRevoke), 1)
}

func TestReactivateAppliesDuplicateGuard(t *testing.T) {
	f := newAssignmentFixture(t)

	first := f.grant(t)
	_, err := f.svc.RevokeRole(context.Background(), first.ID(), nil)
	require.NoError(t, err)

	// A fresh active grant for the same pair now exists.
	second := f.grant(t)
	require.True(t, second.IsActive())

	_, err = f.svc.ReactivateAssignment(context.Background(), first.ID())
	assert.ErrorIs(t, err, assignment.ErrDuplicateGrant)
}

func TestUpdateExpirationRejectsPastAnchor(t *testing.T) {
	f := newAssignmentFixture(t)

	created := f.grant(t)
	before := created.AssignedAt().Add(-time.Hour)

	_, err := f.svc.UpdateExpiration(context.Background(), created.ID(), &before)
	assert.True(t, shared.IsValidation(err))
}

func TestSweepExpired(t *testing.T) {
	f := newAssignmentFixture(t)

	expires := f.clock.Now().Add(time.Hour)
	created, err := f.svc.AssignRole(context.Background(), assignment.CreateInput{
		UserID:    f.member.ID(),
		RoleID:    f.editor.ID(),
		ExpiresAt: &expires,
	})
	require.NoError(t, err)

	// Before the deadline nothing is swept.
	swept, err := f.svc.SweepExpired(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Zero(t, swept)

	f.clock.Advance(2 * time.Hour)
	swept, err = f.svc.SweepExpired(context.Background(), f.clock.Now())
	require.NoError(t, err)
	assert.Equal(t, 1, swept)

	stored, err := f.assignments.FindByID(context.Background(), created.ID())
	require.NoError(t, err)
	assert.False(t, stored.IsActive())

	revokes := f.recorder.ofType(audit.EventRoleRevoke)
	require.Len(t, revokes, 1)
	assert.Equal(t, "expired", revokes[0].Metadata["reason"])
}
