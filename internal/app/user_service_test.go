package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/password"
)

func newUserFixture(t *testing.T) (*UserService, *memUsers, *invalidatorFake) {
	t.Helper()
	users := newMemUsers()
	invalidator := &invalidatorFake{}
	svc := NewUserService(users, password.NewHasher(4), testLogger(),
		WithUserInvalidator(invalidator))
	return svc, users, invalidator
}

func TestRegisterNormalizesEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "  Casey@Example.COM ",
		Name:     "Casey",
		Password: "long enough secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "casey@example.com", u.Email())
	assert.Equal(t, user.StatusActive, u.Status())
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	input := RegisterInput{Email: "casey@example.com", Name: "Casey", Password: "long enough secret"}
	_, err := svc.Register(context.Background(), input)
	require.NoError(t, err)

	input.Name = "Other Casey"
	_, err = svc.Register(context.Background(), input)
	assert.True(t, shared.IsAlreadyExists(err))
}

func TestRegisterRejectsBadEmail(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	_, err := svc.Register(context.Background(), RegisterInput{
		Email:    "not-an-email",
		Name:     "Casey",
		Password: "long enough secret",
	})
	assert.True(t, shared.IsValidation(err))
}

func TestChangePasswordRequiresCurrent(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "casey@example.com",
		Name:     "Casey",
		Password: "long enough secret",
	})
	require.NoError(t, err)

	err = svc.ChangePassword(context.Background(), u.ID(), "wrong current", "replacement secret")
	assert.ErrorIs(t, err, user.ErrInvalidCredentials)

	err = svc.ChangePassword(context.Background(), u.ID(), "long enough secret", "replacement secret")
	assert.NoError(t, err)
}

func TestDeleteUserInvalidatesCache(t *testing.T) {
	svc, _, invalidator := newUserFixture(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "casey@example.com",
		Name:     "Casey",
		Password: "long enough secret",
	})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteUser(context.Background(), u.ID()))
	assert.Len(t, invalidator.users, 1)

	_, err = svc.GetUser(context.Background(), u.ID())
	assert.True(t, shared.IsNotFound(err))
}

func TestSuspendAndActivate(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	u, err := svc.Register(context.Background(), RegisterInput{
		Email:    "casey@example.com",
		Name:     "Casey",
		Password: "long enough secret",
	})
	require.NoError(t, err)

	suspended, err := svc.SuspendUser(context.Background(), u.ID())
	require.NoError(t, err)
	assert.Equal(t, user.StatusSuspended, suspended.Status())

	restored, err := svc.ActivateUser(context.Background(), u.ID())
	require.NoError(t, err)
	assert.Equal(t, user.StatusActive, restored.Status())
}
