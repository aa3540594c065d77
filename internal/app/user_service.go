package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/logger"
	"github.com/userdeskio/api/pkg/password"
)

// UserService handles user account operations.
type UserService struct {
	users       user.Repository
	hasher      *password.Hasher
	invalidator PermissionInvalidator
	logger      *logger.Logger
}

// UserServiceOption is a functional option for UserService.
type UserServiceOption func(*UserService)

// WithUserInvalidator sets the permission cache invalidator.
func WithUserInvalidator(inv PermissionInvalidator) UserServiceOption {
	return func(s *UserService) {
		s.invalidator = inv
	}
}

// NewUserService creates a new UserService.
func NewUserService(users user.Repository, hasher *password.Hasher, log *logger.Logger, opts ...UserServiceOption) *UserService {
	s := &UserService{
		users:  users,
		hasher: hasher,
		logger: log.With("service", "user"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// RegisterInput carries the fields accepted at registration.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// Register creates a new active user account.
func (s *UserService) Register(ctx context.Context, input RegisterInput) (*user.User, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if email == "" || !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: invalid email address", shared.ErrValidation)
	}
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}

	exists, err := s.users.ExistsByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("check email: %w", err)
	}
	if exists {
		return nil, user.AlreadyExistsError(email)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}

	u := user.New(email, input.Name, hash)
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}

	s.logger.Info("user registered", "user_id", u.ID(), "email", u.Email())
	return u, nil
}

// GetUser returns a user by ID.
func (s *UserService) GetUser(ctx context.Context, id shared.ID) (*user.User, error) {
	return s.users.GetByID(ctx, id)
}

// GetUserByEmail returns a user by normalized email.
func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// ListUsers returns a page of users and the total count.
func (s *UserService) ListUsers(ctx context.Context, limit, offset int) ([]*user.User, int64, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	users, err := s.users.List(ctx, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.users.Count(ctx)
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateProfile replaces a user's profile fields.
func (s *UserService) UpdateProfile(ctx context.Context, id shared.ID, name, avatarURL, phone string) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("%w: name is required", shared.ErrValidation)
	}

	u.UpdateProfile(name, avatarURL, phone)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// UpdatePreferences replaces a user's settings.
func (s *UserService) UpdatePreferences(ctx context.Context, id shared.ID, prefs user.Preferences) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	u.UpdatePreferences(prefs)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ChangePassword verifies the current credential and stores a new hash.
func (s *UserService) ChangePassword(ctx context.Context, id shared.ID, current, next string) error {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.hasher.Verify(u.PasswordHash(), current); err != nil {
		return user.ErrInvalidCredentials
	}

	hash, err := s.hasher.Hash(next)
	if err != nil {
		return fmt.Errorf("%w: %s", shared.ErrValidation, err)
	}
	u.SetPasswordHash(hash)
	return s.users.Update(ctx, u)
}

// SuspendUser blocks an account.
func (s *UserService) SuspendUser(ctx context.Context, id shared.ID) (*user.User, error) {
	return s.setStatus(ctx, id, (*user.User).Suspend)
}

// ActivateUser restores an account.
func (s *UserService) ActivateUser(ctx context.Context, id shared.ID) (*user.User, error) {
	return s.setStatus(ctx, id, (*user.User).Activate)
}

// DeactivateUser marks an account inactive.
func (s *UserService) DeactivateUser(ctx context.Context, id shared.ID) (*user.User, error) {
	return s.setStatus(ctx, id, (*user.User).Deactivate)
}

// DeleteUser removes an account. Assignments cascade at the storage level;
// the cached permission snapshot is dropped here.
func (s *UserService) DeleteUser(ctx context.Context, id shared.ID) error {
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("user deleted", "user_id", id)
	if s.invalidator != nil {
		if err := s.invalidator.Invalidate(ctx, id); err != nil {
			s.logger.Warn("failed to invalidate permission cache", "user_id", id, "error", err)
		}
	}
	return nil
}

func (s *UserService) setStatus(ctx context.Context, id shared.ID, change func(*user.User)) (*user.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	change(u)
	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info("user status changed", "user_id", id, "status", u.Status())
	return u, nil
}
