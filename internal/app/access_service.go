package app

import (
	"context"

	"github.com/userdeskio/api/internal/infra/redis"
	"github.com/userdeskio/api/pkg/domain/accesscontrol"
	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
)

// AccessService answers permission questions about users. Reads of the full
// snapshot go through the cache when one is configured; point checks always
// hit the evaluator so authorization decisions are never stale.
type AccessService struct {
	evaluator *accesscontrol.Evaluator
	cache     *redis.PermissionCache
	clock     shared.Clock
	logger    *logger.Logger
}

// AccessServiceOption is a functional option for AccessService.
type AccessServiceOption func(*AccessService)

// WithAccessCache sets the permission snapshot cache.
func WithAccessCache(cache *redis.PermissionCache) AccessServiceOption {
	return func(s *AccessService) {
		s.cache = cache
	}
}

// WithAccessClock overrides the clock. Tests freeze it.
func WithAccessClock(clock shared.Clock) AccessServiceOption {
	return func(s *AccessService) {
		s.clock = clock
	}
}

// NewAccessService creates a new AccessService.
func NewAccessService(evaluator *accesscontrol.Evaluator, log *logger.Logger, opts ...AccessServiceOption) *AccessService {
	s := &AccessService{
		evaluator: evaluator,
		clock:     shared.SystemClock{},
		logger:    log.With("service", "access"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GetUserPermissions returns the user's effective permission set, sorted.
func (s *AccessService) GetUserPermissions(ctx context.Context, userID shared.ID) ([]string, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return nil, err
	}
	return snap.Permissions, nil
}

// GetUserHighestRoleLevel returns the user's position in the role
// hierarchy, or accesscontrol.NoRoleLevel without any active assignment.
func (s *AccessService) GetUserHighestRoleLevel(ctx context.Context, userID shared.ID) (int, error) {
	snap, err := s.snapshot(ctx, userID)
	if err != nil {
		return accesscontrol.NoRoleLevel, err
	}
	return snap.HighestLevel, nil
}

// GetActiveAssignments returns the user's currently valid assignments.
func (s *AccessService) GetActiveAssignments(ctx context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	return s.evaluator.GetActiveAssignments(ctx, userID)
}

// HasPermission reports whether the user holds one permission.
func (s *AccessService) HasPermission(ctx context.Context, userID shared.ID, perm string) (bool, error) {
	return s.evaluator.HasUserPermission(ctx, userID, perm)
}

// HasAnyPermission reports whether the user holds at least one of perms.
func (s *AccessService) HasAnyPermission(ctx context.Context, userID shared.ID, perms ...string) (bool, error) {
	return s.evaluator.HasUserAnyPermission(ctx, userID, perms...)
}

// HasAllPermissions reports whether the user holds every one of perms.
func (s *AccessService) HasAllPermissions(ctx context.Context, userID shared.ID, perms ...string) (bool, error) {
	return s.evaluator.HasUserAllPermissions(ctx, userID, perms...)
}

// snapshot serves the full evaluation from the cache when possible.
func (s *AccessService) snapshot(ctx context.Context, userID shared.ID) (*redis.PermissionSnapshot, error) {
	if s.cache == nil {
		return s.evaluate(ctx, userID)
	}
	return s.cache.GetOrEvaluate(ctx, userID, func(ctx context.Context) (*redis.PermissionSnapshot, error) {
		return s.evaluate(ctx, userID)
	})
}

func (s *AccessService) evaluate(ctx context.Context, userID shared.ID) (*redis.PermissionSnapshot, error) {
	perms, err := s.evaluator.GetUserPermissions(ctx, userID)
	if err != nil {
		return nil, err
	}
	level, err := s.evaluator.GetUserHighestRoleLevel(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &redis.PermissionSnapshot{
		Permissions:  perms,
		HighestLevel: level,
		EvaluatedAt:  s.clock.Now(),
	}, nil
}
