package app

import (
	"context"
	"fmt"
	"time"

	"github.com/userdeskio/api/internal/metrics"
	"github.com/userdeskio/api/pkg/domain/assignment"
	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/role"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/domain/user"
	"github.com/userdeskio/api/pkg/logger"
)

// AssignmentService handles the role assignment ledger.
type AssignmentService struct {
	assignments assignment.Repository
	roles       role.Repository
	users       user.Repository
	ledger      assignment.Ledger
	recorder    audit.Recorder
	invalidator PermissionInvalidator
	clock       shared.Clock
	logger      *logger.Logger
}

// AssignmentServiceOption is a functional option for AssignmentService.
type AssignmentServiceOption func(*AssignmentService)

// WithAssignmentRecorder sets the audit sink for AssignmentService.
func WithAssignmentRecorder(recorder audit.Recorder) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.recorder = recorder
	}
}

// WithAssignmentInvalidator sets the permission cache invalidator.
func WithAssignmentInvalidator(inv PermissionInvalidator) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.invalidator = inv
	}
}

// WithAssignmentClock overrides the clock. Tests freeze it.
func WithAssignmentClock(clock shared.Clock) AssignmentServiceOption {
	return func(s *AssignmentService) {
		s.clock = clock
		s.ledger = assignment.NewLedger(clock)
	}
}

// NewAssignmentService creates a new AssignmentService.
func NewAssignmentService(
	assignments assignment.Repository,
	roles role.Repository,
	users user.Repository,
	log *logger.Logger,
	opts ...AssignmentServiceOption,
) *AssignmentService {
	s := &AssignmentService{
		assignments: assignments,
		roles:       roles,
		users:       users,
		ledger:      assignment.NewLedger(nil),
		recorder:    audit.NopRecorder{},
		clock:       shared.SystemClock{},
		logger:      log.With("service", "assignment"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AssignRole grants a role to a user. A user may hold at most one active
// assignment per role; the service guard and the storage unique index both
// enforce it.
func (s *AssignmentService) AssignRole(ctx context.Context, input assignment.CreateInput) (assignment.Assignment, error) {
	if res := assignment.ValidateCreate(input); !res.Valid() {
		return assignment.Assignment{}, fmt.Errorf("%w: %s", shared.ErrValidation, res.String())
	}

	if _, err := s.users.GetByID(ctx, input.UserID); err != nil {
		return assignment.Assignment{}, err
	}
	r, err := s.roles.FindByID(ctx, input.RoleID)
	if err != nil {
		return assignment.Assignment{}, err
	}

	active, err := s.assignments.FindActiveByUserID(ctx, input.UserID)
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("check existing grants: %w", err)
	}
	for _, a := range active {
		if a.RoleID().Equal(input.RoleID) {
			return assignment.Assignment{}, assignment.ErrDuplicateGrant
		}
	}

	created := s.ledger.Create(input)
	if res := assignment.Validate(created); !res.Valid() {
		return assignment.Assignment{}, fmt.Errorf("%w: %s", shared.ErrValidation, res.String())
	}
	if err := s.assignments.Create(ctx, created); err != nil {
		return assignment.Assignment{}, err
	}

	s.logger.Info("role assigned",
		"assignment_id", created.ID(),
		"user_id", created.UserID(),
		"role_id", created.RoleID(),
		"role", r.Name(),
		"expires_at", created.ExpiresAt(),
	)
	metrics.AssignmentsGrantedTotal.Inc()
	s.invalidate(ctx, created.UserID())
	s.record(ctx, audit.EventRoleAssign, created, r.Name())
	return created, nil
}

// RevokeRole deactivates an assignment. Revoking an already-inactive
// assignment is a no-op.
func (s *AssignmentService) RevokeRole(ctx context.Context, id shared.ID, revokedBy *shared.ID) (assignment.Assignment, error) {
	current, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return assignment.Assignment{}, err
	}

	revoked := s.ledger.Deactivate(current)
	if revoked.UpdatedAt().Equal(current.UpdatedAt()) {
		return revoked, nil
	}
	if err := s.assignments.Update(ctx, revoked); err != nil {
		return assignment.Assignment{}, err
	}

	roleName := s.roleName(ctx, revoked.RoleID())
	s.logger.Info("role revoked",
		"assignment_id", revoked.ID(),
		"user_id", revoked.UserID(),
		"role_id", revoked.RoleID(),
		"role", roleName,
	)
	metrics.AssignmentsRevokedTotal.WithLabelValues("manual").Inc()
	s.invalidate(ctx, revoked.UserID())

	event := audit.NewEvent(audit.EventRoleRevoke, revoked.UserID(), revoked.RoleID(), roleName, revokedBy, s.clock.Now())
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logger.Error("failed to record revoke", "assignment_id", revoked.ID(), "error", err)
	}
	return revoked, nil
}

// ReactivateAssignment turns an assignment back on. The duplicate-grant
// guard applies as if the role were being assigned anew.
func (s *AssignmentService) ReactivateAssignment(ctx context.Context, id shared.ID) (assignment.Assignment, error) {
	current, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return assignment.Assignment{}, err
	}
	if current.IsActive() {
		return current, nil
	}

	active, err := s.assignments.FindActiveByUserID(ctx, current.UserID())
	if err != nil {
		return assignment.Assignment{}, fmt.Errorf("check existing grants: %w", err)
	}
	for _, a := range active {
		if a.RoleID().Equal(current.RoleID()) {
			return assignment.Assignment{}, assignment.ErrDuplicateGrant
		}
	}

	activated := s.ledger.Activate(current)
	if err := s.assignments.Update(ctx, activated); err != nil {
		return assignment.Assignment{}, err
	}

	s.invalidate(ctx, activated.UserID())
	s.record(ctx, audit.EventRoleAssign, activated, s.roleName(ctx, activated.RoleID()))
	return activated, nil
}

// GetAssignment returns an assignment by ID.
func (s *AssignmentService) GetAssignment(ctx context.Context, id shared.ID) (assignment.Assignment, error) {
	return s.assignments.FindByID(ctx, id)
}

// ListUserAssignments returns every assignment of a user, active or not.
func (s *AssignmentService) ListUserAssignments(ctx context.Context, userID shared.ID) ([]assignment.Assignment, error) {
	return s.assignments.FindByUserID(ctx, userID)
}

// ListRoleAssignments returns every assignment of a role.
func (s *AssignmentService) ListRoleAssignments(ctx context.Context, roleID shared.ID) ([]assignment.Assignment, error) {
	return s.assignments.FindByRoleID(ctx, roleID)
}

// UpdateExpiration replaces the expiration of an assignment; nil clears it.
func (s *AssignmentService) UpdateExpiration(ctx context.Context, id shared.ID, expiresAt *time.Time) (assignment.Assignment, error) {
	current, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return assignment.Assignment{}, err
	}

	updated := s.ledger.UpdateExpiration(current, expiresAt)
	if res := assignment.Validate(updated); !res.Valid() {
		return assignment.Assignment{}, fmt.Errorf("%w: %s", shared.ErrValidation, res.String())
	}
	if err := s.assignments.Update(ctx, updated); err != nil {
		return assignment.Assignment{}, err
	}

	s.invalidate(ctx, updated.UserID())
	return updated, nil
}

// UpdateMetadata shallow-merges a patch into the assignment metadata.
func (s *AssignmentService) UpdateMetadata(ctx context.Context, id shared.ID, patch map[string]any) (assignment.Assignment, error) {
	current, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return assignment.Assignment{}, err
	}

	updated := s.ledger.UpdateMetadata(current, patch)
	if err := s.assignments.Update(ctx, updated); err != nil {
		return assignment.Assignment{}, err
	}
	return updated, nil
}

// DeleteAssignment removes an assignment record entirely. Prefer RevokeRole;
// deletion erases history.
func (s *AssignmentService) DeleteAssignment(ctx context.Context, id shared.ID) error {
	current, err := s.assignments.FindByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.assignments.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidate(ctx, current.UserID())
	return nil
}

// SweepExpired deactivates every active assignment whose expiration lies
// strictly before now and returns the number swept. Each sweep emits a
// role_revoke event marked as expired.
func (s *AssignmentService) SweepExpired(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.assignments.FindExpired(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("find expired assignments: %w", err)
	}

	swept := 0
	for _, a := range expired {
		deactivated := s.ledger.Deactivate(a)
		if err := s.assignments.Update(ctx, deactivated); err != nil {
			s.logger.Error("failed to deactivate expired assignment",
				"assignment_id", a.ID(), "error", err)
			continue
		}
		swept++
		metrics.AssignmentsRevokedTotal.WithLabelValues("expired").Inc()
		s.invalidate(ctx, a.UserID())

		event := audit.NewEvent(audit.EventRoleRevoke, a.UserID(), a.RoleID(), s.roleName(ctx, a.RoleID()), nil, now)
		event.Metadata["reason"] = "expired"
		if err := s.recorder.Record(ctx, event); err != nil {
			s.logger.Error("failed to record expiry revoke", "assignment_id", a.ID(), "error", err)
		}
	}
	return swept, nil
}

func (s *AssignmentService) record(ctx context.Context, t audit.EventType, a assignment.Assignment, roleName string) {
	event := audit.NewEvent(t, a.UserID(), a.RoleID(), roleName, a.AssignedBy(), s.clock.Now())
	if err := s.recorder.Record(ctx, event); err != nil {
		s.logger.Error("failed to record audit event",
			"event_type", t, "assignment_id", a.ID(), "error", err)
	}
}

func (s *AssignmentService) roleName(ctx context.Context, roleID shared.ID) string {
	r, err := s.roles.FindByID(ctx, roleID)
	if err != nil {
		return ""
	}
	return r.Name()
}

func (s *AssignmentService) invalidate(ctx context.Context, userID shared.ID) {
	if s.invalidator == nil {
		return
	}
	if err := s.invalidator.Invalidate(ctx, userID); err != nil {
		s.logger.Warn("failed to invalidate permission cache", "user_id", userID, "error", err)
	}
}
