// Package app wires domain logic to storage, caching and the job queue. Each
// service owns one aggregate and exposes the operations the HTTP and CLI
// layers call.
package app

import (
	"context"

	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/domain/shared"
	"github.com/userdeskio/api/pkg/logger"
)

// AuditEnqueuer ships an audit event to the job queue for asynchronous
// persistence. Satisfied by jobs.Client.
type AuditEnqueuer interface {
	EnqueueAuditRecord(ctx context.Context, event audit.Event) error
}

// AuditService handles the access-change activity log. It implements
// audit.Recorder; mutating services fire events through it and never block
// on the outcome.
type AuditService struct {
	repo     audit.Repository
	enqueuer AuditEnqueuer
	logger   *logger.Logger
}

// AuditServiceOption is a functional option for AuditService.
type AuditServiceOption func(*AuditService)

// WithAuditEnqueuer routes events through the job queue instead of writing
// them inline. The synchronous path remains the fallback.
func WithAuditEnqueuer(enqueuer AuditEnqueuer) AuditServiceOption {
	return func(s *AuditService) {
		s.enqueuer = enqueuer
	}
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo audit.Repository, log *logger.Logger, opts ...AuditServiceOption) *AuditService {
	s := &AuditService{
		repo:   repo,
		logger: log.With("service", "audit"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Record delivers an event to the activity log. With an enqueuer configured
// the event goes through the queue; enqueue failures fall back to a direct
// write so events are not lost when Redis is down.
func (s *AuditService) Record(ctx context.Context, event audit.Event) error {
	if s.enqueuer != nil {
		err := s.enqueuer.EnqueueAuditRecord(ctx, event)
		if err == nil {
			return nil
		}
		s.logger.Warn("audit enqueue failed, writing inline",
			"event_type", event.EventType, "error", err)
	}

	if err := s.repo.Create(ctx, event); err != nil {
		s.logger.Error("failed to persist audit event",
			"event_type", event.EventType,
			"user_id", event.UserID,
			"role_id", event.RoleID,
			"error", err,
		)
		return err
	}
	return nil
}

// UserActivity returns the newest events affecting a user.
func (s *AuditService) UserActivity(ctx context.Context, userID shared.ID, limit int) ([]audit.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.FindByUserID(ctx, userID, limit)
}

// RecentActivity returns the newest events across all users.
func (s *AuditService) RecentActivity(ctx context.Context, limit int) ([]audit.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 50
	}
	return s.repo.FindRecent(ctx, limit)
}
