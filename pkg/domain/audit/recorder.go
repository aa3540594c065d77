package audit

import (
	"context"

	"github.com/userdeskio/api/pkg/domain/shared"
)

// Recorder is the write-only sink for access-change events. Implementations
// decide delivery (database row, queue task, log line); callers fire and
// forget.
type Recorder interface {
	Record(ctx context.Context, event Event) error
}

// Repository persists audit events and serves the activity-log read side.
type Repository interface {
	Create(ctx context.Context, event Event) error
	FindByUserID(ctx context.Context, userID shared.ID, limit int) ([]Event, error)
	FindRecent(ctx context.Context, limit int) ([]Event, error)
}

// NopRecorder drops every event. Used when auditing is disabled.
type NopRecorder struct{}

// Record discards the event.
func (NopRecorder) Record(context.Context, Event) error { return nil }
