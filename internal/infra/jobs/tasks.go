// Package jobs provides background task processing built on Asynq: the
// asynchronous audit trail and the periodic expired-assignment sweep.
package jobs

import (
	"encoding/json"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/userdeskio/api/pkg/domain/audit"
)

// Task type identifiers.
const (
	TypeAuditRecord     = "audit:record"
	TypeAssignmentSweep = "assignment:sweep_expired"
)

// Queue names.
const (
	QueueDefault     = "default"
	QueueAudit       = "audit"
	QueueMaintenance = "maintenance"
)

// AuditRecordPayload carries an access-change event to the worker.
type AuditRecordPayload struct {
	Event audit.Event `json:"event"`
}

// NewAuditRecordTask creates a task that persists an audit event.
func NewAuditRecordTask(payload AuditRecordPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal audit payload: %w", err)
	}
	return asynq.NewTask(TypeAuditRecord, data,
		asynq.Queue(QueueAudit),
		asynq.MaxRetry(5),
	), nil
}

// NewAssignmentSweepTask creates a task that deactivates lapsed assignments.
// The payload is empty; the sweep always works from the current time.
func NewAssignmentSweepTask() *asynq.Task {
	return asynq.NewTask(TypeAssignmentSweep, nil,
		asynq.Queue(QueueMaintenance),
		asynq.MaxRetry(2),
	)
}
