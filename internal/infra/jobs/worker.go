package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"

	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/logger"
)

// AuditWriter persists audit events delivered through the queue.
type AuditWriter interface {
	Create(ctx context.Context, event audit.Event) error
}

// AssignmentSweeper deactivates assignments that lapsed before now.
type AssignmentSweeper interface {
	SweepExpired(ctx context.Context, now time.Time) (int, error)
}

// WorkerConfig holds the configuration for the job worker.
type WorkerConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Concurrency   int
}

// Worker processes background jobs.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	logger *logger.Logger
}

// NewWorker creates a worker wired to the audit sink and the sweeper.
func NewWorker(cfg WorkerConfig, auditWriter AuditWriter, sweeper AssignmentSweeper, log *logger.Logger) *Worker {
	server := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		},
		asynq.Config{
			Concurrency: cfg.Concurrency,
			Queues: map[string]int{
				QueueDefault:     5,
				QueueAudit:       3,
				QueueMaintenance: 2,
			},
		},
	)

	w := &Worker{
		server: server,
		mux:    asynq.NewServeMux(),
		logger: log.With("component", "job_worker"),
	}

	w.mux.HandleFunc(TypeAuditRecord, func(ctx context.Context, task *asynq.Task) error {
		var payload AuditRecordPayload
		if err := json.Unmarshal(task.Payload(), &payload); err != nil {
			return fmt.Errorf("unmarshal audit payload: %w", asynq.SkipRetry)
		}
		if err := auditWriter.Create(ctx, payload.Event); err != nil {
			return fmt.Errorf("persist audit event: %w", err)
		}
		return nil
	})

	w.mux.HandleFunc(TypeAssignmentSweep, func(ctx context.Context, _ *asynq.Task) error {
		n, err := sweeper.SweepExpired(ctx, time.Now().UTC())
		if err != nil {
			return fmt.Errorf("sweep expired assignments: %w", err)
		}
		if n > 0 {
			w.logger.Info("expired assignments deactivated", "count", n)
		}
		return nil
	})

	return w
}

// Start starts the worker.
func (w *Worker) Start() error {
	w.logger.Info("starting job worker")
	return w.server.Start(w.mux)
}

// Stop stops the worker gracefully.
func (w *Worker) Stop() {
	w.logger.Info("stopping job worker")
	w.server.Shutdown()
}

// Run runs the worker until the context is canceled. Cancellation is the
// normal shutdown path and returns nil.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Start(w.mux)
	}()

	select {
	case <-ctx.Done():
		w.Stop()
		return nil
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("worker error: %w", err)
		}
		return nil
	}
}
