package jobs

import (
	"context"
	"fmt"

	"github.com/hibiken/asynq"

	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/logger"
)

// ClientConfig contains the Redis connection settings for the job queue.
type ClientConfig struct {
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Client enqueues background jobs.
type Client struct {
	client *asynq.Client
	logger *logger.Logger
}

// NewClient creates a new job client.
func NewClient(cfg ClientConfig, log *logger.Logger) *Client {
	return &Client{
		client: asynq.NewClient(asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		}),
		logger: log.With("component", "job_client"),
	}
}

// Close closes the client connection.
func (c *Client) Close() error {
	return c.client.Close()
}

// EnqueueAuditRecord enqueues an audit event for asynchronous persistence.
func (c *Client) EnqueueAuditRecord(ctx context.Context, event audit.Event) error {
	task, err := NewAuditRecordTask(AuditRecordPayload{Event: event})
	if err != nil {
		return err
	}

	info, err := c.client.EnqueueContext(ctx, task)
	if err != nil {
		return fmt.Errorf("enqueue audit record: %w", err)
	}

	c.logger.Debug("audit event queued",
		"task_id", info.ID,
		"event_type", event.EventType,
		"user_id", event.UserID,
	)
	return nil
}

// EnqueueAssignmentSweep enqueues an immediate expired-assignment sweep.
func (c *Client) EnqueueAssignmentSweep(ctx context.Context) error {
	info, err := c.client.EnqueueContext(ctx, NewAssignmentSweepTask())
	if err != nil {
		return fmt.Errorf("enqueue assignment sweep: %w", err)
	}

	c.logger.Info("assignment sweep queued", "task_id", info.ID, "queue", info.Queue)
	return nil
}
