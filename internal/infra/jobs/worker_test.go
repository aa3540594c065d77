package jobs

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/userdeskio/api/pkg/domain/audit"
	"github.com/userdeskio/api/pkg/logger"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: "error", Format: "text", Output: io.Discard})
}

type nopAuditWriter struct{}

func (nopAuditWriter) Create(context.Context, audit.Event) error { return nil }

type nopSweeper struct{}

func (nopSweeper) SweepExpired(context.Context, time.Time) (int, error) { return 0, nil }

func TestWorkerRunStopsCleanlyOnCancel(t *testing.T) {
	w := NewWorker(WorkerConfig{
		RedisAddr:   "127.0.0.1:1",
		Concurrency: 1,
	}, nopAuditWriter{}, nopSweeper{}, testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(10 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}
