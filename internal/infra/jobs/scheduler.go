package jobs

import (
	"context"
	"fmt"

	"github.com/robfig/cron/v3"

	"github.com/userdeskio/api/pkg/logger"
)

// Scheduler enqueues the periodic expired-assignment sweep on a cron
// schedule. Enqueueing rather than sweeping inline keeps the work on the
// worker pool and survives scheduler restarts mid-sweep.
type Scheduler struct {
	cron   *cron.Cron
	client *Client
	logger *logger.Logger
}

// NewScheduler creates a scheduler with the given cron expression for the
// assignment sweep.
func NewScheduler(client *Client, sweepSchedule string, log *logger.Logger) (*Scheduler, error) {
	s := &Scheduler{
		cron:   cron.New(),
		client: client,
		logger: log.With("component", "job_scheduler"),
	}

	_, err := s.cron.AddFunc(sweepSchedule, func() {
		if err := s.client.EnqueueAssignmentSweep(context.Background()); err != nil {
			s.logger.Error("failed to enqueue assignment sweep", "error", err)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweep schedule %q: %w", sweepSchedule, err)
	}

	return s, nil
}

// Start begins dispatching scheduled jobs.
func (s *Scheduler) Start() {
	s.logger.Info("starting job scheduler")
	s.cron.Start()
}

// Stop stops the scheduler and waits for in-flight dispatches.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping job scheduler")
	<-s.cron.Stop().Done()
}
