package usecase

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"TalentRadar/internal/domain"
	"TalentRadar/internal/ports"
)

// Scheduler wires the interval driver with the radar pipeline.
type Scheduler struct {
	driver     ports.Scheduler
	pipeline   *Pipeline
	runTimeout time.Duration
	logger     *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring radar runs.
func NewScheduler(driver ports.Scheduler, pipeline *Pipeline, runTimeout time.Duration, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Scheduler{driver: driver, pipeline: pipeline, runTimeout: runTimeout, logger: logger}
}

// Start registers the pipeline with the provided scheduler.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.pipeline == nil {
		return nil
	}

	job := func(trigger time.Time) {
		runCtx, cancel := ctx, context.CancelFunc(func() {})
		if s.runTimeout > 0 {
			runCtx, cancel = context.WithTimeout(ctx, s.runTimeout)
		}
		defer cancel()

		result, err := s.pipeline.Run(runCtx, RunRequest{})
		switch {
		case errors.Is(err, domain.ErrRunInProgress):
			s.logger.Info("scheduled run skipped", "trigger", trigger, "reason", err)
		case err != nil:
			s.logger.Error("scheduled run failed", "trigger", trigger, "error", err)
		default:
			s.logger.Info("scheduled run done", "trigger", trigger, "added", result.NewlyAdded, "registry", len(result.Records))
		}
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
