package jobs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron"
)

// Scheduler runs a job on a fixed interval. A run that is still going when
// the next one is due is not started twice.
type Scheduler struct {
	sched    *gocron.Scheduler
	interval time.Duration
	job      func(ctx context.Context) error
	cancel   context.CancelFunc
	logger   *slog.Logger
}

// NewScheduler creates a Scheduler for job. It panics if interval is not
// positive. If logger is nil, a default logger will be used.
func NewScheduler(interval time.Duration, job func(ctx context.Context) error, logger *slog.Logger) *Scheduler {
	if interval <= 0 {
		panic("interval must be positive")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		sched:    gocron.NewScheduler(time.UTC),
		interval: interval,
		job:      job,
		logger:   logger.With(slog.String("component", "scheduler")),
	}
}

// UpdateJob adapts an Updater to the Scheduler.
func UpdateJob(u *Updater) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		_, err := u.Run(ctx)
		return err
	}
}

// Start schedules the job, first run one interval from now. The context
// passed to every run is cancelled by Stop.
func (s *Scheduler) Start(ctx context.Context) error {
	ctx, s.cancel = context.WithCancel(ctx)

	_, err := s.sched.Every(s.interval).WaitForSchedule().SingletonMode().Do(func() {
		if err := s.job(ctx); err != nil {
			switch {
			case errors.Is(err, ErrUpdateRunning):
				s.logger.Debug("scheduled run skipped", slog.String("reason", err.Error()))
			case ctx.Err() != nil:
				s.logger.Info("scheduled run cancelled")
			default:
				s.logger.Error("scheduled run failed", slog.String("error", err.Error()))
			}
		}
	})
	if err != nil {
		s.cancel()
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	s.sched.StartAsync()
	s.logger.Info("scheduler started", slog.Duration("interval", s.interval))
	return nil
}

// Stop cancels a running job and stops scheduling new ones.
func (s *Scheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
	s.sched.Stop()
	s.logger.Info("scheduler stopped")
}
