package service

import (
	"context"
	"time"

	"github.com/Abdulsalam-Aderoju/Medisense-Backend/pkg/logger"
)

// LogPurger deletes raw workload samples older than a cutoff.
type LogPurger interface {
	PurgeLogsBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PurgeScheduler deletes stale raw workload logs at most once per
// interval. It runs in its own goroutine and never blocks user-facing
// requests; nothing in the forecaster depends on a purge having run.
type PurgeScheduler struct {
	purger   LogPurger
	interval time.Duration
	logger   *logger.Logger
	cancel   context.CancelFunc
}

// NewPurgeScheduler creates a PurgeScheduler.
func NewPurgeScheduler(purger LogPurger, interval time.Duration, log *logger.Logger) *PurgeScheduler {
	return &PurgeScheduler{
		purger:   purger,
		interval: interval,
		logger:   log.WithComponent("purge_scheduler"),
	}
}

// Start launches the scheduler in a background goroutine.
func (s *PurgeScheduler) Start(ctx context.Context) {
	ctx, s.cancel = context.WithCancel(ctx)

	go func() {
		s.logger.Info().Dur("interval", s.interval).Msg("workload log purge scheduler started")

		s.runPurge(ctx)

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				s.logger.Info().Msg("workload log purge scheduler stopped")
				return
			case <-ticker.C:
				s.runPurge(ctx)
			}
		}
	}()
}

// Stop stops the scheduler goroutine.
func (s *PurgeScheduler) Stop() {
	if s.cancel != nil {
		s.cancel()
	}
}

// runPurge deletes samples recorded before the start of the current day.
func (s *PurgeScheduler) runPurge(ctx context.Context) {
	cutoff := time.Now().UTC().Truncate(24 * time.Hour)

	deleted, err := s.purger.PurgeLogsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error().Err(err).Msg("workload log purge failed")
		return
	}

	s.logger.Info().
		Int64("deleted", deleted).
		Time("cutoff", cutoff).
		Msg("workload log purge completed")
}
