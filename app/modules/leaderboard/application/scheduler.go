package leaderboardservice

import (
	"context"
	"errors"
	"log/slog"
	"time"

	leaderboarddomain "github.com/Black-And-White-Club/advent-bot/app/modules/leaderboard/domain"
)

// CycleRunner is the slice of Service the scheduler depends on.
type CycleRunner interface {
	RunCycle(ctx context.Context) (CycleResult, error)
}

// Scheduler drives the poll loop: one cycle immediately, then one per
// interval. Cycles never overlap; a slow cycle delays the next tick rather
// than stacking a second fetch behind it.
type Scheduler struct {
	runner   CycleRunner
	interval time.Duration
	logger   *slog.Logger
}

func NewScheduler(runner CycleRunner, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{runner: runner, interval: interval, logger: logger}
}

// Run blocks until the context is cancelled or a storage error halts the
// loop. Cancellation is observed only between cycles: a cycle that has
// started runs to completion so notifications and the snapshot save are
// never torn apart mid-flight.
func (s *Scheduler) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.runOnce(context.WithoutCancel(ctx)); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			s.logger.Info("Scheduler stopping", slog.Any("reason", ctx.Err()))
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) error {
	result, err := s.runner.RunCycle(ctx)
	if err == nil {
		return nil
	}

	var storageErr *leaderboarddomain.StorageError
	if errors.As(err, &storageErr) {
		// Notifications may already be out for state that was never
		// persisted. Continuing would re-announce them, so stop hard
		// and leave the rest to an operator.
		s.logger.Error("Snapshot persistence failed, halting scheduler",
			slog.String("cycle_id", result.CycleID),
			slog.Any("error", err),
		)
		return err
	}

	var fetchErr *leaderboarddomain.FetchError
	if errors.As(err, &fetchErr) {
		s.logger.Warn("Fetch failed, skipping cycle",
			slog.String("cycle_id", result.CycleID),
			slog.Any("error", err),
		)
		return nil
	}

	s.logger.Error("Cycle failed",
		slog.String("cycle_id", result.CycleID),
		slog.Any("error", err),
	)
	return nil
}
