// Package retention prunes aged activity records on a cron schedule.
package retention

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hooklinehq/hookline/pkg/persistence"
)

const sweepTimeout = 5 * time.Minute

// Sweeper deletes activity records older than maxAge on each tick.
type Sweeper struct {
	cron        *cron.Cron
	persistence persistence.Persistence
	maxAge      time.Duration
	logger      *slog.Logger
}

// NewSweeper validates the cron schedule and registers the sweep job.
func NewSweeper(p persistence.Persistence, schedule string, maxAge time.Duration, logger *slog.Logger) (*Sweeper, error) {
	sweeper := &Sweeper{
		cron:        cron.New(),
		persistence: p,
		maxAge:      maxAge,
		logger:      logger.With("module", "retention_sweeper"),
	}

	_, err := sweeper.cron.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
		defer cancel()

		if err := sweeper.Sweep(ctx); err != nil {
			sweeper.logger.Error("Retention sweep failed", "error", err)
		}
	})
	if err != nil {
		return nil, err
	}

	return sweeper, nil
}

// Start begins the cron scheduler.
func (s *Sweeper) Start() {
	s.logger.Info("Starting retention sweeper", "max_age", s.maxAge)
	s.cron.Start()
}

// Stop halts the scheduler and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	stopCtx := s.cron.Stop()
	<-stopCtx.Done()
	s.logger.Info("Retention sweeper stopped")
}

// Sweep removes activity records received before now - maxAge.
func (s *Sweeper) Sweep(ctx context.Context) error {
	cutoff := time.Now().UTC().Add(-s.maxAge)

	removed, err := s.persistence.DeleteActivitiesBefore(ctx, cutoff)
	if err != nil {
		return err
	}

	s.logger.Info("Retention sweep completed", "cutoff", cutoff, "removed", removed)

	return nil
}
