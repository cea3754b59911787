package scheduler

import (
	"context"
	"time"

	"countertop_quote_backend/platform/logger"
)

const (
	defaultHistoryCleanupInterval = time.Hour
	defaultHistoryRetention       = 90 * 24 * time.Hour
)

// HistoryPruner deletes estimate history older than a cutoff.
type HistoryPruner interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// HistoryCleanup periodically removes old estimate history rows.
type HistoryCleanup struct {
	repo      HistoryPruner
	log       *logger.Logger
	interval  time.Duration
	retention time.Duration
	now       func() time.Time
}

func NewHistoryCleanup(repo HistoryPruner, log *logger.Logger, interval, retention time.Duration) *HistoryCleanup {
	if interval <= 0 {
		interval = defaultHistoryCleanupInterval
	}
	if retention <= 0 {
		retention = defaultHistoryRetention
	}

	return &HistoryCleanup{
		repo:      repo,
		log:       log,
		interval:  interval,
		retention: retention,
		now:       time.Now,
	}
}

func (c *HistoryCleanup) Run(ctx context.Context) {
	if c == nil || c.repo == nil {
		return
	}

	c.cleanup(ctx)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			c.cleanup(ctx)
		}
	}
}

func (c *HistoryCleanup) cleanup(ctx context.Context) {
	deleted, err := c.repo.DeleteBefore(ctx, c.now().Add(-c.retention))
	if err != nil {
		c.log.Warn("estimate history cleanup failed", "error", err)
		return
	}

	if deleted > 0 {
		c.log.Info("estimate history cleanup deleted old rows", "deleted", deleted)
	}
}
