package worker

import (
	"context"
	"log/slog"
	"time"

	"github.com/yourorg/itemvault/internal/domain"
	"github.com/yourorg/itemvault/internal/observability/metrics"
)

// Purger removes expired cache entries; nil when the cache backend expires
// keys on its own (Redis).
type Purger interface {
	Purge() int
}

// StatsWorker periodically refreshes the item count gauge and purges the
// in-memory cache when one is in use.
type StatsWorker struct {
	itemRepo domain.ItemRepository
	cache    Purger
	logger   *slog.Logger
	interval time.Duration
}

// NewStatsWorker creates a new stats worker
func NewStatsWorker(itemRepo domain.ItemRepository, cache Purger, logger *slog.Logger, interval time.Duration) *StatsWorker {
	if logger == nil {
		logger = slog.Default()
	}

	return &StatsWorker{
		itemRepo: itemRepo,
		cache:    cache,
		logger:   logger,
		interval: interval,
	}
}

// Start runs the worker loop until the context is cancelled
func (w *StatsWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("stats worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("stats worker stopped")
			return
		case <-ticker.C:
			w.tick(ctx)
		}
	}
}

func (w *StatsWorker) tick(ctx context.Context) {
	tickCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	count, err := w.itemRepo.CountAll(tickCtx)
	if err != nil {
		w.logger.Warn("failed to count items", slog.String("error", err.Error()))
	} else {
		metrics.SetTotalItems(count)
	}

	if w.cache != nil {
		if removed := w.cache.Purge(); removed > 0 {
			w.logger.Debug("purged expired cache entries", slog.Int("removed", removed))
		}
	}
}
