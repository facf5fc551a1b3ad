package scheduler

import (
	"context"
	"time"

	"github.com/MrSnakeDoc/navkit/internal/index"
	"github.com/MrSnakeDoc/navkit/internal/logger"
)

// DefaultUsageFlushInterval is how often resolution counters are pushed to Redis
const DefaultUsageFlushInterval = time.Minute

// UsageFlusher periodically moves per-prefix resolution counters from the
// index into Redis. Counters are restored in memory when Redis fails, so no
// hit is lost between attempts.
type UsageFlusher struct {
	store    SnapshotStore
	index    *index.ModelIndex
	logger   logger.Logger
	interval time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
}

// NewUsageFlusher creates a new usage flusher
func NewUsageFlusher(
	store SnapshotStore,
	idx *index.ModelIndex,
	log logger.Logger,
	interval time.Duration,
) *UsageFlusher {
	if interval <= 0 {
		interval = DefaultUsageFlushInterval
	}

	return &UsageFlusher{
		store:    store,
		index:    idx,
		logger:   log,
		interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the periodic flush process
func (uf *UsageFlusher) Start(ctx context.Context) {
	ticker := time.NewTicker(uf.interval)
	go func() {
		defer close(uf.doneCh)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				uf.Flush(ctx)
			case <-uf.stopCh:
				uf.finalFlush()
				return
			case <-ctx.Done():
				uf.finalFlush()
				return
			}
		}
	}()
}

// finalFlush uses a fresh context: the run context may already be done
func (uf *UsageFlusher) finalFlush() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	uf.Flush(ctx)
}

// Stop flushes pending counters and stops the flusher
func (uf *UsageFlusher) Stop() {
	close(uf.stopCh)
	<-uf.doneCh
}

// Flush pushes the accumulated counters and returns how many prefixes were written
func (uf *UsageFlusher) Flush(ctx context.Context) int {
	counts := uf.index.DrainCounters()
	if len(counts) == 0 {
		uf.logger.Debug("no usage to flush")
		return 0
	}

	if err := uf.store.IncrementUsage(ctx, counts); err != nil {
		uf.index.RestoreCounters(counts)
		uf.logger.Warn("failed to flush usage to redis",
			logger.Int("prefixes", len(counts)),
			logger.Error(err))
		return 0
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	uf.logger.Debug("usage flushed to redis",
		logger.Int("prefixes", len(counts)),
		logger.Int64("resolutions", total))
	return len(counts)
}
