package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/navkit/internal/index"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/metrics"
	"github.com/MrSnakeDoc/navkit/internal/sources/site"
)

// RedisSyncer restores the last good model from Redis on startup. When the
// declaration on disk still has the same checksum the first reload keeps the
// restored model instead of hashing every password again; when it changed,
// the reload replaces it and flushes the resolutions cached under the old one.
// It never replaces the first reload: a broken declaration still stops startup.
type RedisSyncer struct {
	store   SnapshotStore
	mapper  *site.Mapper
	index   *index.ModelIndex
	logger  logger.Logger
	metrics metrics.Recorder
}

// NewRedisSyncer creates a new Redis syncer
func NewRedisSyncer(
	store SnapshotStore,
	mapper *site.Mapper,
	idx *index.ModelIndex,
	log logger.Logger,
	rec metrics.Recorder,
) *RedisSyncer {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &RedisSyncer{
		store:   store,
		mapper:  mapper,
		index:   idx,
		logger:  log,
		metrics: rec,
	}
}

// Sync loads the snapshot from Redis and swaps it into the index
func (rs *RedisSyncer) Sync(ctx context.Context) error {
	rs.logger.Info("restoring site model from redis snapshot")
	start := time.Now()

	snap, err := rs.store.LoadSnapshot(ctx)
	if err != nil {
		return err
	}
	if snap == nil {
		rs.logger.Info("no snapshot found in redis")
		return nil
	}

	doc, err := site.Parse(snap.Raw)
	if err != nil {
		return fmt.Errorf("failed to parse snapshot: %w", err)
	}
	model, err := rs.mapper.MapSite(doc, snap.Source)
	if err != nil {
		logConfigErrors(rs.logger, err)
		return fmt.Errorf("failed to build snapshot model: %w", err)
	}

	rs.index.Swap(model)
	rs.metrics.ObserveReload(metrics.ReloadSnapshot, time.Since(start))
	rs.logger.Info("restored site model from redis",
		logger.String("checksum", model.Checksum),
		logger.String("saved_at", snap.SavedAt.Format(time.RFC3339)))

	return nil
}
