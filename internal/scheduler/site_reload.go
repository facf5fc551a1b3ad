package scheduler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/index"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/metrics"
	"github.com/MrSnakeDoc/navkit/internal/sources/site"
	redisstore "github.com/MrSnakeDoc/navkit/internal/store/redis"
)

// SiteReloader rebuilds the site model from its declaration file
type SiteReloader struct {
	loader        *site.Loader
	mapper        *site.Mapper
	store         SnapshotStore
	index         *index.ModelIndex
	logger        logger.Logger
	metrics       metrics.Recorder
	interval      time.Duration
	stopCh        chan struct{}
	stopOnce      sync.Once
	manualTrigger chan struct{}

	mu      sync.Mutex // one reload at a time
	lastErr error
}

// NewSiteReloader creates a new site reloader. store may be nil.
func NewSiteReloader(
	loader *site.Loader,
	mapper *site.Mapper,
	store SnapshotStore,
	idx *index.ModelIndex,
	log logger.Logger,
	rec metrics.Recorder,
	interval time.Duration,
	manualTrigger chan struct{},
) *SiteReloader {
	if rec == nil {
		rec = metrics.NoopRecorder{}
	}
	return &SiteReloader{
		loader:        loader,
		mapper:        mapper,
		store:         store,
		index:         idx,
		logger:        log,
		metrics:       rec,
		interval:      interval,
		stopCh:        make(chan struct{}),
		manualTrigger: manualTrigger,
	}
}

// Start loads the model and begins the periodic reload process.
// A failed initial load is fatal, even when a snapshot model was restored:
// the declaration on disk must build before the server starts.
func (sr *SiteReloader) Start(ctx context.Context) error {
	if err := sr.Reload(ctx); err != nil {
		return fmt.Errorf("initial reload failed: %w", err)
	}

	go func() {
		// interval <= 0 leaves tick nil: reloads only on trigger
		var tick <-chan time.Time
		if sr.interval > 0 {
			ticker := time.NewTicker(sr.interval)
			defer ticker.Stop()
			tick = ticker.C
		}

		for {
			select {
			case <-tick:
				sr.reloadAndLog(ctx)
			case <-sr.manualTrigger:
				sr.logger.Info("manual reload triggered")
				sr.reloadAndLog(ctx)
			case <-sr.stopCh:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

// Stop stops the reloader
func (sr *SiteReloader) Stop() {
	sr.stopOnce.Do(func() { close(sr.stopCh) })
}

// LastError returns the error of the most recent reload, nil when it succeeded
func (sr *SiteReloader) LastError() error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	return sr.lastErr
}

func (sr *SiteReloader) reloadAndLog(ctx context.Context) {
	if err := sr.Reload(ctx); err != nil {
		sr.logger.Error("failed to reload site, keeping previous model",
			logger.Error(err))
	}
}

// Reload builds a new model from the declaration and swaps it in.
// On any error the served model is left untouched.
func (sr *SiteReloader) Reload(ctx context.Context) error {
	sr.mu.Lock()
	defer sr.mu.Unlock()

	start := time.Now()
	err := sr.reload(ctx)
	sr.lastErr = err

	outcome := metrics.ReloadSuccess
	switch {
	case errors.Is(err, errUnchanged):
		outcome, err, sr.lastErr = metrics.ReloadUnchanged, nil, nil
	case err != nil:
		outcome = metrics.ReloadFailed
	}
	sr.metrics.ObserveReload(outcome, time.Since(start))
	return err
}

var errUnchanged = errors.New("site declaration unchanged")

func (sr *SiteReloader) reload(ctx context.Context) error {
	doc, err := sr.loader.Load()
	if err != nil {
		return fmt.Errorf("failed to load site: %w", err)
	}

	previous := sr.index.Checksum()
	if doc.Checksum == previous {
		sr.logger.Debug("site declaration unchanged",
			logger.String("checksum", doc.Checksum))
		return errUnchanged
	}

	model, err := sr.mapper.MapSite(doc, sr.loader.Path())
	if err != nil {
		logConfigErrors(sr.logger, err)
		return fmt.Errorf("failed to build site model: %w", err)
	}

	generation := sr.index.Swap(model)
	sr.metrics.SetModelSize(len(model.Navbar), model.Sidebar.Len(), len(model.Encryption.Rules()))
	sr.logger.Info("site model loaded",
		logger.String("source", model.Source),
		logger.String("checksum", model.Checksum),
		logger.Uint64("generation", generation),
		logger.Int("navbar", len(model.Navbar)),
		logger.Int("sidebar_rules", model.Sidebar.Len()))

	// Redis is best effort, the index is the source of truth
	if sr.store != nil {
		sr.persist(ctx, doc, previous)
	}
	return nil
}

func (sr *SiteReloader) persist(ctx context.Context, doc *site.Document, previous string) {
	snap := redisstore.Snapshot{
		Source:   sr.loader.Path(),
		Checksum: doc.Checksum,
		Raw:      doc.Raw,
	}
	if err := sr.store.SaveSnapshot(ctx, snap); err != nil {
		sr.logger.Warn("failed to save snapshot to redis",
			logger.Error(err))
	}

	if previous == "" {
		return
	}
	n, err := sr.store.FlushCache(ctx, previous)
	if err != nil {
		sr.logger.Warn("failed to flush stale resolutions",
			logger.Error(err))
		return
	}
	sr.logger.Debug("flushed stale resolutions", logger.Int("count", n))
}

// logConfigErrors logs each configuration error on its own line so the
// offending entry and line are easy to find.
func logConfigErrors(log logger.Logger, err error) {
	var errs domain.ConfigErrors
	if !errors.As(err, &errs) {
		return
	}
	for _, e := range errs {
		log.Error("invalid site declaration",
			logger.String("path", e.Path),
			logger.Int("line", e.Line),
			logger.String("message", e.Message),
			logger.String("value", e.Value))
	}
}
