package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"

	"github.com/MrSnakeDoc/navkit/internal/config"
	"github.com/MrSnakeDoc/navkit/internal/httpserver"
	"github.com/MrSnakeDoc/navkit/internal/httpserver/deps"
	"github.com/MrSnakeDoc/navkit/internal/index"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/metrics"
	"github.com/MrSnakeDoc/navkit/internal/redis"
	"github.com/MrSnakeDoc/navkit/internal/scheduler"
	"github.com/MrSnakeDoc/navkit/internal/sources/site"
	redisstore "github.com/MrSnakeDoc/navkit/internal/store/redis"
	"github.com/MrSnakeDoc/navkit/internal/structure"
	"github.com/MrSnakeDoc/navkit/internal/version"
)

type App struct {
	cfg         *config.Config
	logger      logger.Logger
	server      *httpserver.Server
	redisClient *goredis.Client
	modelIndex  *index.ModelIndex
	reloader    *scheduler.SiteReloader
	flusher     *scheduler.UsageFlusher
	watcher     *scheduler.Watcher
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	// Redis is optional: without it the service runs from memory only
	var (
		redisClient *goredis.Client
		store       *redisstore.Store
		snapStore   scheduler.SnapshotStore
	)
	opts := redis.ConnectOptions{
		Addr:           cfg.RedisAddr,
		User:           cfg.RedisUser,
		Password:       cfg.RedisPassword,
		RedisDB:        cfg.RedisDB,
		DialTimeout:    cfg.RedisDT,
		ReadTimeout:    cfg.RedisRT,
		WriteTimeout:   cfg.RedisWT,
		PoolSize:       cfg.RedisPoolSize,
		ConnectTimeout: cfg.RedisConnectTimeout,
		RetryInterval:  cfg.RedisRetryInterval,
		MaxWait:        cfg.RedisMaxWait,
		PingTimeout:    cfg.RedisPingTimeout,
		WarnThreshold:  cfg.RedisWarnThreshold,
	}
	if opts.Enabled() {
		loggerClient.Infof("Connecting to Redis at %s", cfg.RedisAddr)
		client, err := redis.New(ctx, opts, loggerClient)
		if err != nil {
			loggerClient.Warn("redis unavailable, running without snapshot and cache",
				logger.Error(err))
		} else {
			redisClient = client
			store = redisstore.NewStore(client)
			snapStore = store
			loggerClient.Info("Redis initialized successfully")
		}
	} else {
		loggerClient.Info("redis not configured, running from memory only")
	}

	var (
		rec            metrics.Recorder = metrics.NoopRecorder{}
		metricsHandler http.Handler
	)
	if cfg.Metrics {
		prom := metrics.NewPrometheusRecorder(nil)
		rec, metricsHandler = prom, prom.Handler()
	}

	modelIndex := index.NewModelIndex()
	mapper := site.NewMapper(cfg.BcryptCost)

	// Restore the last good model; the first reload still has to succeed
	if snapStore != nil {
		syncer := scheduler.NewRedisSyncer(snapStore, mapper, modelIndex, loggerClient, rec)
		if err := syncer.Sync(ctx); err != nil {
			loggerClient.Warn("failed to restore snapshot from redis, will load from site file",
				logger.Error(err))
		}
	}

	reloadTrigger := make(chan struct{}, 1)
	reloader := scheduler.NewSiteReloader(
		site.NewLoader(afero.NewOsFs(), cfg.SiteFile),
		mapper,
		snapStore,
		modelIndex,
		loggerClient,
		rec,
		cfg.ReloadInterval,
		reloadTrigger,
	)

	var flusher *scheduler.UsageFlusher
	if snapStore != nil {
		flusher = scheduler.NewUsageFlusher(snapStore, modelIndex, loggerClient, cfg.UsageInterval)
	}

	var watcher *scheduler.Watcher
	if cfg.Watch {
		onSite := func(context.Context) error {
			select {
			case reloadTrigger <- struct{}{}:
			default:
			}
			return nil
		}
		var onContent scheduler.ChangeFunc
		if snapStore != nil && cfg.ContentDir != "" {
			onContent = func(ctx context.Context) error {
				n, err := snapStore.FlushCache(ctx, modelIndex.Checksum())
				if err != nil {
					return fmt.Errorf("failed to flush resolution cache: %w", err)
				}
				loggerClient.Info("content changed, resolution cache flushed", logger.Int("keys", n))
				return nil
			}
		}
		w, err := scheduler.NewWatcher(cfg.SiteFile, cfg.ContentDir, cfg.WatchDebounce, loggerClient, onSite, onContent)
		if err != nil {
			loggerClient.Warn("file watcher disabled", logger.Error(err))
		} else {
			watcher = w
		}
	}

	var expander deps.Expander
	if cfg.ContentDir != "" {
		expander = structure.NewExpander(afero.NewOsFs(), cfg.ContentDir)
	}

	d := deps.Deps{
		Logger:         loggerClient,
		StartTime:      time.Now(),
		Version:        version.Version,
		Commit:         version.Commit,
		BuildDate:      version.BuildDate,
		GoVersion:      version.GoVersion,
		TimeNow:        time.Now,
		AllowedHosts:   cfg.AllowedHosts,
		AllowedCIDRS:   cfg.AllowedCIDRS,
		TrustProxy:     cfg.TrustProxy,
		SiteFile:       cfg.SiteFile,
		ContentDir:     cfg.ContentDir,
		RedisClient:    redisClient,
		CacheTTL:       cfg.CacheTTL,
		Index:          modelIndex,
		Expander:       expander,
		Metrics:        rec,
		MetricsHandler: metricsHandler,
		ReloadTrigger:  reloadTrigger,
		LastReloadErr:  reloader.LastError,
		WatchEnabled:   watcher != nil,
		VerifyBurst:    cfg.VerifyBurst,
		VerifyPerMin:   cfg.VerifyPerMinute,
	}
	// a nil *Store inside the interface would not compare equal to nil
	if store != nil {
		d.Cache, d.Usage = store, store
	}

	loggerClient.Debug("admin routes guarded",
		logger.Strings("hosts", cfg.AllowedHosts),
		logger.Strings("cidrs", cfg.AllowedCIDRS))

	return &App{
		cfg:         cfg,
		logger:      loggerClient,
		server:      httpserver.New(cfg, loggerClient, d),
		redisClient: redisClient,
		modelIndex:  modelIndex,
		reloader:    reloader,
		flusher:     flusher,
		watcher:     watcher,
	}, nil
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting navkit v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("navkit %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Loads site.yaml and starts periodic refresh
	if err := a.reloader.Start(ctx); err != nil {
		return fmt.Errorf("failed to start site reloader: %w", err)
	}
	a.logger.Info("site reloader started",
		logger.Duration("interval", a.cfg.ReloadInterval))

	if a.flusher != nil {
		a.flusher.Start(ctx)
		a.logger.Info("usage flusher started",
			logger.Duration("interval", a.cfg.UsageInterval))
	}

	if a.watcher != nil {
		if err := a.watcher.Start(ctx); err != nil {
			a.logger.Warn("failed to start file watcher", logger.Error(err))
		}
	}

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	if a.watcher != nil {
		if err := a.watcher.Stop(); err != nil {
			a.logger.Warnf("failed to stop watcher: %v", err)
		}
	}
	a.reloader.Stop()

	// Flushes the remaining counters, so Redis must still be open
	if a.flusher != nil {
		a.flusher.Stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	if a.redisClient != nil {
		if err := a.redisClient.Close(); err != nil {
			a.logger.Warnf("failed to close redis: %v", err)
		} else {
			a.logger.Info("✅ Redis closed cleanly")
		}
	}

	a.logger.Info("✅ navkit stopped cleanly")
	return nil
}
