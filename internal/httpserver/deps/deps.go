package deps

import (
	"context"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navkit/internal/domain"
	"github.com/MrSnakeDoc/navkit/internal/index"
	"github.com/MrSnakeDoc/navkit/internal/logger"
	"github.com/MrSnakeDoc/navkit/internal/metrics"
)

// ResolutionCache stores expanded sidebar resolutions per model checksum and
// matched prefix. *redisstore.Store implements it.
type ResolutionCache interface {
	GetCachedResolution(ctx context.Context, checksum, prefix string) (*domain.Resolution, error)
	CacheResolution(ctx context.Context, checksum string, res domain.Resolution, ttl time.Duration) error
}

// UsageStats reads the resolution counters flushed to Redis.
type UsageStats interface {
	GetUsageStats(ctx context.Context) (map[string]int64, error)
}

// Expander lists the pages below a prefix for auto-structure sidebars.
type Expander interface {
	Expand(prefix string) ([]domain.NavEntry, error)
}

type Deps struct {
	Logger         logger.Logger
	StartTime      time.Time
	Version        string
	Commit         string
	BuildDate      string
	GoVersion      string
	TimeNow        func() time.Time  // for testing, defaults to time.Now
	AllowedHosts   []string          // Host headers allowed on admin routes
	AllowedCIDRS   []string          // IPs allowed on admin routes (readyz, infra, reload, metrics)
	TrustProxy     bool              // true if running behind a trusted reverse proxy (e.g., cloudflared)
	SiteFile       string            // Path to the site declaration
	ContentDir     string            // Content root for auto-structure sidebars
	RedisClient    *redis.Client     // Redis client connection (nil when disabled)
	Cache          ResolutionCache   // nil when Redis is disabled
	CacheTTL       time.Duration     // TTL of cached resolutions
	Usage          UsageStats        // nil when Redis is disabled
	Index          *index.ModelIndex // Served site model
	Expander       Expander          // nil when no content dir is configured
	Metrics        metrics.Recorder  // never nil, NoopRecorder by default
	MetricsHandler http.Handler      // nil disables /metrics
	ReloadTrigger  chan struct{}     // Channel to trigger manual site reload
	LastReloadErr  func() error      // error of the most recent reload, may be nil
	WatchEnabled   bool              // site.yaml is watched for changes
	VerifyBurst    int               // encrypt verify rate limit burst per IP
	VerifyPerMin   int               // encrypt verify refill per IP per minute
}
