package mw

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/navkit/internal/utils"
)

// RateLimitConfig sizes the per-client token buckets guarding password
// verification.
type RateLimitConfig struct {
	Burst             int // attempts a new client may make at once
	RefillPerIPPerMin int // attempts regained per minute
	MaxEntries        int // sweep early once this many clients are tracked
	SweepInterval     time.Duration
	IdleTTL           time.Duration // clients idle this long are forgotten
	TrustProxy        bool          // resolve the client IP from proxy headers
	Now               func() time.Time
}

type client struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

type limiter struct {
	cfg       RateLimitConfig
	refill    rate.Limit
	mu        sync.Mutex
	clients   map[string]*client
	lastSweep time.Time
}

func newLimiter(cfg RateLimitConfig) *limiter {
	if cfg.SweepInterval <= 0 {
		cfg.SweepInterval = time.Minute
	}
	if cfg.IdleTTL <= 0 {
		cfg.IdleTTL = 15 * time.Minute
	}
	cfg.Burst = max(cfg.Burst, 1)
	cfg.RefillPerIPPerMin = max(cfg.RefillPerIPPerMin, 1)
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &limiter{
		cfg:       cfg,
		refill:    rate.Limit(float64(cfg.RefillPerIPPerMin) / 60),
		clients:   make(map[string]*client),
		lastSweep: cfg.Now(),
	}
}

// take spends one attempt for key. A rejected attempt costs nothing and
// reports how long until the next one would pass.
func (l *limiter) take(key string, now time.Time) (ok bool, remaining int, retryAfter time.Duration) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.lastSweep) >= l.cfg.SweepInterval ||
		(l.cfg.MaxEntries > 0 && len(l.clients) >= l.cfg.MaxEntries) {
		l.sweep(now)
	}

	c := l.clients[key]
	if c == nil {
		c = &client{bucket: rate.NewLimiter(l.refill, l.cfg.Burst)}
		l.clients[key] = c
	}
	c.lastSeen = now

	r := c.bucket.ReserveN(now, 1)
	if delay := r.DelayFrom(now); delay > 0 {
		r.CancelAt(now)
		return false, 0, delay
	}
	return true, int(c.bucket.TokensAt(now)), 0
}

func (l *limiter) sweep(now time.Time) {
	for key, c := range l.clients {
		if now.Sub(c.lastSeen) > l.cfg.IdleTTL {
			delete(l.clients, key)
		}
	}
	l.lastSweep = now
}

// RateLimit gives every client IP Burst attempts, refilled at
// RefillPerIPPerMin per minute. Rejected requests get 429 with Retry-After.
func RateLimit(cfg RateLimitConfig) func(http.Handler) http.Handler {
	l := newLimiter(cfg)
	limit := strconv.Itoa(l.cfg.Burst)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := utils.ClientIP(r, l.cfg.TrustProxy)

			ok, remaining, retryAfter := l.take(key, l.cfg.Now())
			w.Header().Set("X-RateLimit-Limit", limit)
			if !ok {
				secs := max(int(math.Ceil(retryAfter.Seconds())), 1)
				w.Header().Set("Retry-After", strconv.Itoa(secs))
				w.Header().Set("X-RateLimit-Remaining", "0")
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(max(remaining, 0)))
			next.ServeHTTP(w, r)
		})
	}
}
