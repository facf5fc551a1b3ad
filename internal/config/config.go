package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/MrSnakeDoc/navkit/internal/logger"
)

type Config struct {
	ListenPort      string        // ex: ":8080"
	ShutdownTimeout time.Duration // ex: 5s
	RequestTimeout  time.Duration // per-request timeout

	LogLevel  string // "debug" | "info" | "warn" | "error"
	PrettyLog bool   // true => zap dev (color), false => zap prod (JSON)

	SiteFile       string        // path to the site.yaml declaration
	ContentDir     string        // content root for auto-structure sidebars (empty = expansion disabled)
	ReloadInterval time.Duration // interval to re-read site.yaml (0 = only on trigger/watch)
	Watch          bool          // reload when site.yaml changes on disk
	WatchDebounce  time.Duration // coalesce bursts of file events
	BcryptCost     int           // cost for hashing encrypt passwords at build time
	CacheTTL       time.Duration // TTL of expanded resolutions in Redis
	UsageInterval  time.Duration // how often resolution counters are flushed to Redis
	Metrics        bool          // expose /metrics

	// Encrypted page password checks, per client IP
	VerifyBurst     int
	VerifyPerMinute int

	// Redis (optional: empty address = in-memory only)
	RedisAddr             string        // ex: "localhost:6379"
	RedisUser             string        // optional
	RedisPassword         string        // optional
	RedisPasswordRequired bool          // true => require password, false => allow empty password
	RedisDB               int           // Redis DB number
	RedisDT               time.Duration // Redis dial timeout (ex: 5s)
	RedisRT               time.Duration // Redis read timeout (ex: 3s)
	RedisWT               time.Duration // Redis write timeout (ex: 3s)
	RedisMaxWait          time.Duration // max wait between retries (ex: 10s)
	RedisPingTimeout      time.Duration // timeout for each ping attempt (ex: 5s)
	RedisPoolSize         int           // Redis connection pool size
	RedisConnectTimeout   time.Duration // Total time to retry connecting (ex: 30s)
	RedisRetryInterval    time.Duration // Initial wait between retries (ex: 2s, grows exponentially)
	RedisWarnThreshold    int           // warn after this many attempts

	AllowedHosts []string // optional, restrict admin routes to specific Host headers
	AllowedCIDRS []string // optional, restrict admin routes to specific IPs (e.g. "1.2.3.4, 10.0.0.0/8")
	TrustProxy   bool     // true => trust X-Forwarded-For headers (e.g. cloudflared)
}

// Load reads the configuration from the environment. A .env file in the
// working directory (or the file named by NAVKIT_ENV_FILE) is loaded first;
// variables already set in the environment win.
func Load() *Config {
	loadDotEnv(getenv("NAVKIT_ENV_FILE", ".env"))

	cfg := &Config{
		// Server settings
		ListenPort:      getenv("NAVKIT_LISTEN_PORT", ":8080"),
		ShutdownTimeout: mustDuration("NAVKIT_SHUTDOWN_TIMEOUT", 5*time.Second),
		RequestTimeout:  mustDuration("NAVKIT_REQUEST_TIMEOUT", 5*time.Second),

		// Logging
		LogLevel:  getenv("NAVKIT_LOG_LEVEL", "info"),
		PrettyLog: mustBool("NAVKIT_PRETTY_LOG", false),

		// Site declaration
		SiteFile:       requireEnv("NAVKIT_SITE_FILE"),
		ContentDir:     getenv("NAVKIT_CONTENT_DIR", ""),
		ReloadInterval: mustDuration("NAVKIT_RELOAD_INTERVAL", time.Hour),
		Watch:          mustBool("NAVKIT_WATCH", true),
		WatchDebounce:  mustDuration("NAVKIT_WATCH_DEBOUNCE", 500*time.Millisecond),
		BcryptCost:     getenvInt("NAVKIT_BCRYPT_COST", 10),
		CacheTTL:       mustDuration("NAVKIT_CACHE_TTL", 24*time.Hour),
		UsageInterval:  mustDuration("NAVKIT_USAGE_FLUSH_INTERVAL", time.Minute),
		Metrics:        mustBool("NAVKIT_METRICS", true),

		VerifyBurst:     getenvInt("NAVKIT_VERIFY_BURST", 5),
		VerifyPerMinute: getenvInt("NAVKIT_VERIFY_PER_MINUTE", 10),

		// Redis settings
		RedisAddr:             getenv("NAVKIT_REDIS_ADDR", ""),
		RedisUser:             getenv("NAVKIT_REDIS_USERNAME", "default"),
		RedisPasswordRequired: mustBool("NAVKIT_REDIS_PASSWORD_REQUIRED", false),
		RedisPassword:         getenv("NAVKIT_REDIS_PASSWORD", ""),
		RedisDB:               getenvInt("NAVKIT_REDIS_DB", 0),
		RedisDT:               mustDuration("NAVKIT_REDIS_DIAL_TIMEOUT", 5*time.Second),
		RedisRT:               mustDuration("NAVKIT_REDIS_READ_TIMEOUT", 3*time.Second),
		RedisWT:               mustDuration("NAVKIT_REDIS_WRITE_TIMEOUT", 3*time.Second),
		RedisMaxWait:          mustDuration("NAVKIT_REDIS_MAX_WAIT", 10*time.Second),
		RedisPingTimeout:      mustDuration("NAVKIT_REDIS_PING_TIMEOUT", 5*time.Second),
		RedisPoolSize:         getenvInt("NAVKIT_REDIS_POOL_SIZE", 10),
		RedisConnectTimeout:   mustDuration("NAVKIT_REDIS_CONNECT_TIMEOUT", 30*time.Second),
		RedisRetryInterval:    mustDuration("NAVKIT_REDIS_RETRY_INTERVAL", 2*time.Second),
		RedisWarnThreshold:    getenvInt("NAVKIT_REDIS_WARN_THRESHOLD", 3),

		// Access restrictions
		AllowedHosts: splitAndTrim(getenv("NAVKIT_ALLOWED_HOSTS", "")),
		AllowedCIDRS: parseAllowedIPs(getenv("NAVKIT_ALLOWED_CIDRS", "")),
		TrustProxy:   mustBool("NAVKIT_TRUST_PROXY", false),
	}

	cfg.validate()

	// Log config only in debug mode with redacted sensitive fields
	if cfg.LogLevel == "debug" {
		log.Printf("[DEBUG] cfg: %+v\n", cfg.Redacted())
	}

	return cfg
}

// validate panics on settings that cannot work together.
func (c *Config) validate() {
	if !logger.ParseLevel(c.LogLevel) {
		panic(fmt.Sprintf("❌ FATAL: NAVKIT_LOG_LEVEL must be debug, info, warn or error, got %q", c.LogLevel))
	}
	if c.RedisAddr != "" && c.RedisPasswordRequired && c.RedisPassword == "" {
		panic("❌ FATAL: NAVKIT_REDIS_PASSWORD is required when NAVKIT_REDIS_PASSWORD_REQUIRED=true")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		panic(fmt.Sprintf("❌ FATAL: NAVKIT_BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost))
	}
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() Config {
	cp := *c
	if cp.RedisPassword != "" {
		cp.RedisPassword = "***REDACTED***"
	}
	if cp.RedisUser != "" {
		cp.RedisUser = "***REDACTED***"
	}
	return cp
}

// loadDotEnv loads path when it exists. A missing file is normal in
// containers, a malformed one is fatal.
func loadDotEnv(path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	if err := godotenv.Load(path); err != nil {
		panic(fmt.Sprintf("❌ FATAL: Invalid env file %s: %v", path, err))
	}
}

// helpers
func getenv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		panic(fmt.Sprintf("❌ FATAL: Required environment variable %s is not set", key))
	}
	return v
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func mustBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return def
}

func mustDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func parseAllowedIPs(allowed string) []string {
	if allowed == "" {
		return nil
	}
	ips := make([]string, 0, 4)
	for _, ip := range splitAndTrim(allowed) {
		if ip != "" {
			ips = append(ips, ip)
		}
	}
	return ips
}

func splitAndTrim(s string) []string {
	if s == "" {
		return nil
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, part := range raw {
		trimmed := strings.TrimSpace(part)
		// Remove surrounding quotes if present
		trimmed = strings.Trim(trimmed, `"'`)
		if trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	return parts
}
