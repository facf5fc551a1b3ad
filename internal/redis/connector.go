package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navkit/internal/logger"
)

// ConnectOptions configures the optional Redis backing the snapshot store,
// the resolution cache and the usage counters.
type ConnectOptions struct {
	Addr         string // empty disables Redis
	User         string
	Password     string
	RedisDB      int
	DialTimeout  time.Duration
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	PoolSize     int

	ConnectTimeout time.Duration // budget for every attempt together
	RetryInterval  time.Duration // first pause between attempts, doubled each time
	MaxWait        time.Duration // cap on the pause
	PingTimeout    time.Duration // per attempt
	WarnThreshold  int           // failed attempts logged as warnings before they turn into errors
}

// Enabled reports whether a Redis address is configured. Without one the
// server runs on the in-memory model only.
func (o ConnectOptions) Enabled() bool {
	return o.Addr != ""
}

// Validate reports every unusable setting at once.
func (o ConnectOptions) Validate() error {
	var errs []error
	if !o.Enabled() {
		errs = append(errs, errors.New("redis address is empty"))
	}
	for name, d := range map[string]time.Duration{
		"ConnectTimeout": o.ConnectTimeout,
		"RetryInterval":  o.RetryInterval,
		"MaxWait":        o.MaxWait,
		"PingTimeout":    o.PingTimeout,
	} {
		if d <= 0 {
			errs = append(errs, fmt.Errorf("%s must be > 0, got %v", name, d))
		}
	}
	if o.WarnThreshold < 0 {
		errs = append(errs, fmt.Errorf("WarnThreshold must be >= 0, got %d", o.WarnThreshold))
	}
	return errors.Join(errs...)
}

func (o ConnectOptions) clientOptions() *redis.Options {
	return &redis.Options{
		Addr:         o.Addr,
		Username:     o.User,
		Password:     o.Password,
		DB:           o.RedisDB,
		DialTimeout:  o.DialTimeout,
		ReadTimeout:  o.ReadTimeout,
		WriteTimeout: o.WriteTimeout,
		PoolSize:     o.PoolSize,
	}
}

// backoff doubles the pause between attempts up to max.
type backoff struct {
	next, max time.Duration
}

func (b *backoff) wait() time.Duration {
	d := b.next
	b.next = min(b.next*2, b.max)
	return d
}

// New connects to Redis, pinging until it answers, ConnectTimeout elapses or
// ctx is cancelled. The caller decides what a failure means; navkit keeps
// running from memory.
func New(ctx context.Context, opts ConnectOptions, log logger.Logger) (*redis.Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid redis options: %w", err)
	}
	log = log.Named("redis").With(logger.String("addr", opts.Addr))

	client := redis.NewClient(opts.clientOptions())
	if err := ping(ctx, client, opts, log); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func ping(parent context.Context, client *redis.Client, opts ConnectOptions, log logger.Logger) error {
	ctx, cancel := context.WithTimeout(parent, opts.ConnectTimeout)
	defer cancel()

	log.Info("connecting", logger.Duration("timeout", opts.ConnectTimeout))
	start := time.Now()
	b := backoff{next: opts.RetryInterval, max: opts.MaxWait}

	for attempt := 1; ; attempt++ {
		pingCtx, pingCancel := context.WithTimeout(ctx, opts.PingTimeout)
		err := client.Ping(pingCtx).Err()
		pingCancel()

		if err == nil {
			log.Info("connected",
				logger.Int("attempts", attempt),
				logger.Duration("elapsed", time.Since(start)))
			return nil
		}

		pause := b.wait()
		fields := []logger.Field{
			logger.Int("attempt", attempt),
			logger.Duration("next_retry_in", pause),
			logger.Error(err),
		}
		if attempt <= opts.WarnThreshold {
			log.Warn("ping failed, retrying", fields...)
		} else {
			log.Error("ping still failing, retrying", fields...)
		}

		timer := time.NewTimer(pause)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("redis unavailable at %s after %d attempts: %w", opts.Addr, attempt, err)
		case <-timer.C:
		}
	}
}
