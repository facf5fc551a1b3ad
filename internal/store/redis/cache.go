package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navkit/internal/domain"
)

// CacheResolution stores an expanded sidebar resolution under its matched
// prefix. Every path under the prefix expands to the same entries.
func (s *Store) CacheResolution(ctx context.Context, checksum string, res domain.Resolution, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal resolution: %w", err)
	}
	if err := s.client.Set(ctx, CacheKey(checksum, res.Prefix), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache resolution: %w", err)
	}
	return nil
}

// GetCachedResolution retrieves the cached resolution of a sidebar prefix.
// Path holds the request that filled the entry. A miss returns nil without error.
func (s *Store) GetCachedResolution(ctx context.Context, checksum, prefix string) (*domain.Resolution, error) {
	data, err := s.client.Get(ctx, CacheKey(checksum, prefix)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil // Cache miss
		}
		return nil, fmt.Errorf("failed to get cached resolution: %w", err)
	}

	var res domain.Resolution
	if err := json.Unmarshal(data, &res); err != nil {
		return nil, fmt.Errorf("failed to unmarshal resolution: %w", err)
	}
	return &res, nil
}

// FlushCache removes cached resolutions. With an empty checksum every
// model's entries go, otherwise only that model's.
func (s *Store) FlushCache(ctx context.Context, checksum string) (int, error) {
	deleted := 0
	iter := s.client.Scan(ctx, 0, CachePattern(checksum), 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return deleted, fmt.Errorf("failed to delete cache key: %w", err)
		}
		deleted++
	}
	if err := iter.Err(); err != nil {
		return deleted, fmt.Errorf("failed to flush cache: %w", err)
	}
	return deleted, nil
}
