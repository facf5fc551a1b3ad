package redis

import (
	"context"
	"fmt"
	"strconv"
)

// IncrementUsage adds resolution counts per sidebar prefix
func (s *Store) IncrementUsage(ctx context.Context, counts map[string]int64) error {
	if len(counts) == 0 {
		return nil
	}

	pipe := s.client.Pipeline()
	for prefix, n := range counts {
		pipe.HIncrBy(ctx, KeyUsage, usageField(prefix), n)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to increment usage: %w", err)
	}
	return nil
}

// GetUsageStats retrieves resolution counts per sidebar prefix.
// Paths without a sidebar are reported under the empty prefix.
func (s *Store) GetUsageStats(ctx context.Context) (map[string]int64, error) {
	raw, err := s.client.HGetAll(ctx, KeyUsage).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get usage: %w", err)
	}

	stats := make(map[string]int64, len(raw))
	for field, v := range raw {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid usage count for %s: %w", field, err)
		}
		if field == noPrefix {
			field = ""
		}
		stats[field] = n
	}
	return stats, nil
}
