package scheduler

import (
	"context"

	redisstore "github.com/MrSnakeDoc/navkit/internal/store/redis"
)

// SnapshotStore is the part of the Redis store the background jobs use.
// *redisstore.Store implements it; a nil SnapshotStore disables persistence.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snap redisstore.Snapshot) error
	LoadSnapshot(ctx context.Context) (*redisstore.Snapshot, error)
	FlushCache(ctx context.Context, checksum string) (int, error)
	IncrementUsage(ctx context.Context, counts map[string]int64) error
}
