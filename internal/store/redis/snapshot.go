package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	// DefaultSnapshotTTL keeps the last good source for a week
	DefaultSnapshotTTL = 7 * 24 * time.Hour
	// DefaultCacheTTL is the default TTL for cached resolutions (24 hours)
	DefaultCacheTTL = 24 * time.Hour
)

// Snapshot is the raw declaration of the last model that built cleanly.
// Raw bytes are kept rather than the model so password hashes are
// recomputed on restore and never leave the process.
type Snapshot struct {
	Source   string    `json:"source"`
	Checksum string    `json:"checksum"`
	Raw      []byte    `json:"raw"`
	SavedAt  time.Time `json:"saved_at"`
}

// Store handles Redis operations for snapshots, cache and usage
type Store struct {
	client *redis.Client
}

// NewStore creates a new Redis store
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

// SaveSnapshot stores the source of a freshly built model
func (s *Store) SaveSnapshot(ctx context.Context, snap Snapshot) error {
	if snap.SavedAt.IsZero() {
		snap.SavedAt = time.Now()
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot: %w", err)
	}

	if err := s.client.Set(ctx, KeySnapshot, data, DefaultSnapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot returns the stored snapshot, or nil when there is none
func (s *Store) LoadSnapshot(ctx context.Context) (*Snapshot, error) {
	data, err := s.client.Get(ctx, KeySnapshot).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot: %w", err)
	}

	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return &snap, nil
}
