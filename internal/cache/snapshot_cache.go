// internal/cache/snapshot_cache.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"wallet-ledger/internal/config"
	"wallet-ledger/internal/domain"

	"github.com/redis/go-redis/v9"
)

// snapshotTTL bounds staleness of cached snapshots. A stale or missing cache
// entry only costs a database read; the event log stays authoritative.
const snapshotTTL = 15 * time.Minute

// RedisSnapshotCache caches the latest wallet snapshot per user in Redis.
// A disabled cache is a valid configuration: every Get misses and every Set
// is a no-op.
type RedisSnapshotCache struct {
	client  *redis.Client
	enabled bool
}

// NewRedisSnapshotCache creates a snapshot cache from config. When Redis is
// disabled in config, the returned cache is inert.
func NewRedisSnapshotCache(cfg config.RedisConfig) (*RedisSnapshotCache, error) {
	if !cfg.Enabled {
		return &RedisSnapshotCache{enabled: false}, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test the connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisSnapshotCache{
		client:  client,
		enabled: true,
	}, nil
}

func snapshotKey(userID int64) string {
	return fmt.Sprintf("wallet:snapshot:%d", userID)
}

// GetSnapshot returns the cached snapshot or (nil, nil) on a miss.
func (c *RedisSnapshotCache) GetSnapshot(ctx context.Context, userID int64) (*domain.WalletSnapshot, error) {
	if !c.enabled {
		return nil, nil
	}

	data, err := c.client.Get(ctx, snapshotKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get snapshot from Redis: %w", err)
	}

	var snapshot domain.WalletSnapshot
	if err := json.Unmarshal(data, &snapshot); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached snapshot: %w", err)
	}
	return &snapshot, nil
}

// SetSnapshot stores the snapshot with a TTL.
func (c *RedisSnapshotCache) SetSnapshot(ctx context.Context, snapshot *domain.WalletSnapshot) error {
	if !c.enabled {
		return nil
	}

	data, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal snapshot for caching: %w", err)
	}
	if err := c.client.Set(ctx, snapshotKey(snapshot.UserID), data, snapshotTTL).Err(); err != nil {
		return fmt.Errorf("failed to set snapshot in Redis: %w", err)
	}
	return nil
}

// Close releases the underlying Redis connection.
func (c *RedisSnapshotCache) Close() error {
	if !c.enabled || c.client == nil {
		return nil
	}
	return c.client.Close()
}
