package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/nickhellmer/vibedrop/internal/domain"
	"github.com/nickhellmer/vibedrop/internal/metrics"
)

const (
	leaderboardCachePrefix = "leaderboard:"
	leaderboardCacheTTL    = 5 * time.Minute
)

// LeaderboardCache provides read-through leaderboard caching: Redis → PostgreSQL.
// Entries are invalidated after every scoring run, so the TTL is only a
// backstop against missed invalidations.
type LeaderboardCache struct {
	rdb       goredis.Cmdable
	snapshots domain.SnapshotRepository
}

// NewLeaderboardCache creates a new read-through leaderboard cache.
func NewLeaderboardCache(rdb goredis.Cmdable, snapshots domain.SnapshotRepository) *LeaderboardCache {
	return &LeaderboardCache{rdb: rdb, snapshots: snapshots}
}

func leaderboardKey(version int) string {
	return fmt.Sprintf("%sv%d", leaderboardCachePrefix, version)
}

// Get returns the leaderboard for a formula version with read-through caching.
// Read path: Redis GET → PostgreSQL query → populate Redis cache.
func (c *LeaderboardCache) Get(ctx context.Context, version int) ([]domain.LeaderboardEntry, error) {
	key := leaderboardKey(version)

	// Try Redis cache
	data, err := c.rdb.Get(ctx, key).Bytes()
	if err == nil {
		var entries []domain.LeaderboardEntry
		if err := json.Unmarshal(data, &entries); err != nil {
			slog.Warn("Failed to unmarshal cached leaderboard, falling through to PostgreSQL",
				"version", version, "error", err)
		} else {
			metrics.LeaderboardCacheTotal.WithLabelValues("hit").Inc()
			return entries, nil
		}
	} else if !errors.Is(err, goredis.Nil) {
		// Redis error — log and fall through to PostgreSQL
		slog.Warn("Redis leaderboard cache GET failed, falling through to PostgreSQL",
			"version", version, "error", err)
	}

	// Redis miss or error — query PostgreSQL
	entries, err := c.snapshots.LatestByVersion(ctx, version)
	if err != nil {
		return nil, fmt.Errorf("leaderboard lookup failed: %w", err)
	}

	metrics.LeaderboardCacheTotal.WithLabelValues("miss").Inc()

	// Populate Redis cache (best-effort)
	if encoded, err := json.Marshal(entries); err == nil {
		if err := c.rdb.Set(ctx, key, encoded, leaderboardCacheTTL).Err(); err != nil {
			slog.Warn("Failed to populate Redis leaderboard cache",
				"version", version, "error", err)
		}
	}

	return entries, nil
}

// Invalidate removes the cached leaderboard for a formula version.
func (c *LeaderboardCache) Invalidate(ctx context.Context, version int) error {
	if err := c.rdb.Del(ctx, leaderboardKey(version)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate leaderboard cache: %w", err)
	}
	return nil
}
