package tax

import (
	"context"
	"encoding/json"
	"time"

	"github.com/mercatohq/mercato-backend/pkg/logger"
	"github.com/mercatohq/mercato-backend/pkg/redis"
)

const cacheKeyPrefix = "tax_snapshot"

// redisSnapshotCache keeps per-country snapshots in Redis with a short TTL.
// Cache faults fall back to the database; they are logged, never surfaced.
type redisSnapshotCache struct {
	client *redis.Client
	ttl    time.Duration
	logg   *logger.Logger
}

// NewSnapshotCache builds a Redis-backed snapshot cache.
func NewSnapshotCache(client *redis.Client, ttl time.Duration, logg *logger.Logger) SnapshotCache {
	return &redisSnapshotCache{client: client, ttl: ttl, logg: logg}
}

func (c *redisSnapshotCache) Get(ctx context.Context, countryCode string) (*Snapshot, bool) {
	if c.client == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, c.client.CacheKey(cacheKeyPrefix, countryCode))
	if err != nil {
		return nil, false
	}
	var snap Snapshot
	if err := json.Unmarshal([]byte(raw), &snap); err != nil {
		if c.logg != nil {
			c.logg.Warn(ctx, "discarding undecodable tax snapshot cache entry")
		}
		c.Invalidate(ctx, countryCode)
		return nil, false
	}
	return &snap, true
}

func (c *redisSnapshotCache) Set(ctx context.Context, snap Snapshot) {
	if c.client == nil {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	if err := c.client.Set(ctx, c.client.CacheKey(cacheKeyPrefix, snap.CountryCode), string(raw), c.ttl); err != nil && c.logg != nil {
		c.logg.Warn(ctx, "failed to cache tax snapshot")
	}
}

func (c *redisSnapshotCache) Invalidate(ctx context.Context, countryCode string) {
	if c.client == nil {
		return
	}
	_ = c.client.Del(ctx, c.client.CacheKey(cacheKeyPrefix, countryCode))
}
