package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache stores results in Redis with a TTL, so cached calculations
// survive restarts and are shared across instances.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ ResultCache = (*RedisCache)(nil)

// NewRedisCache connects to the given address. The connection is verified
// lazily; a Redis outage degrades to cache misses rather than errors.
func NewRedisCache(addr string, ttl time.Duration) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ttl:    ttl,
	}
}

// Get retrieves a value from the cache
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			slog.DebugContext(ctx, "Redis get failed", "key", key, "error", err)
		}
		return "", false
	}
	return val, true
}

// Set stores a value in the cache
func (c *RedisCache) Set(ctx context.Context, key, value string) {
	if err := c.client.Set(ctx, key, value, c.ttl).Err(); err != nil {
		slog.DebugContext(ctx, "Redis set failed", "key", key, "error", err)
	}
}

// Ping verifies the connection, used by the readiness probe.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close releases the underlying connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}
