package rediscache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"shopsense/pkg/logger"
)

// ResultCache stores serialized suggestion results in Redis so that
// cache hits survive restarts and are shared across replicas.
type ResultCache struct {
	client *redis.Client
}

func NewResultCache(client *redis.Client) *ResultCache {
	return &ResultCache{
		client: client,
	}
}

// Get returns the cached payload for the key, if present and not yet
// expired. Redis errors degrade to a miss so a cache outage never
// breaks serving.
func (c *ResultCache) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("result_cache_get_failed", "key", key, "error", err)
		}
		return nil, false
	}
	return val, true
}

// Set stores the payload under the key. Expiry is delegated to Redis
// via the TTL; a zero TTL stores nothing.
func (c *ResultCache) Set(ctx context.Context, key string, payload []byte, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	if err := c.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		logger.Warn("result_cache_set_failed", "key", key, "error", err)
	}
}
