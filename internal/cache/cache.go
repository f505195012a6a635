// Package cache keeps JSON snapshots of public read models in Redis with a TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gymhub/internal/logger"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "gymhub:cache:"

type Cache struct {
	redis *redis.Client
	ttl   time.Duration
}

func New(client *redis.Client, ttl time.Duration) *Cache {
	return &Cache{redis: client, ttl: ttl}
}

// Get decodes the cached value into dst. A miss or a Redis failure both
// report false so callers fall through to the database.
func (c *Cache) Get(ctx context.Context, key string, dst interface{}) bool {
	if c == nil {
		return false
	}

	data, err := c.redis.Get(ctx, keyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			logger.Warn("cache get failed", "key", key, "error", err)
		}
		return false
	}

	if err := json.Unmarshal(data, dst); err != nil {
		logger.Warn("cache entry corrupt", "key", key, "error", err)
		return false
	}
	return true
}

func (c *Cache) Set(ctx context.Context, key string, value interface{}) {
	if c == nil {
		return
	}

	data, err := json.Marshal(value)
	if err != nil {
		logger.Warn("cache marshal failed", "key", key, "error", err)
		return
	}

	if err := c.redis.Set(ctx, keyPrefix+key, data, c.ttl).Err(); err != nil {
		logger.Warn("cache set failed", "key", key, "error", err)
	}
}

func (c *Cache) Delete(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = keyPrefix + k
	}

	if err := c.redis.Del(ctx, full...).Err(); err != nil {
		logger.Warn("cache delete failed", "keys", keys, "error", err)
	}
}
