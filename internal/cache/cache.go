// Package cache is a generic JSON-backed Redis cache used for account totals
// reads. All methods are nil-receiver safe so callers without Redis
// configured need no guards; a cache miss or write failure is never fatal.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"fintrack/internal/log"
)

// Cache binds a Redis client to a value type T and a key prefix. Pass ttl 0
// for keys that should not expire.
type Cache[T any] struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *log.Logger
}

func New[T any](client *redis.Client, prefix string, ttl time.Duration, logger *log.Logger) *Cache[T] {
	return &Cache[T]{
		client: client,
		prefix: prefix,
		ttl:    ttl,
		logger: logger.WithComponent(log.ComponentCache),
	}
}

func (c *Cache[T]) key(k string) string {
	return c.prefix + ":" + k
}

// Get retrieves and unmarshals a value. Returns (zero, false) on any miss or
// deserialization error.
func (c *Cache[T]) Get(ctx context.Context, key string) (T, bool) {
	var zero T
	if c == nil {
		return zero, false
	}
	data, err := c.client.Get(ctx, c.key(key)).Result()
	if err != nil {
		return zero, false
	}
	var v T
	if err := json.Unmarshal([]byte(data), &v); err != nil {
		return zero, false
	}
	return v, true
}

// Set marshals value and stores it under key. Failures are logged, not
// returned.
func (c *Cache[T]) Set(ctx context.Context, key string, value T) {
	if c == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WarnContext(ctx, "cache marshal failed", "key", key, log.FieldError, err)
		return
	}
	if err := c.client.Set(ctx, c.key(key), data, c.ttl).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache write failed", "key", key, log.FieldError, err)
	}
}

// Invalidate removes the given keys.
func (c *Cache[T]) Invalidate(ctx context.Context, keys ...string) {
	if c == nil || len(keys) == 0 {
		return
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = c.key(k)
	}
	if err := c.client.Del(ctx, full...).Err(); err != nil {
		c.logger.WarnContext(ctx, "cache invalidate failed", "keys", keys, log.FieldError, err)
	}
}
