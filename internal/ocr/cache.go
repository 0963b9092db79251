package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// TextCache remembers recognized text keyed by file content and language.
type TextCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, text string) error
}

// CacheKey derives a cache key from file bytes and the language hint.
func CacheKey(data []byte, lang string) string {
	sum := sha256.Sum256(data)
	return lang + ":" + hex.EncodeToString(sum[:])
}

// RedisCache stores recognized text in redis with a fixed TTL.
type RedisCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisCache returns a redis-backed text cache.
func NewRedisCache(client redis.Cmdable, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func (c *RedisCache) key(k string) string {
	return "tariffapi:ocr:" + k
}

// Get returns the cached text; a miss is ("", false, nil).
func (c *RedisCache) Get(ctx context.Context, key string) (string, bool, error) {
	text, err := c.client.Get(ctx, c.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return text, true, nil
}

// Set caches text.
func (c *RedisCache) Set(ctx context.Context, key, text string) error {
	return c.client.Set(ctx, c.key(key), text, c.ttl).Err()
}
