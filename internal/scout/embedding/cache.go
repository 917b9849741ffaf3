package embedding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// redisClient narrows go-redis's *redis.Client to the two commands this
// cache issues, the same narrowing idiom internal/scout/graph and
// internal/scout/eventlog use for their backing drivers, so a fake can
// stand in for Redis in tests.
type redisClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd
}

// Cache wraps a TextEmbedder with a Redis-backed, content-hash-keyed
// cache so the same text is never billed or computed twice.
type Cache struct {
	embedder TextEmbedder
	redis    redisClient
	ttl      time.Duration
	prefix   string
}

// NewCache builds a Cache over any redisClient implementation — a
// *redis.Client in production, a fake in tests. ttl of zero means
// entries never expire.
func NewCache(embedder TextEmbedder, client redisClient, ttl time.Duration) *Cache {
	return &Cache{embedder: embedder, redis: client, ttl: ttl, prefix: "scout:embedding:"}
}

// Embed returns the cached embedding for contentHash if present,
// otherwise computes, caches, and returns it.
func (c *Cache) Embed(ctx context.Context, contentHash, text string) ([]float32, error) {
	key := c.prefix + contentHash
	if cached, ok, err := c.get(ctx, key); err != nil {
		return nil, err
	} else if ok {
		return cached, nil
	}

	vec, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.put(ctx, key, vec); err != nil {
		return nil, err
	}
	return vec, nil
}

func (c *Cache) get(ctx context.Context, key string) ([]float32, bool, error) {
	raw, err := c.redis.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("embedding cache: get %s: %w", key, err)
	}
	var vec []float32
	if err := json.Unmarshal([]byte(raw), &vec); err != nil {
		return nil, false, fmt.Errorf("embedding cache: decode %s: %w", key, err)
	}
	return vec, true, nil
}

func (c *Cache) put(ctx context.Context, key string, vec []float32) error {
	raw, err := json.Marshal(vec)
	if err != nil {
		return fmt.Errorf("embedding cache: encode %s: %w", key, err)
	}
	if err := c.redis.Set(ctx, key, raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("embedding cache: set %s: %w", key, err)
	}
	return nil
}
