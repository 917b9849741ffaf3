package embedding

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRedis is an in-memory stand-in for the two redisClient commands
// Cache issues.
type fakeRedis struct {
	store map[string]string
	calls int
}

func newFakeRedis() *fakeRedis { return &fakeRedis{store: map[string]string{}} }

func (f *fakeRedis) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx, "get", key)
	if v, ok := f.store[key]; ok {
		cmd.SetVal(v)
	} else {
		cmd.SetErr(redis.Nil)
	}
	return cmd
}

func (f *fakeRedis) Set(ctx context.Context, key string, value any, ttl time.Duration) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "set", key)
	switch v := value.(type) {
	case string:
		f.store[key] = v
	case []byte:
		f.store[key] = string(v)
	}
	cmd.SetVal("OK")
	return cmd
}

type fakeEmbedder struct {
	calls int
	vec   []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, nil
}

func TestCache_Embed_ComputesOnceAndCachesByContentHash(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.1, 0.2, 0.3}}
	cache := NewCache(embedder, newFakeRedis(), time.Hour)

	v1, err := cache.Embed(context.Background(), "hash1", "some text")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, v1)
	assert.Equal(t, 1, embedder.calls)

	v2, err := cache.Embed(context.Background(), "hash1", "some text")
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, embedder.calls, "second call for the same hash should hit the cache, not the embedder")
}

func TestCache_Embed_DifferentHashesComputeSeparately(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{0.5}}
	cache := NewCache(embedder, newFakeRedis(), time.Hour)

	_, err := cache.Embed(context.Background(), "hash1", "text one")
	require.NoError(t, err)
	_, err = cache.Embed(context.Background(), "hash2", "text two")
	require.NoError(t, err)
	assert.Equal(t, 2, embedder.calls)
}
