package similarity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestCacheKey(t *testing.T) {
	a := CacheKey("text-embedding-004", "hello")
	assert.Equal(t, a, CacheKey("text-embedding-004", "hello"))
	assert.NotEqual(t, a, CacheKey("other-model", "hello"))
	assert.NotEqual(t, a, CacheKey("text-embedding-004", "hello!"))
	assert.Contains(t, a, "embedding:text-embedding-004:")
}

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(time.Minute)
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	_, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)

	vec := []float32{1, 2}
	require.NoError(t, c.Set(ctx, "k", vec))
	vec[0] = 99

	got, ok, err := c.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float32{1, 2}, got)

	now = now.Add(2 * time.Minute)
	_, ok, _ = c.Get(ctx, "k")
	assert.False(t, ok)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_NoTTL(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryCache(0)
	require.NoError(t, c.Set(ctx, "k", []float32{1}))
	c.now = func() time.Time { return time.Now().Add(24 * 365 * time.Hour) }
	_, ok, _ := c.Get(ctx, "k")
	assert.True(t, ok)
}

// failingCache errors on every call
type failingCache struct{}

func (failingCache) Get(context.Context, string) ([]float32, bool, error) {
	return nil, false, errors.New("cache down")
}

func (failingCache) Set(context.Context, string, []float32) error {
	return errors.New("cache down")
}

func TestCachedEmbedder(t *testing.T) {
	ctx := context.Background()
	emb := &fakeEmbedder{vectors: map[string][]float32{"hello": {1, 0}}}
	cached := NewCachedEmbedder(emb, NewMemoryCache(0), "m", nil)

	for i := 0; i < 3; i++ {
		v, err := cached.Embed(ctx, "hello")
		require.NoError(t, err)
		assert.Equal(t, []float32{1, 0}, v)
	}
	assert.Equal(t, 1, emb.calls)
}

func TestCachedEmbedder_BackendError(t *testing.T) {
	emb := &fakeEmbedder{fail: map[string]bool{"x": true}}
	cache := NewMemoryCache(0)
	_, err := NewCachedEmbedder(emb, cache, "m", nil).Embed(context.Background(), "x")
	assert.Error(t, err)
	assert.Equal(t, 0, cache.Len())
}

func TestCachedEmbedder_CacheFailureIsIgnored(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	emb := &fakeEmbedder{}
	v, err := NewCachedEmbedder(emb, failingCache{}, "m", zap.New(core)).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, []float32{0, 0, 1}, v)
	assert.Equal(t, 2, logs.Len())
}

func TestCachedEmbedder_NoCache(t *testing.T) {
	emb := &fakeEmbedder{}
	_, err := NewCachedEmbedder(emb, nil, "m", nil).Embed(context.Background(), "hello")
	require.NoError(t, err)
	assert.Equal(t, 1, emb.calls)
}

func TestNewRedisCache_InvalidURL(t *testing.T) {
	_, err := NewRedisCache("not a url", time.Minute)
	assert.Error(t, err)
}
