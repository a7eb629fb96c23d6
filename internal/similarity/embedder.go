package similarity

import (
	"context"

	"go.uber.org/zap"

	"github.com/jonathan/resume-tailor/internal/llm"
)

// CachedEmbedder serves embeddings from Cache and fills it from Embedder on
// a miss. Cache failures are logged and otherwise ignored.
type CachedEmbedder struct {
	Embedder llm.Embedder
	Cache    Cache
	Model    string
	Logger   *zap.Logger
}

// NewCachedEmbedder wraps emb with cache. Model namespaces the cache keys.
func NewCachedEmbedder(emb llm.Embedder, cache Cache, model string, logger *zap.Logger) *CachedEmbedder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{Embedder: emb, Cache: cache, Model: model, Logger: logger}
}

// Embed implements llm.Embedder
func (c *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if c.Cache == nil {
		return c.Embedder.Embed(ctx, text)
	}

	key := CacheKey(c.Model, text)
	if vec, ok, err := c.Cache.Get(ctx, key); err != nil {
		c.Logger.Warn("embedding cache read failed", zap.Error(err))
	} else if ok {
		return vec, nil
	}

	vec, err := c.Embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	if err := c.Cache.Set(ctx, key, vec); err != nil {
		c.Logger.Warn("embedding cache write failed", zap.Error(err))
	}
	return vec, nil
}
