package router

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/pkg/logger"
	"github.com/math-tutor/backend/pkg/utils"
)

// EmbeddingCache stores embeddings keyed by a hash of the source text.
// Satisfied by the Redis client.
type EmbeddingCache interface {
	GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error)
	SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error
}

// CachedEmbedder wraps an Embedder with a cache lookup so repeated
// questions don't pay for another embedding API call. Cache failures
// are logged and the wrapped embedder is used instead.
type CachedEmbedder struct {
	inner Embedder
	cache EmbeddingCache
	ttl   time.Duration
}

func NewCachedEmbedder(inner Embedder, cache EmbeddingCache, ttl time.Duration) *CachedEmbedder {
	return &CachedEmbedder{inner: inner, cache: cache, ttl: ttl}
}

func (e *CachedEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	textHash := utils.HashString(text)

	embedding, found, err := e.cache.GetEmbedding(ctx, textHash)
	if err != nil {
		logger.Warn("Embedding cache lookup failed", zap.Error(err))
	} else if found {
		metrics.CacheHits.WithLabelValues("embedding").Inc()
		return embedding, nil
	}
	metrics.CacheMisses.WithLabelValues("embedding").Inc()

	embedding, err = e.inner.GenerateEmbedding(ctx, text)
	if err != nil {
		return nil, err
	}

	if err := e.cache.SetEmbedding(ctx, textHash, embedding, e.ttl); err != nil {
		logger.Warn("Failed to cache embedding", zap.Error(err))
	}
	return embedding, nil
}
