package router

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingEmbedder struct {
	calls int
}

func (e *countingEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	e.calls++
	return []float32{0.1, 0.2, 0.3}, nil
}

type fakeEmbeddingCache struct {
	entries map[string][]float32
	getErr  error
	setErr  error
}

func newFakeEmbeddingCache() *fakeEmbeddingCache {
	return &fakeEmbeddingCache{entries: make(map[string][]float32)}
}

func (c *fakeEmbeddingCache) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	embedding, ok := c.entries[textHash]
	return embedding, ok, nil
}

func (c *fakeEmbeddingCache) SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[textHash] = embedding
	return nil
}

func TestCachedEmbedderReusesEmbedding(t *testing.T) {
	inner := &countingEmbedder{}
	cache := newFakeEmbeddingCache()
	embedder := NewCachedEmbedder(inner, cache, time.Minute)

	first, err := embedder.GenerateEmbedding(context.Background(), "integrate x^2")
	require.NoError(t, err)

	second, err := embedder.GenerateEmbedding(context.Background(), "integrate x^2")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, inner.calls)
	assert.Len(t, cache.entries, 1)
}

func TestCachedEmbedderDistinctTexts(t *testing.T) {
	inner := &countingEmbedder{}
	embedder := NewCachedEmbedder(inner, newFakeEmbeddingCache(), time.Minute)

	_, err := embedder.GenerateEmbedding(context.Background(), "integrate x^2")
	require.NoError(t, err)
	_, err = embedder.GenerateEmbedding(context.Background(), "differentiate x^2")
	require.NoError(t, err)

	assert.Equal(t, 2, inner.calls)
}

func TestCachedEmbedderSurvivesCacheErrors(t *testing.T) {
	inner := &countingEmbedder{}
	cache := newFakeEmbeddingCache()
	cache.getErr = errors.New("redis down")
	cache.setErr = errors.New("redis down")
	embedder := NewCachedEmbedder(inner, cache, time.Minute)

	embedding, err := embedder.GenerateEmbedding(context.Background(), "integrate x^2")
	require.NoError(t, err)
	assert.Len(t, embedding, 3)
	assert.Equal(t, 1, inner.calls)
}
