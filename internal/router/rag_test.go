package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-tutor/backend/internal/vector/milvus"
)

var _ VectorStore = (*milvus.Client)(nil)

type stubEmbedder struct {
	err error
}

func (s *stubEmbedder) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []float32{0.1, 0.2, 0.3}, nil
}

type stubStore struct {
	results []milvus.SearchResult
	err     error
}

func (s *stubStore) Search(ctx context.Context, queryEmbedding []float32, topK int, filters map[string]string) ([]milvus.SearchResult, error) {
	return s.results, s.err
}

func TestRAGAdapter(t *testing.T) {
	store := &stubStore{results: []milvus.SearchResult{
		{ProblemID: "p1", Question: "Factor x^2 - 4", Solution: "(x-2)(x+2)", Answer: "(x-2)(x+2)", Score: 0.8},
	}}

	adapter := NewRAGAdapter(&stubEmbedder{}, store, 3)

	result, err := adapter.Attempt(context.Background(), "factor x^2 - 4")
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, RouteVectorKB, result.Route)
	assert.InDelta(t, 0.9, result.Confidence, 1e-6)
	assert.Equal(t, "vector:p1", result.SourceInfo)
}

func TestRAGAdapterNoResults(t *testing.T) {
	adapter := NewRAGAdapter(&stubEmbedder{}, &stubStore{}, 3)

	result, err := adapter.Attempt(context.Background(), "factor x^2 - 4")
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestRAGAdapterEmbeddingError(t *testing.T) {
	adapter := NewRAGAdapter(&stubEmbedder{err: errors.New("api down")}, &stubStore{}, 3)

	_, err := adapter.Attempt(context.Background(), "factor x^2 - 4")
	assert.Error(t, err)
}

func TestRAGAdapterStoreError(t *testing.T) {
	adapter := NewRAGAdapter(&stubEmbedder{}, &stubStore{err: errors.New("milvus down")}, 3)

	_, err := adapter.Attempt(context.Background(), "factor x^2 - 4")
	assert.Error(t, err)
}
