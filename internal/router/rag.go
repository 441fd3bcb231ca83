package router

import (
	"context"
	"fmt"

	"github.com/math-tutor/backend/internal/vector/milvus"
)

// Embedder turns text into a vector. Satisfied by the LLM client.
type Embedder interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}

// VectorStore answers nearest-neighbor searches over stored problems.
type VectorStore interface {
	Search(ctx context.Context, queryEmbedding []float32, topK int, filters map[string]string) ([]milvus.SearchResult, error)
}

// RAGAdapter answers from the vector store. Store similarity gets a
// small boost to reflect that semantic matches are stronger evidence
// than lexical ones, capped below full certainty.
type RAGAdapter struct {
	embedder Embedder
	store    VectorStore
	topK     int
}

func NewRAGAdapter(embedder Embedder, store VectorStore, topK int) *RAGAdapter {
	if topK <= 0 {
		topK = 3
	}
	return &RAGAdapter{embedder: embedder, store: store, topK: topK}
}

func (a *RAGAdapter) Name() string { return "rag" }

func (a *RAGAdapter) Attempt(ctx context.Context, question string) (*AdapterResult, error) {
	embedding, err := a.embedder.GenerateEmbedding(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("embedding failed: %w", err)
	}

	results, err := a.store.Search(ctx, embedding, a.topK, nil)
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	if len(results) == 0 {
		return nil, nil
	}

	best := results[0]

	answer := best.Solution
	if best.Answer != "" {
		answer += "\n\nAnswer: " + best.Answer
	}

	return &AdapterResult{
		Answer:     answer,
		Confidence: ragConfidence(float64(best.Score)),
		Route:      RouteVectorKB,
		Component:  a.Name(),
		SourceInfo: fmt.Sprintf("vector:%s", best.ProblemID),
	}, nil
}

func ragConfidence(similarity float64) float64 {
	if similarity < 0 {
		similarity = 0
	}
	if similarity > 1 {
		similarity = 1
	}
	confidence := similarity + 0.1
	if confidence > 0.95 {
		confidence = 0.95
	}
	return confidence
}
