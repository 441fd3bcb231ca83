package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/internal/vector/milvus"
	"github.com/math-tutor/backend/pkg/logger"
)

// Embedder produces embeddings for a batch of texts.
type Embedder interface {
	GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error)
}

// Inserter receives embedded problems. Satisfied by the Milvus client.
type Inserter interface {
	Insert(ctx context.Context, chunks []milvus.ProblemChunk) error
}

// Processor embeds knowledge base records and loads them into the
// vector store so the semantic retrieval stage can find them.
type Processor struct {
	embedder  Embedder
	store     Inserter
	batchSize int
}

func NewProcessor(embedder Embedder, store Inserter, batchSize int) *Processor {
	if batchSize <= 0 {
		batchSize = 50
	}
	return &Processor{
		embedder:  embedder,
		store:     store,
		batchSize: batchSize,
	}
}

// Populate embeds and inserts records batch by batch. A batch failure
// aborts the run; completed batches stay inserted.
func (p *Processor) Populate(ctx context.Context, records []kb.Record) (int, error) {
	inserted := 0

	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		texts := make([]string, len(batch))
		for i, rec := range batch {
			texts[i] = rec.Question + "\n" + rec.Solution
		}

		embeddings, err := p.embedder.GenerateBatchEmbeddings(ctx, texts)
		if err != nil {
			return inserted, fmt.Errorf("failed to embed batch at %d: %w", start, err)
		}
		if len(embeddings) != len(batch) {
			return inserted, fmt.Errorf("embedding count mismatch: got %d, want %d", len(embeddings), len(batch))
		}

		chunks := make([]milvus.ProblemChunk, len(batch))
		for i, rec := range batch {
			chunks[i] = milvus.ProblemChunk{
				ID:         rec.ID,
				Embedding:  embeddings[i],
				Question:   rec.Question,
				Solution:   rec.Solution,
				Answer:     rec.Answer,
				Topic:      rec.Topic,
				Difficulty: rec.Difficulty,
				Source:     rec.Source,
				Timestamp:  time.Now().UTC(),
			}
		}

		if err := p.store.Insert(ctx, chunks); err != nil {
			return inserted, fmt.Errorf("failed to insert batch at %d: %w", start, err)
		}

		inserted += len(batch)
		metrics.ProblemsIngested.Add(float64(len(batch)))
		logger.Info("Batch ingested",
			zap.Int("batch_size", len(batch)),
			zap.Int("total_inserted", inserted))
	}

	return inserted, nil
}
