package ingestion

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/internal/vector/milvus"
)

type fakeEmbedder struct {
	err   error
	calls int
}

func (f *fakeEmbedder) GenerateBatchEmbeddings(ctx context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = []float32{0.1, 0.2}
	}
	return out, nil
}

type fakeInserter struct {
	chunks []milvus.ProblemChunk
	err    error
}

func (f *fakeInserter) Insert(ctx context.Context, chunks []milvus.ProblemChunk) error {
	if f.err != nil {
		return f.err
	}
	f.chunks = append(f.chunks, chunks...)
	return nil
}

func sampleRecords(n int) []kb.Record {
	records := make([]kb.Record, n)
	for i := range records {
		records[i] = kb.Record{
			ID:       string(rune('a' + i)),
			Question: "question",
			Solution: "solution",
			Topic:    "algebra",
		}
	}
	return records
}

func TestPopulateBatches(t *testing.T) {
	embedder := &fakeEmbedder{}
	store := &fakeInserter{}
	p := NewProcessor(embedder, store, 2)

	inserted, err := p.Populate(context.Background(), sampleRecords(5))
	require.NoError(t, err)
	assert.Equal(t, 5, inserted)
	assert.Len(t, store.chunks, 5)
	assert.Equal(t, 3, embedder.calls)
	assert.Equal(t, "algebra", store.chunks[0].Topic)
}

func TestPopulateEmbeddingFailure(t *testing.T) {
	p := NewProcessor(&fakeEmbedder{err: errors.New("api down")}, &fakeInserter{}, 2)

	inserted, err := p.Populate(context.Background(), sampleRecords(3))
	assert.Error(t, err)
	assert.Equal(t, 0, inserted)
}

func TestPopulateInsertFailure(t *testing.T) {
	p := NewProcessor(&fakeEmbedder{}, &fakeInserter{err: errors.New("store down")}, 2)

	inserted, err := p.Populate(context.Background(), sampleRecords(3))
	assert.Error(t, err)
	assert.Equal(t, 0, inserted)
}

func TestPopulateEmpty(t *testing.T) {
	p := NewProcessor(&fakeEmbedder{}, &fakeInserter{}, 2)

	inserted, err := p.Populate(context.Background(), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, inserted)
}
