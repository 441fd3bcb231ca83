package milvus

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/pkg/logger"
)

type Client struct {
	client         client.Client
	collectionName string
	vectorDim      int
}

// ProblemChunk is one solved problem stored in the vector collection.
type ProblemChunk struct {
	ID         string
	Embedding  []float32
	Question   string
	Solution   string
	Answer     string
	Topic      string
	Difficulty string
	Source     string
	Timestamp  time.Time
}

type SearchResult struct {
	ProblemID  string
	Question   string
	Solution   string
	Answer     string
	Topic      string
	Difficulty string
	Source     string
	Score      float32
}

func NewClient(endpoint, collectionName string, vectorDim int) (*Client, error) {
	c, err := client.NewGrpcClient(
		context.Background(),
		endpoint,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	logger.Info("Milvus client initialized",
		zap.String("endpoint", endpoint),
		zap.String("collection", collectionName),
	)

	return &Client{
		client:         c,
		collectionName: collectionName,
		vectorDim:      vectorDim,
	}, nil
}

func (m *Client) Close() error {
	return m.client.Close()
}

func (m *Client) CreateCollection(ctx context.Context) error {
	has, err := m.client.HasCollection(ctx, m.collectionName)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if has {
		logger.Info("Collection already exists", zap.String("collection", m.collectionName))
		return nil
	}

	schema := &entity.Schema{
		CollectionName: m.collectionName,
		Description:    "Math problem embeddings",
		Fields: []*entity.Field{
			{
				Name:       "problem_id",
				DataType:   entity.FieldTypeVarChar,
				PrimaryKey: true,
				AutoID:     false,
				TypeParams: map[string]string{
					"max_length": "64",
				},
			},
			{
				Name:     "embedding",
				DataType: entity.FieldTypeFloatVector,
				TypeParams: map[string]string{
					"dim": fmt.Sprintf("%d", m.vectorDim),
				},
			},
			{
				Name:     "question",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "2048",
				},
			},
			{
				Name:     "solution",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "8192",
				},
			},
			{
				Name:     "answer",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "1024",
				},
			},
			{
				Name:     "topic",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "difficulty",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "32",
				},
			},
			{
				Name:     "source",
				DataType: entity.FieldTypeVarChar,
				TypeParams: map[string]string{
					"max_length": "128",
				},
			},
			{
				Name:     "timestamp",
				DataType: entity.FieldTypeInt64,
			},
		},
	}

	err = m.client.CreateCollection(ctx, schema, entity.DefaultShardNumber)
	if err != nil {
		return fmt.Errorf("failed to create collection: %w", err)
	}

	idx, err := entity.NewIndexIvfFlat(entity.IP, 1024)
	if err != nil {
		return fmt.Errorf("failed to build index definition: %w", err)
	}
	err = m.client.CreateIndex(ctx, m.collectionName, "embedding", idx, false)
	if err != nil {
		return fmt.Errorf("failed to create index: %w", err)
	}

	err = m.client.LoadCollection(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to load collection: %w", err)
	}

	logger.Info("Collection created and loaded", zap.String("collection", m.collectionName))

	return nil
}

func (m *Client) Insert(ctx context.Context, chunks []ProblemChunk) error {
	if len(chunks) == 0 {
		return nil
	}

	ids := make([]string, len(chunks))
	embeddings := make([][]float32, len(chunks))
	questions := make([]string, len(chunks))
	solutions := make([]string, len(chunks))
	answers := make([]string, len(chunks))
	topics := make([]string, len(chunks))
	difficulties := make([]string, len(chunks))
	sources := make([]string, len(chunks))
	timestamps := make([]int64, len(chunks))

	for i, chunk := range chunks {
		ids[i] = chunk.ID
		embeddings[i] = chunk.Embedding
		questions[i] = chunk.Question
		solutions[i] = chunk.Solution
		answers[i] = chunk.Answer
		topics[i] = chunk.Topic
		difficulties[i] = chunk.Difficulty
		sources[i] = chunk.Source
		timestamps[i] = chunk.Timestamp.Unix()
	}

	_, err := m.client.Insert(
		ctx,
		m.collectionName,
		"",
		entity.NewColumnVarChar("problem_id", ids),
		entity.NewColumnFloatVector("embedding", m.vectorDim, embeddings),
		entity.NewColumnVarChar("question", questions),
		entity.NewColumnVarChar("solution", solutions),
		entity.NewColumnVarChar("answer", answers),
		entity.NewColumnVarChar("topic", topics),
		entity.NewColumnVarChar("difficulty", difficulties),
		entity.NewColumnVarChar("source", sources),
		entity.NewColumnInt64("timestamp", timestamps),
	)

	if err != nil {
		return fmt.Errorf("failed to insert problems: %w", err)
	}

	err = m.client.Flush(ctx, m.collectionName, false)
	if err != nil {
		return fmt.Errorf("failed to flush: %w", err)
	}

	logger.Info("Problems inserted into vector DB", zap.Int("count", len(chunks)))

	return nil
}

func (m *Client) Search(ctx context.Context, queryEmbedding []float32, topK int, filters map[string]string) ([]SearchResult, error) {
	expr := ""
	if topic, ok := filters["topic"]; ok && topic != "" {
		expr = fmt.Sprintf(`topic == "%s"`, topic)
	}
	if difficulty, ok := filters["difficulty"]; ok && difficulty != "" {
		if expr != "" {
			expr += " && "
		}
		expr += fmt.Sprintf(`difficulty == "%s"`, difficulty)
	}

	sp, err := entity.NewIndexIvfFlatSearchParam(16)
	if err != nil {
		return nil, fmt.Errorf("failed to build search params: %w", err)
	}

	searchResult, err := m.client.Search(
		ctx,
		m.collectionName,
		[]string{},
		expr,
		[]string{"problem_id", "question", "solution", "answer", "topic", "difficulty", "source"},
		[]entity.Vector{entity.FloatVector(queryEmbedding)},
		"embedding",
		entity.IP,
		topK,
		sp,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to search: %w", err)
	}

	results := make([]SearchResult, 0)
	for _, sr := range searchResult {
		for i := 0; i < sr.ResultCount; i++ {
			idCol := sr.Fields.GetColumn("problem_id")
			questionCol := sr.Fields.GetColumn("question")
			solutionCol := sr.Fields.GetColumn("solution")
			answerCol := sr.Fields.GetColumn("answer")
			topicCol := sr.Fields.GetColumn("topic")
			difficultyCol := sr.Fields.GetColumn("difficulty")
			sourceCol := sr.Fields.GetColumn("source")

			id, _ := idCol.Get(i)
			question, _ := questionCol.Get(i)
			solution, _ := solutionCol.Get(i)
			answer, _ := answerCol.Get(i)
			topic, _ := topicCol.Get(i)
			difficulty, _ := difficultyCol.Get(i)
			source, _ := sourceCol.Get(i)

			results = append(results, SearchResult{
				ProblemID:  id.(string),
				Question:   question.(string),
				Solution:   solution.(string),
				Answer:     answer.(string),
				Topic:      topic.(string),
				Difficulty: difficulty.(string),
				Source:     source.(string),
				Score:      sr.Scores[i],
			})
		}
	}

	logger.Info("Vector search completed",
		zap.Int("topK", topK),
		zap.Int("results", len(results)),
		zap.String("filters", expr),
	)

	return results, nil
}
