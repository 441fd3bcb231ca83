package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/pkg/logger"
)

const (
	answerPrefix    = "answer:"
	embeddingPrefix = "embedding:"
)

type Client struct {
	client *redis.Client
}

func NewClient(host string, port int, password string, db int) (*Client, error) {
	addr := fmt.Sprintf("%s:%d", host, port)
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis client initialized", zap.String("addr", addr))

	return &Client{client: client}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

func (c *Client) setJSON(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal %s: %w", key, err)
	}
	if err := c.client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

// getJSON reports false without error on a cache miss.
func (c *Client) getJSON(ctx context.Context, key string, out interface{}) (bool, error) {
	data, err := c.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return false, fmt.Errorf("failed to unmarshal %s: %w", key, err)
	}
	return true, nil
}

// SetAnswer caches the full answer envelope under the question hash.
func (c *Client) SetAnswer(ctx context.Context, questionHash string, answer interface{}, ttl time.Duration) error {
	if err := c.setJSON(ctx, answerPrefix+questionHash, answer, ttl); err != nil {
		return err
	}
	logger.Debug("Answer cached",
		zap.String("question_hash", questionHash),
		zap.Duration("ttl", ttl))
	return nil
}

func (c *Client) GetAnswer(ctx context.Context, questionHash string, answer interface{}) (bool, error) {
	found, err := c.getJSON(ctx, answerPrefix+questionHash, answer)
	if found {
		logger.Debug("Answer cache hit", zap.String("question_hash", questionHash))
	}
	return found, err
}

func (c *Client) SetEmbedding(ctx context.Context, textHash string, embedding []float32, ttl time.Duration) error {
	return c.setJSON(ctx, embeddingPrefix+textHash, embedding, ttl)
}

func (c *Client) GetEmbedding(ctx context.Context, textHash string) ([]float32, bool, error) {
	var embedding []float32
	found, err := c.getJSON(ctx, embeddingPrefix+textHash, &embedding)
	if !found || err != nil {
		return nil, false, err
	}
	return embedding, true, nil
}

// InvalidateAnswers drops every cached answer, used after the
// knowledge base is reloaded.
func (c *Client) InvalidateAnswers(ctx context.Context) error {
	iter := c.client.Scan(ctx, 0, answerPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			logger.Warn("Failed to delete cache key",
				zap.String("key", iter.Val()),
				zap.Error(err))
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan answer keys: %w", err)
	}

	logger.Info("Answer cache invalidated")
	return nil
}
