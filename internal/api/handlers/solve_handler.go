package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/cache/redis"
	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/internal/router"
	"github.com/math-tutor/backend/internal/storage/models"
	"github.com/math-tutor/backend/internal/storage/sqlite"
	"github.com/math-tutor/backend/internal/voice"
	"github.com/math-tutor/backend/pkg/logger"
	"github.com/math-tutor/backend/pkg/utils"
)

type SolveHandler struct {
	router      *router.Router
	storage     *sqlite.Client
	cache       *redis.Client
	synthesizer voice.Synthesizer
	cacheTTL    time.Duration
}

// NewSolveHandler wires the solve endpoint. cache and synthesizer may
// be nil; both are optional.
func NewSolveHandler(r *router.Router, storage *sqlite.Client, cache *redis.Client, synthesizer voice.Synthesizer, cacheTTL time.Duration) *SolveHandler {
	if cacheTTL <= 0 {
		cacheTTL = time.Hour
	}
	return &SolveHandler{
		router:      r,
		storage:     storage,
		cache:       cache,
		synthesizer: synthesizer,
		cacheTTL:    cacheTTL,
	}
}

func (h *SolveHandler) HandleSolve(c *fiber.Ctx) error {
	var req struct {
		Question string `json:"question"`
		UserID   string `json:"user_id"`
		UseVoice bool   `json:"use_voice"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse request body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	questionHash := utils.HashString(req.Question)

	if h.cache != nil && !req.UseVoice {
		var cached router.Answer
		hit, err := h.cache.GetAnswer(c.Context(), questionHash, &cached)
		if err != nil {
			logger.Warn("Answer cache lookup failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("answer").Inc()
			return c.JSON(cached)
		}
		metrics.CacheMisses.WithLabelValues("answer").Inc()
	}

	start := time.Now()
	answer, err := h.router.Solve(c.Context(), req.Question)
	if err != nil {
		var rejected *router.ContentRejectedError
		switch {
		case errors.Is(err, router.ErrEmptyQuestion):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Question is required",
			})
		case errors.As(err, &rejected):
			metrics.GuardRejections.WithLabelValues(rejected.Reason).Inc()
			return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
				"error":  rejected.Message,
				"reason": rejected.Reason,
			})
		default:
			logger.Error("Failed to solve question", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to process question",
			})
		}
	}

	if req.UseVoice && h.synthesizer != nil {
		voiceURL, err := h.synthesizer.Synthesize(c.Context(), answer.Answer, questionHash)
		if err != nil {
			logger.Warn("Voice synthesis failed, answer served without audio", zap.Error(err))
		} else {
			answer.VoiceURL = voiceURL
		}
	}

	record := &models.SolveRecord{
		ID:            uuid.New().String(),
		UserID:        req.UserID,
		Question:      answer.Question,
		Answer:        answer.Answer,
		Confidence:    answer.Confidence,
		RouteTaken:    answer.RouteTaken,
		ComponentUsed: answer.ComponentUsed,
		SourceInfo:    answer.SourceInfo,
		LatencyMS:     time.Since(start).Milliseconds(),
		CreatedAt:     time.Now().UTC(),
	}
	if err := h.storage.InsertSolveRecord(record); err != nil {
		logger.Warn("Failed to persist solve record", zap.Error(err))
	}

	if h.cache != nil && answer.VoiceURL == "" {
		if err := h.cache.SetAnswer(c.Context(), questionHash, answer, h.cacheTTL); err != nil {
			logger.Warn("Failed to cache answer", zap.Error(err))
		}
	}

	return c.JSON(answer)
}

func (h *SolveHandler) GetHistory(c *fiber.Ctx) error {
	userID := c.Query("user_id")
	limit := c.QueryInt("limit", 20)
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	records, err := h.storage.GetSolveHistory(userID, limit)
	if err != nil {
		logger.Error("Failed to load solve history", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load history",
		})
	}

	return c.JSON(fiber.Map{
		"history": records,
		"count":   len(records),
	})
}
