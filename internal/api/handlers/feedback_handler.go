package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/learning"
	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/internal/storage/models"
	"github.com/math-tutor/backend/pkg/logger"
)

type FeedbackHandler struct {
	learner *learning.Learner
}

func NewFeedbackHandler(learner *learning.Learner) *FeedbackHandler {
	return &FeedbackHandler{learner: learner}
}

func (h *FeedbackHandler) HandleFeedback(c *fiber.Ctx) error {
	var req struct {
		QuestionID      string `json:"question_id"`
		Question        string `json:"question"`
		Answer          string `json:"answer"`
		Rating          int    `json:"rating"`
		Comment         string `json:"comment"`
		CorrectedAnswer string `json:"corrected_answer"`
		Topic           string `json:"topic"`
		SessionID       string `json:"session_id"`
	}

	if err := c.BodyParser(&req); err != nil {
		logger.Error("Failed to parse feedback body", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if req.Question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Question is required",
		})
	}

	record := models.FeedbackRecord{
		ID:              uuid.New().String(),
		QuestionID:      req.QuestionID,
		Question:        req.Question,
		Answer:          req.Answer,
		Rating:          req.Rating,
		Comment:         req.Comment,
		CorrectedAnswer: req.CorrectedAnswer,
		Topic:           req.Topic,
		SessionID:       req.SessionID,
		CreatedAt:       time.Now().UTC(),
	}

	suggestions, err := h.learner.Ingest(record)
	if err != nil {
		if errors.Is(err, learning.ErrInvalidRating) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "Rating must be between 1 and 5",
			})
		}
		logger.Error("Failed to ingest feedback", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to store feedback",
		})
	}

	topic := record.Topic
	if topic == "" {
		topic = "unknown"
	}
	metrics.FeedbackRating.WithLabelValues(topic).Observe(float64(record.Rating))

	return c.JSON(fiber.Map{
		"status":      "success",
		"feedback_id": record.ID,
		"suggestions": suggestions,
	})
}

func (h *FeedbackHandler) GetInsights(c *fiber.Ctx) error {
	insights, err := h.learner.Insights()
	if err != nil {
		logger.Error("Failed to build feedback insights", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load insights",
		})
	}

	return c.JSON(insights)
}

func (h *FeedbackHandler) PredictDifficulty(c *fiber.Ctx) error {
	question := c.Query("question")
	if question == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "question is required",
		})
	}

	return c.JSON(h.learner.PredictDifficulty(question))
}
