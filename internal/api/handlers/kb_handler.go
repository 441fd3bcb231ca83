package handlers

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/cache/redis"
	"github.com/math-tutor/backend/internal/corpus"
	"github.com/math-tutor/backend/internal/evaluation"
	"github.com/math-tutor/backend/internal/ingestion"
	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/internal/storage/sqlite"
	"github.com/math-tutor/backend/pkg/logger"
)

// KBHandlerConfig collects the knowledge base endpoint dependencies.
// Processor and Cache are optional.
type KBHandlerConfig struct {
	KB        *kb.Handle
	Storage   *sqlite.Client
	Evaluator *evaluation.Evaluator
	Processor *ingestion.Processor
	Cache     *redis.Client
	DataDir   string
	Threshold float64
}

type KBHandler struct {
	cfg KBHandlerConfig
}

func NewKBHandler(cfg KBHandlerConfig) *KBHandler {
	return &KBHandler{cfg: cfg}
}

func (h *KBHandler) GetStats(c *fiber.Ctx) error {
	stats := h.cfg.KB.Load().Stats()

	routes, err := h.cfg.Storage.RouteCounts()
	if err != nil {
		logger.Warn("Failed to load route counts", zap.Error(err))
		routes = map[string]int{}
	}

	return c.JSON(fiber.Map{
		"knowledge_base": stats,
		"routes":         routes,
	})
}

func (h *KBHandler) SearchByTopic(c *fiber.Ctx) error {
	topic := c.Query("topic")
	if topic == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "topic is required",
		})
	}

	limit := c.QueryInt("limit", 10)
	if limit <= 0 || limit > 50 {
		limit = 10
	}

	records := h.cfg.KB.Load().SearchByTopic(topic, limit)
	return c.JSON(fiber.Map{
		"topic":   topic,
		"records": records,
		"count":   len(records),
	})
}

func (h *KBHandler) RunBenchmark(c *fiber.Ctx) error {
	var req struct {
		Problems []evaluation.Problem `json:"problems"`
	}

	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}
	if len(req.Problems) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "problems are required",
		})
	}
	if len(req.Problems) > 200 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "too many problems, max 200 per run",
		})
	}

	report := h.cfg.Evaluator.Run(c.Context(), req.Problems)
	return c.JSON(report)
}

// ReloadKB rebuilds the knowledge base from the dataset directory and
// swaps it in atomically. Cached answers are invalidated because they
// may have been produced by the old corpus.
func (h *KBHandler) ReloadKB(c *fiber.Ctx) error {
	records := corpus.Seed()
	if h.cfg.DataDir != "" {
		loaded, err := corpus.LoadDir(h.cfg.DataDir)
		if err != nil {
			logger.Error("Failed to reload dataset directory", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Failed to reload datasets",
			})
		}
		records = append(records, loaded...)
	}

	rebuilt := kb.New(records, h.cfg.Threshold)
	h.cfg.KB.Swap(rebuilt)
	metrics.KBRecordsTotal.Set(float64(len(rebuilt.Records())))

	if h.cfg.Cache != nil {
		if err := h.cfg.Cache.InvalidateAnswers(c.Context()); err != nil {
			logger.Warn("Failed to invalidate answer cache after reload", zap.Error(err))
		}
	}

	logger.Info("Knowledge base reloaded", zap.Int("records", len(rebuilt.Records())))

	return c.JSON(fiber.Map{
		"status":  "reloaded",
		"records": len(rebuilt.Records()),
	})
}

// HandleIngest embeds the current knowledge base records and loads
// them into the vector store.
func (h *KBHandler) HandleIngest(c *fiber.Ctx) error {
	if h.cfg.Processor == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"error": "Vector store is not configured",
		})
	}

	records := h.cfg.KB.Load().Records()
	inserted, err := h.cfg.Processor.Populate(c.Context(), records)
	if err != nil {
		logger.Error("Ingestion failed",
			zap.Int("inserted", inserted),
			zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":    "Ingestion failed",
			"inserted": inserted,
		})
	}

	return c.JSON(fiber.Map{
		"inserted": inserted,
		"total":    len(records),
	})
}
