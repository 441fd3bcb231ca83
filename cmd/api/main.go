package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"

	"github.com/math-tutor/backend/internal/api/handlers"
	"github.com/math-tutor/backend/internal/cache/redis"
	"github.com/math-tutor/backend/internal/corpus"
	"github.com/math-tutor/backend/internal/evaluation"
	"github.com/math-tutor/backend/internal/guard"
	"github.com/math-tutor/backend/internal/ingestion"
	"github.com/math-tutor/backend/internal/kb"
	"github.com/math-tutor/backend/internal/learning"
	"github.com/math-tutor/backend/internal/llm"
	"github.com/math-tutor/backend/internal/metrics"
	"github.com/math-tutor/backend/internal/middleware/ratelimit"
	"github.com/math-tutor/backend/internal/middleware/security"
	"github.com/math-tutor/backend/internal/middleware/validation"
	"github.com/math-tutor/backend/internal/router"
	"github.com/math-tutor/backend/internal/search/web"
	"github.com/math-tutor/backend/internal/storage/sqlite"
	"github.com/math-tutor/backend/internal/vector/milvus"
	"github.com/math-tutor/backend/internal/voice"
	"github.com/math-tutor/backend/pkg/config"
	appLogger "github.com/math-tutor/backend/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	err = appLogger.Init(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.OutputPath)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer appLogger.Sync()

	appLogger.Info("Starting Math Tutor API Server")

	metrics.Init()

	sqliteClient, err := sqlite.NewClient(cfg.SQLite.Path)
	if err != nil {
		appLogger.Fatal("Failed to create SQLite client", zap.Error(err))
	}
	defer sqliteClient.Close()

	err = sqliteClient.InitSchema()
	if err != nil {
		appLogger.Fatal("Failed to initialize schema", zap.Error(err))
	}

	records := corpus.Seed()
	if cfg.KB.DataDir != "" {
		loaded, err := corpus.LoadDir(cfg.KB.DataDir)
		if err != nil {
			appLogger.Warn("Failed to load dataset directory, using built-in seed only", zap.Error(err))
		} else {
			records = append(records, loaded...)
		}
	}

	knowledgeBase := kb.NewHandle(kb.New(records, cfg.KB.RetrievalThreshold))
	metrics.KBRecordsTotal.Set(float64(len(knowledgeBase.Load().Records())))

	llmClient := llm.NewClient(
		cfg.LLM.APIKey,
		cfg.LLM.Model,
		cfg.LLM.EmbeddingModel,
		cfg.LLM.Temperature,
		cfg.LLM.MaxTokens,
	)

	var cacheClient *redis.Client
	if cfg.Redis.Enabled {
		cacheClient, err = redis.NewClient(cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			appLogger.Warn("Failed to connect to Redis, caching disabled", zap.Error(err))
			cacheClient = nil
		} else {
			defer cacheClient.Close()
		}
	}

	var embedder router.Embedder = llmClient
	if cacheClient != nil {
		embedder = router.NewCachedEmbedder(llmClient, cacheClient, time.Duration(cfg.Redis.TTLSec)*time.Second)
	}

	stages := []router.Stage{
		{Adapter: router.NewLocalKBAdapter(knowledgeBase), Acceptance: cfg.Router.LocalKBAcceptance},
	}

	var processor *ingestion.Processor

	if cfg.Milvus.Enabled {
		milvusClient, err := milvus.NewClient(
			cfg.Milvus.Endpoint,
			cfg.Milvus.CollectionName,
			cfg.Milvus.VectorDim,
		)
		if err != nil {
			appLogger.Warn("Failed to create Milvus client, vector retrieval disabled", zap.Error(err))
		} else {
			defer milvusClient.Close()
			if err := milvusClient.CreateCollection(context.Background()); err != nil {
				appLogger.Warn("Failed to create collection, vector retrieval disabled", zap.Error(err))
			} else {
				stages = append(stages, router.Stage{
					Adapter:    router.NewRAGAdapter(embedder, milvusClient, cfg.KB.MaxResults),
					Acceptance: cfg.Router.RAGAcceptance,
				})
				processor = ingestion.NewProcessor(llmClient, milvusClient, cfg.KB.IngestBatchSize)
			}
		}
	}

	if cfg.Search.Enabled {
		webClient := web.NewClient(cfg.Search.SerpAPIKey, cfg.Search.TextBudget)
		stages = append(stages, router.Stage{
			Adapter:    router.NewWebSearchAdapter(webClient, cfg.Search.MaxResults),
			Acceptance: cfg.Router.WebAcceptance,
		})
	}

	if cfg.LLM.APIKey != "" {
		stages = append(stages, router.Stage{
			Adapter:    router.NewLLMAdapter(llmClient),
			Acceptance: cfg.Router.LLMAcceptance,
		})
	}

	solveRouter := router.New(
		stages,
		guard.New(),
		time.Duration(cfg.Router.AttemptTimeoutSec)*time.Second,
	)

	learner, err := learning.NewLearner(sqliteClient)
	if err != nil {
		appLogger.Fatal("Failed to create feedback learner", zap.Error(err))
	}

	var synthesizer voice.Synthesizer
	if cfg.Voice.Enabled && cfg.Voice.Endpoint != "" {
		synthesizer = voice.NewHTTPSynthesizer(
			cfg.Voice.Endpoint,
			time.Duration(cfg.Voice.TimeoutSec)*time.Second,
		)
	}

	evaluator := evaluation.NewEvaluator(solveRouter)

	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-User-ID",
		AllowMethods: "GET, POST, PUT, DELETE, OPTIONS",
	}))
	app.Use(security.HeadersMiddleware(security.HeadersConfig{}))

	limiter := ratelimit.New(ratelimit.Config{Logger: appLogger.GetLogger()})
	defer limiter.Stop()
	app.Use(limiter.Middleware())

	app.Use(validation.Middleware(validation.Config{Logger: appLogger.GetLogger()}))

	solveHandler := handlers.NewSolveHandler(
		solveRouter,
		sqliteClient,
		cacheClient,
		synthesizer,
		time.Duration(cfg.Redis.TTLSec)*time.Second,
	)
	feedbackHandler := handlers.NewFeedbackHandler(learner)
	kbHandler := handlers.NewKBHandler(handlers.KBHandlerConfig{
		KB:        knowledgeBase,
		Storage:   sqliteClient,
		Evaluator: evaluator,
		Processor: processor,
		Cache:     cacheClient,
		DataDir:   cfg.KB.DataDir,
		Threshold: cfg.KB.RetrievalThreshold,
	})
	wsHandler := handlers.NewWebSocketHandler(solveRouter)

	api := app.Group("/api/v1")

	api.Post("/solve", solveHandler.HandleSolve)
	api.Get("/history", solveHandler.GetHistory)

	api.Post("/feedback", feedbackHandler.HandleFeedback)
	api.Get("/feedback/insights", feedbackHandler.GetInsights)
	api.Get("/feedback/difficulty", feedbackHandler.PredictDifficulty)

	api.Get("/kb/stats", kbHandler.GetStats)
	api.Get("/kb/topic", kbHandler.SearchByTopic)
	api.Post("/kb/benchmark", kbHandler.RunBenchmark)
	api.Post("/kb/ingest", kbHandler.HandleIngest)
	api.Post("/kb/reload", kbHandler.ReloadKB)

	app.Get("/ws", websocket.New(wsHandler.HandleConnection))

	app.Get("/metrics", metrics.MetricsHandler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now().Unix(),
		})
	})

	app.Get("/ready", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ready",
		})
	})

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	appLogger.Info("Server starting", zap.String("address", addr))

	go func() {
		if err := app.Listen(addr); err != nil {
			appLogger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Server shutting down gracefully...")
	app.Shutdown()
	appLogger.Info("Server stopped")
}
