package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"iacforge/app/config"
	"iacforge/app/usecase"
	"iacforge/internal/domain/repository"
	"iacforge/internal/infrastructure/cost"
	"iacforge/internal/infrastructure/generator"
	"iacforge/internal/infrastructure/llm"
	"iacforge/internal/infrastructure/metrics"
	"iacforge/internal/infrastructure/store/filesystem"
	"iacforge/internal/infrastructure/store/memory"
	mongorepo "iacforge/internal/infrastructure/store/mongodb"
	"iacforge/internal/infrastructure/transport"
	"iacforge/internal/infrastructure/validator"
)

func main() {
	// logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	cfg := config.Load()

	// Repositories: MongoDB when configured, in-memory otherwise.
	var (
		jobRepo     repository.JobRepository
		resultRepo  repository.ResultRepository
		mongoClient *mongo.Client
	)
	if cfg.Mongo.URI != "" {
		mongoCtx, mongoCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer mongoCancel()

		client, err := mongo.Connect(mongoCtx, options.Client().ApplyURI(cfg.Mongo.URI))
		if err != nil {
			log.Fatalf("mongo connect: %v", err)
		}
		if err := client.Ping(mongoCtx, nil); err != nil {
			log.Fatalf("mongo ping: %v", err)
		}
		logger.Info("connected to mongo", "database", cfg.Mongo.Database)

		mongoClient = client
		db := client.Database(cfg.Mongo.Database)
		jobRepo = mongorepo.NewMongoJobRepo(db)
		resultRepo = mongorepo.NewMongoResultRepo(db)
	} else {
		logger.Warn("MONGO_URI not set, using in-memory stores")
		jobRepo = memory.NewJobRepo()
		resultRepo = memory.NewResultRepo()
	}

	bundleRepo, err := filesystem.NewBundleRepository(cfg.Bundles.Dir)
	if err != nil {
		log.Fatalf("init bundle repository: %v", err)
	}

	// LLM backends: misconfigured ones are skipped, not fatal, as long as one
	// survives.
	backends := buildBackends(cfg.LLM, logger)
	orchestrator, err := llm.NewOrchestrator(backends, logger)
	if err != nil {
		log.Fatalf("init llm orchestrator: %v", err)
	}

	// Generation pipeline
	runner := validator.ExecRunner{}
	pipeline := validator.NewPipeline(runner, logger)
	scanner := validator.NewScanner(runner, logger)
	registry := generator.NewRegistry(logger)
	estimator := cost.NewEstimator(logger)

	// Usecases / services
	generationSvc := usecase.NewGenerationService(orchestrator, registry, pipeline, estimator, logger)
	jobSvc := usecase.NewJobService(jobRepo, resultRepo, &bundleRepo, logger)
	scanSvc := usecase.NewScanService(scanner, &bundleRepo, logger)
	worker := usecase.NewGenerationWorker(jobRepo, resultRepo, &bundleRepo, generationSvc, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	worker.Start(ctx)

	// Transport (HTTP handlers)
	handler := transport.NewHandler(jobSvc, generationSvc, scanSvc, logger)

	// Router and server
	r := mux.NewRouter()
	handler.RegisterRoutes(r)
	corsHandler := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)(r)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      corsHandler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.Info("starting metrics server", "addr", cfg.Metrics.Addr)
		metrics.StartMetricsServer(cfg.Metrics.Addr)
	}()

	go func() {
		logger.Info("starting HTTP server", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server failed", "err", err)
			cancel()
		}
	}()

	// OS signal handling for graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case <-stop:
		logger.Info("shutdown signal received")
	case <-ctx.Done():
		logger.Info("context cancelled")
	}

	// Shutdown sequence
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	logger.Info("stopping worker")
	worker.Stop()

	logger.Info("shutting down http server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "err", err)
	}

	if mongoClient != nil {
		logger.Info("disconnecting mongo")
		if err := mongoClient.Disconnect(shutdownCtx); err != nil {
			logger.Error("mongo disconnect error", "err", err)
		}
	}

	logger.Info("service stopped")
}

// buildBackends constructs every backend the environment has credentials for.
// The one named by LLM_PRIMARY gets the primary role; the orchestrator moves
// it to the front of the failover order.
func buildBackends(cfg config.LLMConfig, logger *slog.Logger) []repository.Backend {
	var backends []repository.Backend

	role := func(name string) repository.BackendRole {
		if name == cfg.Primary {
			return repository.RolePrimary
		}
		return repository.RoleFallback
	}

	if cfg.OpenAI.APIKey != "" {
		backend, err := llm.NewOpenAIBackend(llm.OpenAIConfig{
			Role:    role("openai"),
			APIKey:  cfg.OpenAI.APIKey,
			BaseURL: cfg.OpenAI.BaseURL,
			Model:   cfg.OpenAI.Model,
		})
		if err != nil {
			logger.Warn("skipping openai backend", "err", err)
		} else {
			backends = append(backends, backend)
		}
	}

	if cfg.Anthropic.APIKey != "" {
		backend, err := llm.NewAnthropicBackend(llm.AnthropicConfig{
			Role:    role("anthropic"),
			APIKey:  cfg.Anthropic.APIKey,
			BaseURL: cfg.Anthropic.BaseURL,
			Model:   cfg.Anthropic.Model,
		})
		if err != nil {
			logger.Warn("skipping anthropic backend", "err", err)
		} else {
			backends = append(backends, backend)
		}
	}

	if cfg.Ollama.Model != "" {
		backend, err := llm.NewOllamaBackend(llm.OllamaConfig{
			Role:    role("ollama"),
			BaseURL: cfg.Ollama.BaseURL,
			Model:   cfg.Ollama.Model,
		})
		if err != nil {
			logger.Warn("skipping ollama backend", "err", err)
		} else {
			backends = append(backends, backend)
		}
	}

	return backends
}
