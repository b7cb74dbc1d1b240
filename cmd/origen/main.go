package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/origenlabs/origen/internal/config"
	"github.com/origenlabs/origen/internal/db"
	dbFile "github.com/origenlabs/origen/internal/db/file"
	dbRedis "github.com/origenlabs/origen/internal/db/redis"
	"github.com/origenlabs/origen/internal/domain"
	logpkg "github.com/origenlabs/origen/internal/logger"
	"github.com/origenlabs/origen/internal/metrics"
	"github.com/origenlabs/origen/internal/repository/alerts"
	"github.com/origenlabs/origen/internal/repository/docs"
	"github.com/origenlabs/origen/internal/repository/embcache"
	"github.com/origenlabs/origen/internal/repository/history"
	"github.com/origenlabs/origen/internal/repository/indexstore"
	"github.com/origenlabs/origen/internal/repository/memstore"
	chiTransport "github.com/origenlabs/origen/internal/transport/chi"
	openaiTransport "github.com/origenlabs/origen/internal/transport/openai"
	chatuc "github.com/origenlabs/origen/internal/usecase/chat"
	"github.com/origenlabs/origen/internal/usecase/classify"
	healthuc "github.com/origenlabs/origen/internal/usecase/health"
	"github.com/origenlabs/origen/internal/usecase/indexer"
	memoryuc "github.com/origenlabs/origen/internal/usecase/memory"
	"github.com/origenlabs/origen/internal/usecase/retrieval"
	"github.com/origenlabs/origen/internal/usecase/safety"
	"github.com/origenlabs/origen/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting origen API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("storage_driver", cfg.Storage.Driver),
	)

	// Create blob store based on driver
	var store db.Store
	switch cfg.Storage.Driver {
	case "file":
		store, err = dbFile.NewStore(cfg.Storage.Dir)
	case "redis":
		store, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Storage.Addrs,
			Password: cfg.Storage.Password,
		})
	default:
		logger.Fatal("Unknown storage driver", zap.String("driver", cfg.Storage.Driver))
	}
	if err != nil {
		logger.Fatal("Failed to create blob store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Storage.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Blob store not ready", zap.Error(err))
	}
	logger.Info("Connected to blob store")

	// Register pipeline metrics explicitly (no init())
	metrics.Register()

	// Embedder chain: OpenAI -> cached. Index and query embedding share one
	// chain so vectors stay comparable.
	var embedder domain.Embedder = openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.Embedding.APIKey,
		BaseURL:    cfg.Embedding.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   "openai",
		Logger:     logger,
	})
	embedder = embcache.New(embedder, store, cfg.Storage.KeyPrefix, metrics.EmbeddingCacheTotal, logger)
	logger.Info("Embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions))

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Provider:    "openai",
		Logger:      logger,
	})

	// Repositories
	ixStore := indexstore.New(store, cfg.Storage.KeyPrefix, logger)
	memStore := memstore.New(store, cfg.Storage.KeyPrefix, logger)
	docStore := docs.New(cfg.Knowledge.Dir, logger)

	historyStore, err := history.NewStore(cfg.History.Path)
	if err != nil {
		logger.Fatal("Failed to open history store", zap.Error(err))
	}
	defer func() { _ = historyStore.Close() }()

	// Use case services
	indexSvc := indexer.New(ixStore, embedder, cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, logger)
	retrievalSvc := retrieval.New(embedder, retrieval.Params{
		TopK:             cfg.Retrieval.TopK,
		MinSimilarity:    cfg.Retrieval.MinSimilarity,
		MaxFragmentChars: cfg.Retrieval.MaxFragmentChars,
	}, logger)
	memorySvc := memoryuc.New(memStore, embedder, memoryuc.Params{
		SimilarityThreshold: cfg.Memory.SimilarityThreshold,
		NegativeMarkers:     cfg.Memory.NegativeMarkers,
	}, logger)
	classifier := classify.NewEngine(cfg.Classifier.InstitutionKeywords)

	safetyMachine, err := safety.NewMachine(safetyLevels(cfg), safetyResources(cfg))
	if err != nil {
		logger.Fatal("Invalid safety configuration", zap.Error(err))
	}

	chatSvc := chatuc.New(
		docStore,
		indexSvc,
		retrievalSvc,
		memorySvc,
		classifier,
		safetyMachine,
		generator,
		alerts.NewLogNotifier(logger),
		historyStore,
		chatuc.Params{
			AnswerMode:          cfg.Retrieval.AnswerMode,
			HybridMinSimilarity: cfg.Retrieval.HybridMinSimilarity,
			LexicalWindow:       cfg.Retrieval.LexicalWindow,
			LexicalMaxSnippets:  cfg.Retrieval.LexicalMaxSnippets,
			HistoryMaxTurns:     cfg.History.MaxTurns,
			RefusalMarkers:      cfg.Generation.RefusalMarkers,
			InstitutionKeywords: cfg.Classifier.InstitutionKeywords,
			Departments:         cfg.Classifier.Departments,
		},
		logger,
	)

	if count, err := chatSvc.ReloadDocuments(ctx); err != nil {
		logger.Warn("Failed to load knowledge documents", zap.Error(err))
	} else {
		logger.Info("Knowledge documents loaded", zap.Int("documents", count))
	}

	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(embedder), generator)

	server := chiTransport.NewServer(chatSvc, memorySvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Mount(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// safetyLevels maps configured levels, falling back to the built-in ladder.
func safetyLevels(cfg config.Config) []safety.Level {
	if len(cfg.Safety.Levels) == 0 {
		return safety.DefaultLevels()
	}
	levels := make([]safety.Level, len(cfg.Safety.Levels))
	for i, lvl := range cfg.Safety.Levels {
		levels[i] = safety.Level{
			Name:            lvl.Name,
			Label:           lvl.Label,
			Priority:        lvl.Priority,
			Patterns:        lvl.Patterns,
			Response:        lvl.Response,
			Resources:       lvl.Resources,
			Recommendations: lvl.Recommendations,
			AlertRequired:   lvl.AlertRequired,
		}
	}
	return levels
}

func safetyResources(cfg config.Config) []string {
	if len(cfg.Safety.Resources) == 0 {
		return safety.DefaultResources()
	}
	return cfg.Safety.Resources
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
