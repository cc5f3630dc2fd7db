package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecspace/internal/adapter"
	"github.com/kailas-cloud/vecspace/internal/config"
	"github.com/kailas-cloud/vecspace/internal/db"
	dbRedis "github.com/kailas-cloud/vecspace/internal/db/redis"
	"github.com/kailas-cloud/vecspace/internal/domain"
	"github.com/kailas-cloud/vecspace/internal/domain/space"
	logpkg "github.com/kailas-cloud/vecspace/internal/logger"
	"github.com/kailas-cloud/vecspace/internal/metrics"
	"github.com/kailas-cloud/vecspace/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/vecspace/internal/transport/chi"
	openaiEmb "github.com/kailas-cloud/vecspace/internal/transport/openai"
	embeddinguc "github.com/kailas-cloud/vecspace/internal/usecase/embedding"
	exploreuc "github.com/kailas-cloud/vecspace/internal/usecase/explore"
	healthuc "github.com/kailas-cloud/vecspace/internal/usecase/health"
	"github.com/kailas-cloud/vecspace/internal/version"
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

	logger.Info("Starting vecspace API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("default_metric", cfg.Engine.DefaultMetric),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterSpaceMetrics()
	metrics.RegisterHTTPMetrics()

	// Executors for every configured backend; the rest stay translate-only.
	registry := adapter.NewRegistry()
	backends, err := connectBackends(cfg.Backends, registry, logger)
	if err != nil {
		logger.Fatal("Failed to connect backends", zap.Error(err))
	}
	defer backends.Close()

	// Optional Redis/Valkey store for cached query embeddings.
	var store db.Store
	var cacheCheck healthuc.Checker
	if cfg.Cache.Enabled() && cfg.Embedding.Enabled() {
		rs, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.Cache.Addrs,
			Password:  cfg.Cache.Password,
			DB:        cfg.Cache.DB,
			Namespace: cfg.Cache.Namespace,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer rs.Close()

		ctx := context.Background()
		if err := rs.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		store, cacheCheck = rs, rs
		logger.Info("Connected to cache store", zap.Strings("addrs", cfg.Cache.Addrs))
	}

	// Pass nil interface (not typed nil pointer!) when embedding is disabled.
	var embedder exploreuc.Embedder
	var embeddingCheck healthuc.Checker
	if cfg.Embedding.Enabled() {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   cfg.Embedding.Provider,
			Timeout:    time.Duration(cfg.Embedding.TimeoutSec) * time.Second,
			Logger:     logger,
		})

		// Cached
		var e domain.Embedder = base
		if store != nil {
			e = embcache.New(base, store, cfg.Embedding.Model,
				time.Duration(cfg.Cache.TTLSec)*time.Second, metrics.EmbeddingCacheTotal, logger)
		}

		var budget embeddinguc.BudgetChecker
		if b := cfg.Embedding.Budget; b.Limited() {
			budget = embeddinguc.NewBudgetTracker(cfg.Embedding.Provider,
				b.DailyTokenLimit, b.MonthlyTokenLimit, embeddinguc.ParseBudgetAction(b.Action), logger)
		}

		instrumented := embeddinguc.NewInstrumentedEmbedder(e, cfg.Embedding.Provider, cfg.Embedding.Model, budget, logger)
		embedder, embeddingCheck = instrumented, instrumented
		logger.Info("Embedder created",
			zap.String("provider", cfg.Embedding.Provider),
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
			zap.Int64("daily_token_limit", cfg.Embedding.Budget.DailyTokenLimit),
			zap.Int64("monthly_token_limit", cfg.Embedding.Budget.MonthlyTokenLimit),
		)
	}

	metric, _ := space.ParseMetric(cfg.Engine.DefaultMetric) // validated by config.Load
	exploreSvc := exploreuc.New(registry, embedder, logger).
		WithEngineDefaults(metric, cfg.Engine.DefaultK, cfg.Engine.MaxPoints)
	healthSvc := healthuc.New(backends.checks, embeddingCheck)
	if cacheCheck != nil {
		healthSvc = healthSvc.WithCache(cacheCheck)
	}

	server := chiTransport.NewServer(exploreSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(chiMiddleware.RequestID)
	r.Use(chiTransport.WideEventMiddleware(logger))
	r.Use(chiTransport.JSONRecoverer(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

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
