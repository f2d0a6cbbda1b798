package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/questforge/questforge/internal/config"
	"github.com/questforge/questforge/internal/engine"
	"github.com/questforge/questforge/internal/handlers"
	"github.com/questforge/questforge/internal/logger"
	"github.com/questforge/questforge/internal/middleware"
	"github.com/questforge/questforge/internal/services"
	"github.com/questforge/questforge/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	logg := logger.Setup(cfg)

	logg.Info("Starting QuestForge API",
		"port", cfg.Port,
		"environment", cfg.Environment,
		"oracle_provider", cfg.OracleProvider,
		"redis_enabled", cfg.RedisEnabled)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	var oracle services.Oracle
	switch cfg.OracleProvider {
	case config.ProviderGemini:
		if cfg.GeminiAPIKey == "" {
			logg.Error("GEMINI_API_KEY is required when using the gemini provider")
			os.Exit(1)
		}
		gem, err := services.NewGeminiOracle(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, logg)
		if err != nil {
			logg.Error("Failed to initialize Gemini oracle", "error", err)
			os.Exit(1)
		}
		defer func() { _ = gem.Close() }()
		oracle = gem
		logg.Info("Using Gemini oracle provider")
	case config.ProviderMock:
		oracle = services.NewMockOracle()
		logg.Info("Using mock oracle provider")
	}

	// The durable tier is optional; without it the bounded memory
	// cache alone holds sessions.
	var durable storage.Store
	if cfg.RedisEnabled {
		redisStore := storage.NewRedisStore(cfg.RedisURL, logg)
		if err := redisStore.WaitForConnection(ctx); err != nil {
			logg.Error("Failed to connect to Redis", "error", err)
			os.Exit(1)
		}
		defer func() { _ = redisStore.Close() }()
		durable = redisStore
	}

	cache := storage.NewSessionCache(cfg.MaxCachedSessions)
	tier := storage.NewTiered(cache, durable, logg)
	eng := engine.New(oracle, tier, logg)

	mux := http.NewServeMux()

	healthHandler := handlers.NewHealthHandler(durable, oracle, logg)
	mux.Handle("/health", healthHandler)

	gameHandler := middleware.Metrics("/v1/games", handlers.NewGameHandler(eng, logg))
	mux.Handle("/v1/games", gameHandler)
	mux.Handle("/v1/games/", gameHandler)

	mux.Handle("/metrics", promhttp.Handler())

	server := &http.Server{
		Addr:        ":" + cfg.Port,
		Handler:     middleware.Logging(logg, mux),
		ReadTimeout: 15 * time.Second,
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		logg.Info("Server starting", "addr", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logg.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logg.Info("Server is shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logg.Error("Server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logg.Info("Server exited")
}
