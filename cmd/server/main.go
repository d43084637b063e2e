package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sentiment-analyzer/backend/internal/models"
	"sentiment-analyzer/backend/pkg/config"
	"sentiment-analyzer/backend/pkg/di"
	"sentiment-analyzer/backend/pkg/logger"
	"sentiment-analyzer/backend/pkg/observability"
	"sentiment-analyzer/backend/pkg/router"
)

func main() {
	// Load configuration (reads .env if present)
	cfg := config.New()

	// Initialize structured logger
	logConfig := logger.DefaultConfig()
	logConfig.Level = cfg.Logging.Level
	logConfig.JSON = cfg.Logging.Format != "text"

	log := logger.New(logConfig)
	logger.SetGlobal(log)

	log.Info("Starting sentiment analyzer", "env", cfg.Server.Env)

	// Initialize database
	db, err := config.NewDB()
	if err != nil {
		log.LogError(err, "Failed to initialize database")
		os.Exit(1)
	}

	// Auto-migrate the schema
	if err := db.AutoMigrate(&models.Analysis{}); err != nil {
		log.LogError(err, "Failed to migrate database")
		os.Exit(1)
	}

	// The quota count and history listing both filter on session and time
	if err := db.Exec("CREATE INDEX IF NOT EXISTS idx_analyses_session_created ON analyses(session_id, created_at)").Error; err != nil {
		log.LogError(err, "Failed to create analyses index", "index", "idx_analyses_session_created")
	}

	// Tracing and metrics
	shutdownTracing := observability.SetupTracing("sentiment-analyzer")
	defer shutdownTracing()

	var metrics *observability.Metrics
	if cfg.Metrics.Enabled {
		mp := observability.SetupPrometheusMetrics(cfg.Metrics.Port)
		metrics, err = observability.NewMetrics(mp)
		if err != nil {
			log.LogError(err, "Failed to register metrics, continuing without them")
			metrics = nil
		}
	}

	// Initialize dependency injection container
	container, err := di.New(db, log, metrics)
	if err != nil {
		log.LogError(err, "Failed to initialize dependency container")
		os.Exit(1)
	}

	// Initialize and setup router
	r := router.New(container)
	r.SetupRoutes()

	// Create HTTP server
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r.Engine,
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	// Start the server in a goroutine
	go func() {
		log.Info("Server starting", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.LogError(err, "Server failed to start")
			os.Exit(1)
		}
	}()

	// Setup graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	<-quit
	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.LogError(err, "Server forced to shutdown")
	}

	log.Info("Server exited gracefully")
}
