// cmd/server/main.go
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/andresuchdata/demandcast/internal/api"
	"github.com/andresuchdata/demandcast/internal/cache"
	"github.com/andresuchdata/demandcast/internal/config"
	"github.com/andresuchdata/demandcast/internal/jobs"
	"github.com/andresuchdata/demandcast/internal/mlclient"
	"github.com/andresuchdata/demandcast/internal/registry"
	"github.com/andresuchdata/demandcast/internal/repository/postgres"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/andresuchdata/demandcast/internal/storage"
	"github.com/andresuchdata/demandcast/pkg/logger"
	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize logger
	logger.SetLevel(cfg.Server.Mode)
	if cfg.Server.Mode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize database
	db, err := postgres.NewDB(&cfg.Database)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	store := postgres.NewRecordStore(db)

	// Prediction provider
	modelClient := mlclient.New(cfg.ML)

	// Insights cache, falling back to a noop when redis is unreachable
	insightsCache, err := cache.NewInsightsCache(cfg.Cache)
	if err != nil {
		logger.Log.Warn().Err(err).Msg("insights cache disabled")
		insightsCache = cache.NewNoopInsightsCache()
	}

	// Backtest report archive
	var archive *storage.ReportArchive
	if cfg.Archive.Enabled {
		objectStore, err := storage.NewMinioClient(storage.MinioConfig{
			Endpoint:  cfg.Archive.Endpoint,
			AccessKey: cfg.Archive.AccessKey,
			SecretKey: cfg.Archive.SecretKey,
			Bucket:    cfg.Archive.Bucket,
			Region:    cfg.Archive.Region,
			UseSSL:    cfg.Archive.UseSSL,
		})
		if err != nil {
			logger.Log.Warn().Err(err).Msg("backtest archive disabled")
		} else {
			archive = storage.NewReportArchive(objectStore)
		}
	}

	// Job manager
	jobManager := jobs.NewManager(cfg.Jobs.PoolSize, cfg.Jobs.MaxRetained)
	defer jobManager.Shutdown()

	// Model registry
	modelRegistry := registry.New(modelClient)

	// Initialize services
	services := &api.Services{
		ForecastService: service.NewForecastService(store, modelClient, cfg.ML.MaxBatchSize),
		PlanningService: service.NewPlanningService(store, insightsCache),
		InsightsService: service.NewInsightsService(store, modelClient, insightsCache, archive),
		JobManager:      jobManager,
		ModelClient:     modelClient,
		ModelRegistry:   modelRegistry,
	}

	// Initialize HTTP server
	router := api.NewRouter(services, cfg.Server.AllowedOrigins)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Log.Info().Str("port", cfg.Server.Port).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Log.Fatal().Err(err).Msg("Failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shut down the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Log.Info().Msg("Shutting down server...")

	// The context is used to inform the server it has 5 seconds to finish
	// the request it is currently handling
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	logger.Log.Info().Msg("Server exiting")
}
