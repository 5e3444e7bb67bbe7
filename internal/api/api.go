// internal/api/api.go
package api

import (
	"strings"
	"time"

	"github.com/andresuchdata/demandcast/internal/api/handlers"
	"github.com/andresuchdata/demandcast/internal/api/middleware"
	"github.com/andresuchdata/demandcast/internal/jobs"
	"github.com/andresuchdata/demandcast/internal/mlclient"
	"github.com/andresuchdata/demandcast/internal/registry"
	"github.com/andresuchdata/demandcast/internal/service"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

type Services struct {
	ForecastService *service.ForecastService
	PlanningService *service.PlanningService
	InsightsService *service.InsightsService
	JobManager      *jobs.Manager
	ModelClient     *mlclient.Client
	ModelRegistry   *registry.Registry
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Add middleware
	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService, services.JobManager)
			forecastGroup := apiGroup.Group("/forecasts")
			{
				forecastGroup.POST("", forecastHandler.Forecast)
				forecastGroup.POST("/batch", forecastHandler.ForecastBatch)
				forecastGroup.POST("/async", forecastHandler.ForecastAsync)
				forecastGroup.GET("/history", forecastHandler.History)
				forecastGroup.PATCH("/:id/actual", forecastHandler.RecordActual)
				forecastGroup.GET("/accuracy", forecastHandler.Accuracy)
			}
			apiGroup.GET("/metrics/performance", forecastHandler.PerformanceMetrics)
		}

		if services.PlanningService != nil {
			planningHandler := handlers.NewPlanningHandler(services.PlanningService)
			planningGroup := apiGroup.Group("/planning")
			{
				planningGroup.POST("/replenishment", planningHandler.Replenishment)
				planningGroup.POST("/purchase-plan", planningHandler.PurchasePlan)
				planningGroup.GET("/exceptions", planningHandler.Exceptions)
			}
		}

		if services.InsightsService != nil {
			insightsHandler := handlers.NewInsightsHandler(services.InsightsService, services.JobManager)
			apiGroup.POST("/backtests", insightsHandler.SubmitBacktest)
			apiGroup.GET("/backtests/:jobId", insightsHandler.GetJob)
			apiGroup.GET("/jobs/:jobId", insightsHandler.GetJob)
			apiGroup.GET("/drift/summary", insightsHandler.DriftSummary)
			apiGroup.GET("/forecasts/:id/explanation", insightsHandler.Explain)
			apiGroup.POST("/forecasts/what-if", insightsHandler.WhatIf)
		}

		if services.ModelClient != nil {
			modelHandler := handlers.NewModelHandler(services.ModelClient, services.ModelRegistry)
			apiGroup.GET("/forecasts/features", modelHandler.FeatureImportance)
			apiGroup.GET("/ml/health", modelHandler.Health)
			apiGroup.GET("/ml/model-info", modelHandler.ModelInfo)
			apiGroup.GET("/models/active", modelHandler.ActiveModel)
			apiGroup.POST("/models/:version/activate", modelHandler.ActivateModel)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		parts := strings.Split(origin, ",")
		for _, part := range parts {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
