package main

import (
	"log"

	config "sales-forecast-api/configs"
	"sales-forecast-api/pkg/handlers"
	"sales-forecast-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	cfg := config.LoadConfig()

	// History and model load once here; every query path after startup is
	// read-only and free of I/O.
	historyStore, err := services.NewHistoryStore(cfg.HistoryPath)
	if err != nil {
		log.Fatalf("FATAL: failed to load sales history: %v", err)
	}
	log.Printf("Loaded %d observations covering periods up to %d", historyStore.Len(), historyStore.MaxPeriod())

	scorer, err := services.LoadScorer(cfg.ModelPath)
	if err != nil {
		log.Fatalf("FATAL: failed to load model artifact: %v", err)
	}

	monitoringService := services.NewMonitoringService()
	forecastService := services.NewForecastService(historyStore, scorer, cfg.TargetPeriod)

	forecastHandler := handlers.NewForecastHandler(forecastService, historyStore)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	r := gin.Default()
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.Default())

	r.GET("/health", handlers.HealthCheck)

	// Query surface of the original deployment.
	r.GET("/predict", forecastHandler.Predict)

	v1 := r.Group("/api/v1")
	{
		forecast := v1.Group("/forecast")
		{
			forecast.GET("/items", forecastHandler.ListItems)
			forecast.GET("/:itemID", forecastHandler.Predict)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}
	}

	log.Printf("Starting sales-forecast-api server on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
