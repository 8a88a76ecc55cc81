package main

import (
	"log"

	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/database"
	"github.com/JonasLeetTheWay/eventisense/internal/logger"
	"github.com/JonasLeetTheWay/eventisense/internal/redis"
	"github.com/JonasLeetTheWay/eventisense/internal/server"
	"github.com/JonasLeetTheWay/eventisense/internal/services/budget"

	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	logr := logger.New(cfg.LogLevel, cfg.LogFormat)
	defer logr.Sync()

	// Connect to database
	db, err := database.Connect(cfg, logr)
	if err != nil {
		logr.Fatal("Failed to connect to database", zap.Error(err))
	}

	// Connect to Redis
	redisClient := redis.NewClient(cfg)
	defer redisClient.Close()

	// Create service
	budgetService := budget.NewService(cfg, backend.NewGormStore(db), redisClient, logr)

	r := server.New(logr)
	budgetService.SetupRoutes(r)

	if err := server.Run(r, cfg.BudgetServicePort, "Budget Service", logr); err != nil {
		logr.Fatal("Failed to start Budget Service", zap.Error(err))
	}
}
