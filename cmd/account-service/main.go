package main

import (
	"log"

	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/database"
	"github.com/JonasLeetTheWay/eventisense/internal/logger"
	"github.com/JonasLeetTheWay/eventisense/internal/payment"
	"github.com/JonasLeetTheWay/eventisense/internal/redis"
	"github.com/JonasLeetTheWay/eventisense/internal/server"
	"github.com/JonasLeetTheWay/eventisense/internal/services/account"

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

	// Mock payment processor
	payments := payment.NewMockStripeClient(cfg)

	// Create service
	accountService := account.NewService(cfg, backend.NewGormStore(db), payments, redisClient, logr).
		WithPurchaseLock(redisClient)

	r := server.New(logr)
	accountService.SetupRoutes(r)

	if err := server.Run(r, cfg.AccountServicePort, "Account Service", logr); err != nil {
		logr.Fatal("Failed to start Account Service", zap.Error(err))
	}
}
