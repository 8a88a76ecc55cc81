package main

import (
	"context"
	"log"

	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/database"
	"github.com/JonasLeetTheWay/eventisense/internal/logger"
	"github.com/JonasLeetTheWay/eventisense/internal/redis"
	"github.com/JonasLeetTheWay/eventisense/internal/server"
	"github.com/JonasLeetTheWay/eventisense/internal/services/gateway"

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
	if err := redisClient.Ping(context.Background()); err != nil {
		logr.Warn("Redis unavailable, logout revocation will fail until it recovers", zap.Error(err))
	}

	// Create service
	gatewayService := gateway.NewService(cfg, backend.NewGormStore(db), redisClient, gateway.WithLogger(logr))

	r := server.New(logr)
	gatewayService.SetupRoutes(r)

	if err := server.Run(r, cfg.APIGatewayPort, "API Gateway", logr); err != nil {
		logr.Fatal("Failed to start API Gateway", zap.Error(err))
	}
}
