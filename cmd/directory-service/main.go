package main

import (
	"context"
	"log"

	"github.com/JonasLeetTheWay/eventisense/internal/backend"
	"github.com/JonasLeetTheWay/eventisense/internal/config"
	"github.com/JonasLeetTheWay/eventisense/internal/database"
	"github.com/JonasLeetTheWay/eventisense/internal/gallery"
	"github.com/JonasLeetTheWay/eventisense/internal/logger"
	"github.com/JonasLeetTheWay/eventisense/internal/redis"
	"github.com/JonasLeetTheWay/eventisense/internal/server"
	"github.com/JonasLeetTheWay/eventisense/internal/services/directory"
	"github.com/JonasLeetTheWay/eventisense/internal/storage"

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

	objects := objectStore(cfg, logr)

	// Create service
	directoryService := directory.NewService(cfg, backend.NewGormStore(db), objects, redisClient, logr)

	r := server.New(logr)
	directoryService.SetupRoutes(r)

	if err := server.Run(r, cfg.DirectoryServicePort, "Directory Service", logr); err != nil {
		logr.Fatal("Failed to start Directory Service", zap.Error(err))
	}
}

// objectStore uses S3 when credentials are configured and falls back to an
// in-memory store for local development.
func objectStore(cfg *config.Config, logr *zap.Logger) storage.ObjectStore {
	if cfg.StorageAccessKey == "" || cfg.StorageSecretKey == "" {
		logr.Warn("Storage credentials not set, gallery images are kept in memory")
		return storage.NewMemoryStore()
	}

	s3Store, err := storage.NewS3Store(cfg, storage.WithLogger(logr))
	if err != nil {
		logr.Fatal("Failed to create object store", zap.Error(err))
	}
	if err := s3Store.EnsureBucket(context.Background(), gallery.Bucket); err != nil {
		logr.Fatal("Failed to prepare gallery bucket", zap.Error(err))
	}
	return s3Store
}
