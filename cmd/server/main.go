package main

import (
	"context"
	"log"

	"voidspace/backend/internal/cache"
	"voidspace/backend/internal/config"
	"voidspace/backend/internal/database"
	"voidspace/backend/internal/logger"
	"voidspace/backend/internal/server"
	"voidspace/backend/internal/storage"
	"voidspace/backend/pkg/hash"
	"voidspace/backend/pkg/token"

	// Swagger imports
	_ "voidspace/backend/docs" // This is important for swag to find the generated docs
)

// @title           voidspace API
// @version         1.0
// @description     This is the API for the voidspace service.
// @host            localhost:8080
// @BasePath        /api
// @securityDefinitions.apiKey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.LoadConfig()
	logger.Init(&logger.Config{Level: cfg.LogLevel, Format: logger.Format(cfg.LogFormat)})

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	logger.Info("database connected and migrated")

	blobs, err := storage.NewDiskStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	var stats *cache.RedisCache
	if cfg.RedisAddr != "" {
		stats = cache.NewRedisCache(cfg.RedisAddr)
		if err := stats.Ping(context.Background()); err != nil {
			logger.Warn("redis unreachable, stat caching disabled", "addr", cfg.RedisAddr, "err", err)
			stats = nil
		}
	}

	router := server.NewRouter(server.Options{
		DB:     db,
		Signer: token.NewSigner(cfg.JWTSecret),
		Hasher: hash.NewBcrypt(),
		Blobs:  blobs,
		Stats:  stats,
	})

	logger.Info("server starting", "port", cfg.Port)
	log.Fatal(router.Run(":" + cfg.Port))
}
