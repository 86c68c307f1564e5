package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"resumesentry/internal/api"
	"resumesentry/internal/auth"
	"resumesentry/internal/config"
	"resumesentry/internal/database"
	"resumesentry/internal/storage"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	log.Printf("api bootstrapped with db host=%s port=%d db=%s sslmode=%s",
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.Name,
		cfg.Database.SSLMode,
	)

	db, err := database.InitDatabase(cfg.Database)
	if err != nil {
		log.Fatalf("init database: %v", err)
	}
	log.Printf("database connection ready")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("auto migrate: %v", err)
	}
	log.Printf("database migrated")

	storageClient, err := storage.NewClient(cfg.MinIO)
	if err != nil {
		log.Fatalf("init storage client: %v", err)
	}
	log.Printf("storage client ready, bucket=%s", cfg.MinIO.Bucket)

	staging, err := storage.NewStaging(cfg.Upload.StagingDir, cfg.Upload.MaxFileBytes)
	if err != nil {
		log.Fatalf("init staging dir: %v", err)
	}
	scanner := storage.NewScanner(cfg.Upload.ClamdAddr)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)
	redisClient := redis.NewClient(&redis.Options{Addr: redisAddr})
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Error("close redis client failed", slog.Any("error", err))
		}
	}()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Fatalf("ping redis: %v", err)
	}

	asynqClient := asynq.NewClient(asynq.RedisClientOpt{Addr: redisAddr})
	defer func() {
		if err := asynqClient.Close(); err != nil {
			logger.Error("close asynq client failed", slog.Any("error", err))
		}
	}()

	authService, err := auth.NewAuthService(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.TokenTTLHours)*time.Hour,
		time.Duration(cfg.Auth.ResetTTLMinutes)*time.Minute,
	)
	if err != nil {
		log.Fatalf("init auth service: %v", err)
	}

	router := api.NewRouter(cfg, logger)
	api.RegisterRoutes(router, cfg, db, asynqClient, authService, redisClient, logger, storageClient, staging, scanner)

	address := fmt.Sprintf(":%d", cfg.API.Port)
	log.Printf("api listening on %s", address)

	if err := router.Run(address); err != nil {
		log.Fatalf("failed to start api server: %v", err)
	}
}
