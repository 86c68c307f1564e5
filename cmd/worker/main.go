package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"

	"github.com/hibiken/asynq"

	"resumesentry/internal/config"
	"resumesentry/internal/mailer"
	"resumesentry/internal/metrics"
	"resumesentry/internal/tasks"
	"resumesentry/internal/worker"
)

func main() {
	cfg := config.MustLoad()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	redisAddr := fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port)

	redisOpt := asynq.RedisClientOpt{Addr: redisAddr}
	server := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
	})

	m, err := mailer.New(cfg.Mail)
	if err != nil {
		log.Fatalf("init mailer: %v", err)
	}
	mailHandler := worker.NewMailTaskHandler(m, logger)

	mux := asynq.NewServeMux()
	mux.Use(metrics.AsynqMetricsMiddleware())
	mux.Handle(tasks.TypeEmailWelcome, mailHandler)
	mux.Handle(tasks.TypeEmailPasswordReset, mailHandler)

	logger.Info("worker service started", slog.String("redis_addr", redisAddr))
	if err := server.Run(mux); err != nil {
		log.Fatalf("worker server stopped: %v", err)
	}
}
