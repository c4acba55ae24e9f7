package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/database"
	"github.com/cryptoforce/platform/internal/pkg/email"
	"github.com/cryptoforce/platform/internal/pkg/logger"
	"github.com/cryptoforce/platform/internal/pkg/queue"
	"github.com/cryptoforce/platform/internal/worker"
)

func main() {
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config.yaml"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger.Init(cfg.Server.Mode)

	rdb, err := database.NewRedis(&cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}
	defer rdb.Close()
	log.Info().Msg("redis connected")

	if cfg.Email.SMTPHost == "" {
		log.Fatal().Msg("email.smtp_host is required by the notification worker")
	}

	notifications := queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
	mailer := email.NewService(&cfg.Email, cfg.Site.URL)
	processor := worker.NewProcessor(notifications, mailer, cfg.Queue.MaxWorkers)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info().Msg("shutdown signal received")
		cancel()
	}()

	processor.Run(ctx)
}
