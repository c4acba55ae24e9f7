package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/api"
	"github.com/cryptoforce/platform/internal/api/handler"
	"github.com/cryptoforce/platform/internal/database"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/cron"
	"github.com/cryptoforce/platform/internal/pkg/identity"
	"github.com/cryptoforce/platform/internal/pkg/logger"
	"github.com/cryptoforce/platform/internal/pkg/oss"
	"github.com/cryptoforce/platform/internal/pkg/pubsub"
	"github.com/cryptoforce/platform/internal/pkg/queue"
	"github.com/cryptoforce/platform/internal/pkg/ws"
	"github.com/cryptoforce/platform/internal/repository"
	"github.com/cryptoforce/platform/internal/service"
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

	db, err := database.Open(&cfg.Database, cfg.Server.Mode == "debug")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}
	log.Info().Str("driver", cfg.Database.Driver).Msg("database connected")

	// redis is optional; without it notifications are not queued and events
	// only reach clients of this process
	var rdb *redis.Client
	if client, err := database.NewRedis(&cfg.Redis); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, running without queue and pub/sub")
	} else {
		rdb = client
		log.Info().Msg("redis connected")
	}

	verifier, err := identity.New(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to configure identity verification")
	}

	gate := access.NewGate(cfg.Access.FounderEmails, cfg.Access.MaestroEmails)
	hub := ws.NewHub()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var notifier service.Notifier
	var publisher service.EventPublisher = hub
	if rdb != nil {
		notifier = queue.NewQueue(rdb, cfg.Queue.NotificationQueue)
		publisher = pubsub.NewPublisher(rdb)

		subscriber := pubsub.NewSubscriber(rdb)
		go func() {
			err := subscriber.Subscribe(ctx, func(event *pubsub.Event) {
				if err := hub.Dispatch(event); err != nil {
					log.Warn().Err(err).Str("type", event.Type).Msg("failed to dispatch event")
				}
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				log.Error().Err(err).Msg("event subscriber stopped")
			}
		}()
	}

	var storage service.AvatarStorage
	if cfg.OSS.Endpoint != "" && cfg.OSS.AccessKeyID != "" {
		ossClient, err := oss.NewClient(&cfg.OSS)
		if err != nil {
			log.Warn().Err(err).Msg("failed to init OSS client, avatar uploads disabled")
		} else {
			storage = ossClient
			log.Info().Str("bucket", cfg.OSS.BucketName).Msg("OSS client initialized")
		}
	}

	userRepo := repository.NewUserRepository(db)
	referralRepo := repository.NewReferralRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	tribunalRepo := repository.NewTribunalRepository(db)

	referralService := service.NewReferralService(userRepo, referralRepo, cfg)
	authService := service.NewAuthService(userRepo, referralService, gate, cfg)
	userService := service.NewUserService(userRepo, gate, storage)
	feedbackService := service.NewFeedbackService(feedbackRepo, userRepo, gate, notifier, publisher)
	tribunalService := service.NewTribunalService(tribunalRepo, gate, notifier, publisher)

	handlers := &api.Handlers{
		Health:    handler.NewHealthHandler(db, rdb),
		Levels:    handler.NewLevelsHandler(),
		Auth:      handler.NewAuthHandler(authService),
		User:      handler.NewUserHandler(userService),
		Referral:  handler.NewReferralHandler(referralService),
		Admin:     handler.NewAdminHandler(userService, referralService),
		Feedback:  handler.NewFeedbackHandler(feedbackService),
		Tribunal:  handler.NewTribunalHandler(tribunalService),
		WebSocket: handler.NewWebSocketHandler(hub, verifier, authService, gate, cfg.CORS.AllowedOrigins),
	}
	engine := api.NewRouter(handlers, verifier, authService, gate, cfg).Setup()

	var cronService *cron.Service
	if cfg.Cron.Enabled {
		cronService = cron.NewService(referralService, referralService, cfg.Cron.ReconcileEveryHours)
		cronService.Start()
	}

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler: engine,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan
	log.Info().Msg("shutdown signal received")

	if cronService != nil {
		cronService.Stop()
	}
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	if rdb != nil {
		rdb.Close()
	}
	log.Info().Msg("server stopped")
}
