package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/database"
	"github.com/cryptoforce/platform/internal/pkg/logger"
	"github.com/cryptoforce/platform/internal/repository"
	"github.com/cryptoforce/platform/internal/service"
)

var (
	dryRun    = flag.Bool("dry-run", true, "report the rewrites without writing them")
	reconcile = flag.Bool("reconcile", true, "recompute total_referrals from referred_by")
)

func main() {
	flag.Parse()

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

	db, err := database.Open(&cfg.Database, false)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect database")
	}

	userRepo := repository.NewUserRepository(db)
	referralService := service.NewReferralService(userRepo, repository.NewReferralRepository(db), cfg)

	report, err := referralService.NormalizeLegacyCodes(*dryRun)
	if err != nil {
		log.Fatal().Err(err).Msg("referral code normalization failed")
	}

	for _, change := range report.Changes {
		log.Info().Int64("user_id", change.UserID).Str("from", change.From).Str("to", change.To).Msg("referral code")
	}
	for _, change := range report.Failed {
		log.Error().Int64("user_id", change.UserID).Str("from", change.From).Str("to", change.To).Msg("referral code not updated")
	}

	if *reconcile {
		if *dryRun {
			log.Info().Msg("dry run: counter reconciliation skipped")
		} else if _, err := referralService.ReconcileCounts(); err != nil {
			log.Fatal().Err(err).Msg("counter reconciliation failed")
		}
	}

	if *dryRun {
		log.Warn().Int("pending", len(report.Changes)).Msg("dry run, nothing written; rerun with -dry-run=false")
	}
	if len(report.Failed) > 0 {
		os.Exit(1)
	}
}
