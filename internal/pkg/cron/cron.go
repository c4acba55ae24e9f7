package cron

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/model/dto"
)

// Reconciler repairs denormalized referral counters.
// *service.ReferralService satisfies it.
type Reconciler interface {
	ReconcileCounts() (int64, error)
}

// CodeAuditor reports referral codes that still need normalization.
// *service.ReferralService satisfies it.
type CodeAuditor interface {
	NormalizeLegacyCodes(dryRun bool) (*dto.NormalizeReport, error)
}

type Service struct {
	reconciler Reconciler
	auditor    CodeAuditor
	interval   time.Duration
	stopChan   chan struct{}
	stopOnce   sync.Once
}

// NewService runs reconciliation every intervalHours (24 when unset).
// auditor may be nil.
func NewService(reconciler Reconciler, auditor CodeAuditor, intervalHours int) *Service {
	if intervalHours <= 0 {
		intervalHours = 24
	}
	return &Service{
		reconciler: reconciler,
		auditor:    auditor,
		interval:   time.Duration(intervalHours) * time.Hour,
		stopChan:   make(chan struct{}),
	}
}

func (s *Service) Start() {
	go s.runReconcile(s.interval)
	log.Info().Dur("interval", s.interval).Msg("cron service started")
}

func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
		log.Info().Msg("cron service stopped")
	})
}

func (s *Service) runReconcile(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.RunNow(); err != nil {
				log.Error().Err(err).Msg("referral counter reconciliation failed")
			}
			s.auditCodes()
		}
	}
}

// RunNow reconciles immediately and returns the number of repaired rows.
func (s *Service) RunNow() (int64, error) {
	if s.reconciler == nil {
		return 0, nil
	}
	return s.reconciler.ReconcileCounts()
}

// auditCodes only reports; rewriting codes is left to migrate-codes or the
// admin endpoint.
func (s *Service) auditCodes() int {
	if s.auditor == nil {
		return 0
	}
	report, err := s.auditor.NormalizeLegacyCodes(true)
	if err != nil {
		log.Error().Err(err).Msg("referral code audit failed")
		return 0
	}
	if n := len(report.Changes); n > 0 {
		log.Warn().Int("pending", n).Msg("legacy referral codes pending normalization")
	}
	return len(report.Changes)
}
