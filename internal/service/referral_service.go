package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/referral"
	"github.com/cryptoforce/platform/internal/repository"
)

const (
	msgInvalidCode      = "Código de referido inválido"
	msgSelfReferral     = "No puedes usar tu propio código de referido"
	msgReferredByOther  = "Ya fuiste referido por otro usuario"
	msgReferralCycle    = "Este código crearía una referencia circular"
	msgReferralDone     = "Referido procesado correctamente"
	msgAlreadyProcessed = "El referido ya había sido procesado"
)

// maxChainDepth bounds the referred_by walk used for cycle detection.
const maxChainDepth = 1000

type ReferralService struct {
	userRepo     *repository.UserRepository
	referralRepo *repository.ReferralRepository
	cfg          *config.Config
}

func NewReferralService(
	userRepo *repository.UserRepository,
	referralRepo *repository.ReferralRepository,
	cfg *config.Config,
) *ReferralService {
	return &ReferralService{
		userRepo:     userRepo,
		referralRepo: referralRepo,
		cfg:          cfg,
	}
}

// findByCode matches the code as typed, then its canonical form.
func (s *ReferralService) findByCode(code string) (*model.User, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, nil
	}

	candidates := []string{code}
	if key := referral.LookupKey(code); key != "" && key != code {
		candidates = append(candidates, key)
	}

	for _, c := range candidates {
		user, err := s.userRepo.GetByReferralCode(c)
		if err == nil {
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}
	return nil, nil
}

// Validate never fails on an unknown code; only storage errors are returned.
func (s *ReferralService) Validate(code string) (*dto.ValidateReferralResponse, error) {
	referrer, err := s.findByCode(code)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return &dto.ValidateReferralResponse{Success: true, Valid: false}, nil
	}
	return &dto.ValidateReferralResponse{
		Success:          true,
		Valid:            true,
		ReferrerNickname: referrer.Nickname,
	}, nil
}

// Process attributes newUserEmail to the owner of referrerCode. Business
// rejections come back as Success=false; only a missing user or a storage
// failure is an error.
func (s *ReferralService) Process(ctx context.Context, newUserEmail, referrerCode string) (*dto.ReferralResult, error) {
	referrer, err := s.findByCode(referrerCode)
	if err != nil {
		return nil, err
	}
	if referrer == nil {
		return &dto.ReferralResult{Success: false, Message: msgInvalidCode}, nil
	}

	newUser, err := s.userRepo.GetByEmail(access.NormalizeEmail(newUserEmail))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if newUser.ID == referrer.ID {
		return &dto.ReferralResult{Success: false, Message: msgSelfReferral}, nil
	}

	if newUser.ReferredBy != nil {
		return s.existingReferral(newUser, referrer), nil
	}

	cycle, err := s.createsCycle(newUser.ID, referrer)
	if err != nil {
		return nil, err
	}
	if cycle {
		return &dto.ReferralResult{Success: false, Message: msgReferralCycle}, nil
	}

	event := &model.ReferralEvent{
		ReferrerID:     referrer.ID,
		ReferredUserID: newUser.ID,
		Code:           referrer.ReferralCode,
		Commission:     s.cfg.Referral.CommissionPerSignup,
	}
	if err := s.referralRepo.Attribute(event); err != nil {
		if !errors.Is(err, repository.ErrAlreadyReferred) {
			return nil, err
		}
		// lost a race with a concurrent attribution
		current, getErr := s.userRepo.GetByID(newUser.ID)
		if getErr != nil {
			return nil, getErr
		}
		return s.existingReferral(current, referrer), nil
	}

	log.Info().
		Int64("referrer_id", referrer.ID).
		Int64("user_id", newUser.ID).
		Str("code", referrer.ReferralCode).
		Msg("referral attributed")

	return &dto.ReferralResult{
		Success:          true,
		Message:          msgReferralDone,
		ReferrerID:       referrer.ID,
		ReferrerNickname: referrer.Nickname,
		Commission:       event.Commission,
	}, nil
}

func (s *ReferralService) existingReferral(user, referrer *model.User) *dto.ReferralResult {
	if user.ReferredBy != nil && *user.ReferredBy == referrer.ID {
		return &dto.ReferralResult{
			Success:          true,
			Message:          msgAlreadyProcessed,
			ReferrerID:       referrer.ID,
			ReferrerNickname: referrer.Nickname,
			AlreadyProcessed: true,
		}
	}
	return &dto.ReferralResult{Success: false, Message: msgReferredByOther}
}

// createsCycle walks the referrer's referred_by chain looking for userID.
func (s *ReferralService) createsCycle(userID int64, referrer *model.User) (bool, error) {
	seen := map[int64]bool{referrer.ID: true}
	next := referrer.ReferredBy

	for depth := 0; next != nil && depth < maxChainDepth; depth++ {
		if *next == userID {
			return true, nil
		}
		if seen[*next] {
			return false, nil
		}
		seen[*next] = true

		ancestor, err := s.userRepo.GetByID(*next)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return false, nil
			}
			return false, err
		}
		next = ancestor.ReferredBy
	}
	return false, nil
}

// Stats summarizes the caller's referral activity.
func (s *ReferralService) Stats(userID int64) (*dto.ReferralStats, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	referred, err := s.userRepo.ListReferredBy(userID)
	if err != nil {
		return nil, err
	}

	events, err := s.referralRepo.ListByReferrer(userID)
	if err != nil {
		return nil, err
	}
	commissions := make(map[int64]float64, len(events))
	for _, e := range events {
		commissions[e.ReferredUserID] = e.Commission
	}

	total, err := s.referralRepo.TotalCommission(userID)
	if err != nil {
		return nil, err
	}

	items := make([]dto.ReferredUser, 0, len(referred))
	for _, r := range referred {
		items = append(items, dto.ReferredUser{
			ID:         r.ID,
			Nickname:   r.Nickname,
			UserLevel:  r.UserLevel,
			Commission: commissions[r.ID],
			JoinedAt:   r.CreatedAt.Format(time.RFC3339),
		})
	}

	return &dto.ReferralStats{
		ReferralCode:    user.ReferralCode,
		ReferralLink:    s.referralLink(user.ReferralCode),
		TotalReferrals:  user.TotalReferrals,
		TotalCommission: total,
		ReferredUsers:   items,
	}, nil
}

func (s *ReferralService) referralLink(code string) string {
	site := strings.TrimRight(s.cfg.Site.URL, "/")
	return site + "/auth/register?ref=" + code
}

// NormalizeLegacyCodes rewrites every non-canonical referral_code. With
// dryRun nothing is written. A rewrite that would collide gets a random code.
func (s *ReferralService) NormalizeLegacyCodes(dryRun bool) (*dto.NormalizeReport, error) {
	users, err := s.userRepo.ListReferralCodes()
	if err != nil {
		return nil, err
	}

	report := &dto.NormalizeReport{DryRun: dryRun, Scanned: len(users), Changes: []dto.CodeChange{}}
	claimed := make(map[string]int64, len(users))
	for _, u := range users {
		claimed[u.ReferralCode] = u.ID
	}

	for _, u := range users {
		if referral.IsCanonical(u.ReferralCode) {
			continue
		}

		code := referral.Canonicalize(u.ReferralCode)
		if owner, ok := claimed[code]; ok && owner != u.ID {
			code = referral.Random()
		}
		change := dto.CodeChange{UserID: u.ID, From: u.ReferralCode, To: code}

		if !dryRun {
			err := s.userRepo.UpdateFields(u.ID, map[string]interface{}{"referral_code": code})
			if err != nil {
				log.Error().Err(err).Int64("user_id", u.ID).Msg("failed to normalize referral code")
				report.Failed = append(report.Failed, change)
				continue
			}
		}

		delete(claimed, u.ReferralCode)
		claimed[code] = u.ID
		report.Changes = append(report.Changes, change)
	}

	log.Info().Bool("dry_run", dryRun).Int("scanned", report.Scanned).
		Int("changed", len(report.Changes)).Int("failed", len(report.Failed)).
		Msg("referral code normalization finished")

	return report, nil
}

// ReconcileCounts repairs total_referrals from the referred_by links.
func (s *ReferralService) ReconcileCounts() (int64, error) {
	fixed, err := s.userRepo.ReconcileReferralCounts()
	if err != nil {
		return fixed, err
	}
	if fixed > 0 {
		log.Info().Int64("fixed", fixed).Msg("referral counters reconciled")
	}
	return fixed, nil
}
