package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/identity"
	"github.com/cryptoforce/platform/internal/pkg/jwt"
	"github.com/cryptoforce/platform/internal/pkg/referral"
	"github.com/cryptoforce/platform/internal/repository"
)

var (
	ErrEmailExists        = errors.New("El correo ya está registrado")
	ErrInvalidCredentials = errors.New("Correo o contraseña incorrectos")
)

type AuthService struct {
	userRepo        *repository.UserRepository
	referralService *ReferralService
	gate            *access.Gate
	cfg             *config.Config
}

func NewAuthService(
	userRepo *repository.UserRepository,
	referralService *ReferralService,
	gate *access.Gate,
	cfg *config.Config,
) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		referralService: referralService,
		gate:            gate,
		cfg:             cfg,
	}
}

// Register creates a local account and, when a referral code is supplied,
// attributes the signup. A rejected referral does not fail registration.
func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.RegisterResponse, error) {
	email := access.NormalizeEmail(req.Email)

	exists, err := s.userRepo.ExistsByEmail(email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	hash := string(hashed)

	nickname := strings.TrimSpace(req.Nickname)
	code, err := s.availableCode(nickname)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		UID:          uuid.NewString(),
		Email:        email,
		PasswordHash: &hash,
		Nickname:     nickname,
		UserLevel:    access.DefaultLevel,
		ReferralCode: code,
	}
	if err := s.userRepo.Create(user); err != nil {
		return nil, err
	}

	resp := &dto.RegisterResponse{}
	if strings.TrimSpace(req.ReferralCode) != "" {
		result, err := s.referralService.Process(ctx, email, req.ReferralCode)
		if err != nil {
			log.Error().Err(err).Int64("user_id", user.ID).Msg("referral attribution failed during registration")
		} else {
			resp.Referral = result
			if result.Success {
				refID := result.ReferrerID
				user.ReferredBy = &refID
			}
		}
	}

	token, err := jwt.GenerateToken(user.UID, user.Email, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	resp.Token = token
	resp.User = ToUserInfo(user, s.gate)
	return resp, nil
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(access.NormalizeEmail(req.Email))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	// accounts created through the identity provider have no local password
	if user.PasswordHash == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(*user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := jwt.GenerateToken(user.UID, user.Email, s.cfg.JWT.Secret, s.cfg.JWT.ExpireHours)
	if err != nil {
		return nil, err
	}

	return &dto.LoginResponse{
		Token: token,
		User:  ToUserInfo(user, s.gate),
	}, nil
}

// EnsureProfile is the one session sequence: the profile for the verified
// identity, found by uid, else by e-mail (then linked to the uid), else
// created as an Iniciado.
func (s *AuthService) EnsureProfile(ctx context.Context, id *identity.Identity) (*model.User, error) {
	user, err := s.userRepo.GetByUID(id.UID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	email := access.NormalizeEmail(id.Email)
	if email != "" {
		user, err = s.userRepo.GetByEmail(email)
		if err == nil {
			if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"uid": id.UID}); err != nil {
				return nil, err
			}
			user.UID = id.UID
			log.Info().Int64("user_id", user.ID).Str("uid", id.UID).Msg("profile linked to identity")
			return user, nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
	}

	nickname := nicknameFromEmail(email)
	code, err := s.availableCode(nickname)
	if err != nil {
		return nil, err
	}

	user = &model.User{
		UID:          id.UID,
		Email:        email,
		Nickname:     nickname,
		UserLevel:    access.DefaultLevel,
		ReferralCode: code,
	}
	if email == "" {
		user.Email = id.UID + "@users.noreply"
	}

	if err := s.userRepo.Create(user); err != nil {
		// a concurrent request may have created it first
		if existing, getErr := s.userRepo.GetByUID(id.UID); getErr == nil {
			return existing, nil
		}
		return nil, err
	}

	log.Info().Int64("user_id", user.ID).Str("uid", user.UID).Msg("profile created")
	return user, nil
}

// Session describes the caller for GET /auth/session.
func (s *AuthService) Session(user *model.User) *dto.SessionResponse {
	return &dto.SessionResponse{
		UID:  user.UID,
		User: ToUserInfo(user, s.gate),
	}
}

// availableCode derives the nickname's code, falling back to a random one
// when another account already holds it.
func (s *AuthService) availableCode(nickname string) (string, error) {
	code := referral.Generate(nickname)
	taken, err := s.userRepo.ReferralCodeTaken(code, 0)
	if err != nil {
		return "", err
	}
	if taken {
		return referral.Random(), nil
	}
	return code, nil
}

func nicknameFromEmail(email string) string {
	local, _, _ := strings.Cut(email, "@")
	if len(local) > 50 {
		local = local[:50]
	}
	return local
}
