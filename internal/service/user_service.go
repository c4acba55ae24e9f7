package service

import (
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/referral"
	"github.com/cryptoforce/platform/internal/repository"
)

var (
	ErrUserNotFound       = errors.New("Usuario no encontrado")
	ErrPermissionDenied   = errors.New("Acceso denegado")
	ErrFounderImmutable   = errors.New("Los datos de un fundador no pueden modificarse")
	ErrReferralCodeTaken  = errors.New("Ese nickname ya está en uso")
	ErrInvalidLevel       = errors.New("Nivel inválido")
	ErrInvalidAvatar      = errors.New("Formato de imagen no soportado")
	ErrStorageUnavailable = errors.New("Almacenamiento de archivos no configurado")
)

var avatarExts = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".gif":  true,
	".webp": true,
}

// AvatarStorage stores avatar images. *oss.Client satisfies it.
type AvatarStorage interface {
	UploadAvatar(uid string, data []byte, ext string) (string, error)
	Delete(url string) error
}

type UserService struct {
	userRepo *repository.UserRepository
	gate     *access.Gate
	storage  AvatarStorage
}

// NewUserService accepts a nil storage; avatar uploads then fail with
// ErrStorageUnavailable.
func NewUserService(userRepo *repository.UserRepository, gate *access.Gate, storage AvatarStorage) *UserService {
	return &UserService{
		userRepo: userRepo,
		gate:     gate,
		storage:  storage,
	}
}

func (s *UserService) GetProfile(userID int64) (*dto.UserInfo, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return ToUserInfo(user, s.gate), nil
}

// UpdateProfile changes nickname and bio. A new nickname regenerates the
// referral code; founders keep theirs.
func (s *UserService) UpdateProfile(caller *model.User, req *dto.UpdateProfileRequest) (*dto.UserInfo, error) {
	fields := make(map[string]interface{})

	if req.Nickname != nil {
		nickname := strings.TrimSpace(*req.Nickname)
		if nickname != caller.Nickname {
			if s.gate.IsFounder(caller.UserLevel, caller.Email) {
				return nil, ErrFounderImmutable
			}

			code := referral.Generate(nickname)
			taken, err := s.userRepo.ReferralCodeTaken(code, caller.ID)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrReferralCodeTaken
			}

			fields["nickname"] = nickname
			fields["referral_code"] = code
		}
	}

	if req.Bio != nil {
		fields["bio"] = strings.TrimSpace(*req.Bio)
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdateFields(caller.ID, fields); err != nil {
			return nil, err
		}
	}

	return s.GetProfile(caller.ID)
}

// UploadAvatar stores the image and replaces the caller's avatar_url.
func (s *UserService) UploadAvatar(caller *model.User, data []byte, ext string) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}

	ext = strings.ToLower(ext)
	if !avatarExts[ext] {
		return "", ErrInvalidAvatar
	}

	url, err := s.storage.UploadAvatar(caller.UID, data, ext)
	if err != nil {
		return "", err
	}

	if err := s.userRepo.UpdateFields(caller.ID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", err
	}

	if caller.AvatarURL != "" {
		if err := s.storage.Delete(caller.AvatarURL); err != nil {
			log.Warn().Err(err).Int64("user_id", caller.ID).Msg("failed to delete previous avatar")
		}
	}

	return url, nil
}

// SetLevel is founder-only. Founders themselves cannot be re-levelled and
// level 0 cannot be granted.
func (s *UserService) SetLevel(caller *model.User, targetID int64, level int) (*dto.UserInfo, error) {
	if !s.gate.IsFounder(caller.UserLevel, caller.Email) {
		return nil, ErrPermissionDenied
	}
	if level == access.LevelFundador || !access.ValidLevel(level) {
		return nil, ErrInvalidLevel
	}

	target, err := s.userRepo.GetByID(targetID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	if s.gate.IsFounder(target.UserLevel, target.Email) {
		return nil, ErrFounderImmutable
	}

	if err := s.userRepo.UpdateFields(target.ID, map[string]interface{}{"user_level": level}); err != nil {
		return nil, err
	}

	log.Info().Int64("actor_id", caller.ID).Int64("user_id", target.ID).
		Int("from", target.UserLevel).Int("to", level).Msg("user level changed")

	return s.GetProfile(target.ID)
}

// ToUserInfo converts a profile row for the client.
// Allow-listed founders land on the founder dashboard whatever their level.
func ToUserInfo(user *model.User, gate *access.Gate) *dto.UserInfo {
	founder := gate.IsFounder(user.UserLevel, user.Email)
	info, _ := access.Info(user.UserLevel)
	if founder {
		info, _ = access.Info(access.LevelFundador)
	}
	return &dto.UserInfo{
		ID:             user.ID,
		UID:            user.UID,
		Email:          user.Email,
		Nickname:       user.Nickname,
		UserLevel:      user.UserLevel,
		LevelName:      info.Name,
		Dashboard:      info.Dashboard,
		ReferralCode:   user.ReferralCode,
		TotalReferrals: user.TotalReferrals,
		AvatarURL:      user.AvatarURL,
		Bio:            user.Bio,
		IsFounder:      founder,
		CanModerate:    gate.CanModerate(user.UserLevel, user.Email),
		CreatedAt:      user.CreatedAt.Format(time.RFC3339),
	}
}
