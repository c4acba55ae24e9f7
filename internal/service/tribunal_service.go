package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/cryptoforce/platform/internal/model"
	"github.com/cryptoforce/platform/internal/model/dto"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/pubsub"
	"github.com/cryptoforce/platform/internal/pkg/queue"
	"github.com/cryptoforce/platform/internal/repository"
)

var (
	ErrContentNotFound     = errors.New("Contenido no encontrado")
	ErrInvalidReviewState  = errors.New("El contenido no está pendiente de revisión")
	ErrNotApproved         = errors.New("Solo el contenido aprobado puede publicarse")
	ErrLevelLocked         = errors.New("Tu nivel no permite acceder a este contenido")
	ErrInvalidContentLevel = errors.New("Nivel de contenido inválido")
)

type TribunalService struct {
	tribunalRepo *repository.TribunalRepository
	gate         *access.Gate
	effects      sideEffects
}

func NewTribunalService(
	tribunalRepo *repository.TribunalRepository,
	gate *access.Gate,
	notifier Notifier,
	publisher EventPublisher,
) *TribunalService {
	return &TribunalService{
		tribunalRepo: tribunalRepo,
		gate:         gate,
		effects:      sideEffects{notifier: notifier, publisher: publisher},
	}
}

func (s *TribunalService) isFounder(u *model.User) bool {
	return s.gate.IsFounder(u.UserLevel, u.Email)
}

func (s *TribunalService) canModerate(u *model.User) bool {
	return s.gate.CanModerate(u.UserLevel, u.Email)
}

func (s *TribunalService) load(id int64) (*model.TribunalContent, error) {
	c, err := s.tribunalRepo.GetByIDWithAuthor(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrContentNotFound
		}
		return nil, err
	}
	return c, nil
}

// Submit stores new content. Founder submissions skip review.
func (s *TribunalService) Submit(ctx context.Context, caller *model.User, req *dto.SubmitContentRequest) (*model.TribunalContent, error) {
	if !access.ValidLevel(req.Level) || req.Level == access.LevelFundador {
		return nil, ErrInvalidContentLevel
	}
	if !model.ValidTribunalCategory(req.Category) {
		return nil, ErrInvalidCategory
	}

	c := &model.TribunalContent{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Content:     blocks(req.Content),
		Level:       req.Level,
		Category:    req.Category,
		Status:      model.TribunalStatusPending,
		CreatedBy:   caller.ID,
	}

	if s.isFounder(caller) {
		now := time.Now()
		c.Status = model.TribunalStatusApproved
		c.IsPublished = true
		c.ReviewedBy = &caller.ID
		c.ReviewedAt = &now
		c.PublishedAt = &now
	}

	if err := s.tribunalRepo.Create(c); err != nil {
		return nil, err
	}

	if c.Status == model.TribunalStatusPending {
		s.effects.publish(ctx, &pubsub.Event{
			Type:       pubsub.EventTribunalSubmitted,
			Audience:   pubsub.AudienceModerators,
			ResourceID: c.ID,
			Status:     c.Status,
			Message:    c.Title,
		})
	}

	return c, nil
}

// Update edits content. Author edits of reviewed content send it back to review.
func (s *TribunalService) Update(caller *model.User, id int64, req *dto.UpdateContentRequest) (*model.TribunalContent, error) {
	c, err := s.load(id)
	if err != nil {
		return nil, err
	}

	isAuthor := c.CreatedBy == caller.ID
	moderator := s.canModerate(caller)
	if !isAuthor && !moderator {
		return nil, ErrPermissionDenied
	}

	if req.Title != nil {
		c.Title = strings.TrimSpace(*req.Title)
	}
	if req.Description != nil {
		c.Description = strings.TrimSpace(*req.Description)
	}
	if req.Content != nil {
		c.Content = blocks(req.Content)
	}
	if req.Level != nil {
		if !access.ValidLevel(*req.Level) || *req.Level == access.LevelFundador {
			return nil, ErrInvalidContentLevel
		}
		c.Level = *req.Level
	}
	if req.Category != nil {
		if !model.ValidTribunalCategory(*req.Category) {
			return nil, ErrInvalidCategory
		}
		c.Category = *req.Category
	}

	if isAuthor && !s.isFounder(caller) && c.Status != model.TribunalStatusPending {
		c.Status = model.TribunalStatusPending
		c.IsPublished = false
		c.PublishedAt = nil
		c.ReviewedBy = nil
		c.ReviewedAt = nil
		c.RejectionReason = ""
	}

	author := c.Author
	c.Author = nil
	if err := s.tribunalRepo.Update(c); err != nil {
		return nil, err
	}
	c.Author = author

	return c, nil
}

// Approve publishes pending content.
func (s *TribunalService) Approve(ctx context.Context, caller *model.User, id int64) (*model.TribunalContent, error) {
	now := time.Now()
	return s.review(ctx, caller, id, map[string]interface{}{
		"status":           model.TribunalStatusApproved,
		"is_published":     true,
		"published_at":     now,
		"reviewed_by":      caller.ID,
		"reviewed_at":      now,
		"rejection_reason": "",
	}, queue.KindTribunalApproved)
}

func (s *TribunalService) Reject(ctx context.Context, caller *model.User, id int64, reason string) (*model.TribunalContent, error) {
	return s.review(ctx, caller, id, map[string]interface{}{
		"status":           model.TribunalStatusRejected,
		"is_published":     false,
		"published_at":     nil,
		"reviewed_by":      caller.ID,
		"reviewed_at":      time.Now(),
		"rejection_reason": strings.TrimSpace(reason),
	}, queue.KindTribunalRejected)
}

func (s *TribunalService) review(ctx context.Context, caller *model.User, id int64, fields map[string]interface{}, kind string) (*model.TribunalContent, error) {
	if !s.canModerate(caller) {
		return nil, ErrPermissionDenied
	}

	c, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.TribunalStatusPending {
		return nil, ErrInvalidReviewState
	}

	if err := s.tribunalRepo.Transition(id, model.TribunalStatusPending, fields); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidReviewState
		}
		return nil, err
	}

	c, err = s.load(id)
	if err != nil {
		return nil, err
	}
	s.notifyAuthor(ctx, c, kind)
	return c, nil
}

// SetPublished toggles visibility of approved content.
func (s *TribunalService) SetPublished(caller *model.User, id int64, published bool) (*model.TribunalContent, error) {
	if !s.canModerate(caller) {
		return nil, ErrPermissionDenied
	}

	c, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if c.Status != model.TribunalStatusApproved {
		return nil, ErrNotApproved
	}

	fields := map[string]interface{}{"is_published": published}
	if published {
		fields["published_at"] = time.Now()
	} else {
		fields["published_at"] = nil
	}
	if err := s.tribunalRepo.Transition(id, model.TribunalStatusApproved, fields); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrNotApproved
		}
		return nil, err
	}

	return s.load(id)
}

func (s *TribunalService) Delete(caller *model.User, id int64) error {
	c, err := s.load(id)
	if err != nil {
		return err
	}
	if c.CreatedBy != caller.ID && !s.canModerate(caller) {
		return ErrPermissionDenied
	}
	return s.tribunalRepo.Delete(id)
}

// Get returns content the caller may see: published content within the
// caller's level, anything to its author and to moderators.
func (s *TribunalService) Get(caller *model.User, id int64) (*dto.TribunalContentItem, error) {
	c, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if c.CreatedBy == caller.ID || s.canModerate(caller) {
		return toContentItem(c), nil
	}
	if c.Status != model.TribunalStatusApproved || !c.IsPublished {
		return nil, ErrContentNotFound
	}
	if !s.gate.CanAccess(caller.UserLevel, c.Level, caller.Email) {
		return nil, ErrLevelLocked
	}
	return toContentItem(c), nil
}

func (s *TribunalService) ListPublished(caller *model.User, category string, page, pageSize int) ([]*dto.TribunalContentItem, int64, error) {
	if category != "" && !model.ValidTribunalCategory(category) {
		return nil, 0, ErrInvalidCategory
	}
	maxLevel := s.gate.VisibleLevel(caller.UserLevel, caller.Email)
	items, total, err := s.tribunalRepo.ListPublished(category, maxLevel, page, pageSize)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*dto.TribunalContentItem, len(items))
	for i, c := range items {
		result[i] = toContentItem(c)
	}
	return result, total, nil
}

func (s *TribunalService) ListPending(caller *model.User, page, pageSize int) ([]*model.TribunalContent, int64, error) {
	if !s.canModerate(caller) {
		return nil, 0, ErrPermissionDenied
	}
	return s.tribunalRepo.ListPending(page, pageSize)
}

func (s *TribunalService) ListMine(caller *model.User) ([]*model.TribunalContent, error) {
	return s.tribunalRepo.ListByAuthor(caller.ID)
}

func (s *TribunalService) notifyAuthor(ctx context.Context, c *model.TribunalContent, kind string) {
	eventMessage := c.Title
	if c.Author != nil {
		s.effects.notify(ctx, &queue.NotificationMessage{
			Kind:     kind,
			UserID:   c.CreatedBy,
			To:       c.Author.Email,
			Nickname: c.Author.Nickname,
			Data: map[string]string{
				"title":  c.Title,
				"reason": c.RejectionReason,
			},
		})
	}
	s.effects.publish(ctx, &pubsub.Event{
		Type:       pubsub.EventTribunalReviewed,
		Audience:   pubsub.AudienceUser,
		UserID:     c.CreatedBy,
		ResourceID: c.ID,
		Status:     c.Status,
		Message:    eventMessage,
	})
}

// toContentItem keeps only the author's public profile.
func toContentItem(c *model.TribunalContent) *dto.TribunalContentItem {
	item := &dto.TribunalContentItem{
		ID:              c.ID,
		Title:           c.Title,
		Description:     c.Description,
		Content:         []json.RawMessage(blocks(c.Content)),
		Level:           c.Level,
		Category:        c.Category,
		Status:          c.Status,
		IsPublished:     c.IsPublished,
		CreatedBy:       c.CreatedBy,
		RejectionReason: c.RejectionReason,
		PublishedAt:     c.PublishedAt,
		CreatedAt:       c.CreatedAt,
		UpdatedAt:       c.UpdatedAt,
	}

	if c.Author != nil {
		item.Author = &dto.TribunalAuthor{
			ID:        c.Author.ID,
			Nickname:  c.Author.Nickname,
			AvatarURL: c.Author.AvatarURL,
			Level:     c.Author.UserLevel,
		}
	}

	return item
}

func blocks(raw []json.RawMessage) model.Blocks {
	if raw == nil {
		return model.Blocks{}
	}
	return model.Blocks(raw)
}
