package service

import (
	"context"
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
	ErrFeedbackNotFound  = errors.New("Ticket no encontrado")
	ErrTicketResolved    = errors.New("El ticket ya está resuelto")
	ErrInvalidTransition = errors.New("Cambio de estado no permitido")
	ErrInvalidCategory   = errors.New("Categoría inválida")
)

type FeedbackService struct {
	feedbackRepo *repository.FeedbackRepository
	userRepo     *repository.UserRepository
	gate         *access.Gate
	effects      sideEffects
}

// NewFeedbackService accepts nil notifier and publisher.
func NewFeedbackService(
	feedbackRepo *repository.FeedbackRepository,
	userRepo *repository.UserRepository,
	gate *access.Gate,
	notifier Notifier,
	publisher EventPublisher,
) *FeedbackService {
	return &FeedbackService{
		feedbackRepo: feedbackRepo,
		userRepo:     userRepo,
		gate:         gate,
		effects:      sideEffects{notifier: notifier, publisher: publisher},
	}
}

func (s *FeedbackService) canModerate(caller *model.User) bool {
	return s.gate.CanModerate(caller.UserLevel, caller.Email)
}

// Create opens a pending ticket for the caller.
func (s *FeedbackService) Create(ctx context.Context, caller *model.User, req *dto.CreateFeedbackRequest) (*model.Feedback, error) {
	category := strings.TrimSpace(req.Category)
	if category == "" {
		category = model.FeedbackCategoryGeneral
	}
	if !model.ValidFeedbackCategory(category) {
		return nil, ErrInvalidCategory
	}

	fb := &model.Feedback{
		UserID:   caller.ID,
		Email:    caller.Email,
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
		Category: category,
		Status:   model.FeedbackStatusPending,
	}
	if err := s.feedbackRepo.Create(fb); err != nil {
		return nil, err
	}

	s.effects.publish(ctx, &pubsub.Event{
		Type:       pubsub.EventFeedbackCreated,
		Audience:   pubsub.AudienceModerators,
		ResourceID: fb.ID,
		Status:     fb.Status,
		Message:    fb.Subject,
	})

	return fb, nil
}

func (s *FeedbackService) ListMine(caller *model.User) ([]*model.Feedback, error) {
	return s.feedbackRepo.ListByUserID(caller.ID)
}

// List is the moderator inbox.
func (s *FeedbackService) List(caller *model.User, status string, page, pageSize int) ([]*model.Feedback, int64, error) {
	if !s.canModerate(caller) {
		return nil, 0, ErrPermissionDenied
	}
	if status != "" && !model.ValidFeedbackStatus(status) {
		return nil, 0, ErrInvalidTransition
	}
	return s.feedbackRepo.List(status, page, pageSize)
}

func (s *FeedbackService) load(id int64) (*model.Feedback, error) {
	fb, err := s.feedbackRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrFeedbackNotFound
		}
		return nil, err
	}
	return fb, nil
}

// Get is allowed to the ticket owner and to moderators.
func (s *FeedbackService) Get(caller *model.User, id int64) (*model.Feedback, error) {
	fb, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if fb.UserID != caller.ID && !s.canModerate(caller) {
		return nil, ErrPermissionDenied
	}
	return fb, nil
}

func (s *FeedbackService) ListResponses(caller *model.User, id int64) ([]*model.FeedbackResponse, error) {
	if _, err := s.Get(caller, id); err != nil {
		return nil, err
	}
	return s.feedbackRepo.ListResponses(id)
}

// Respond records a maestro reply. A pending ticket moves to in_progress;
// resolved tickets reject further replies.
func (s *FeedbackService) Respond(ctx context.Context, caller *model.User, id int64, message string) (*model.Feedback, error) {
	if !s.canModerate(caller) {
		return nil, ErrPermissionDenied
	}

	fb, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if fb.Status == model.FeedbackStatusResolved {
		return nil, ErrTicketResolved
	}

	message = strings.TrimSpace(message)
	now := time.Now()
	fields := map[string]interface{}{
		"response":    message,
		"response_by": caller.ID,
		"response_at": now,
	}
	if fb.Status == model.FeedbackStatusPending {
		fields["status"] = model.FeedbackStatusInProgress
	}

	err = s.feedbackRepo.AddResponse(&model.FeedbackResponse{
		FeedbackID:     fb.ID,
		ResponderID:    caller.ID,
		ResponderEmail: caller.Email,
		Message:        message,
	}, fields)
	if err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrTicketResolved
		}
		return nil, err
	}

	updated, err := s.load(id)
	if err != nil {
		return nil, err
	}

	s.notifyOwner(ctx, updated, queue.KindFeedbackResponded, pubsub.EventFeedbackResponded)
	return updated, nil
}

// Resolve closes any open ticket.
func (s *FeedbackService) Resolve(ctx context.Context, caller *model.User, id int64) (*model.Feedback, error) {
	if !s.canModerate(caller) {
		return nil, ErrPermissionDenied
	}

	fb, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if fb.Status == model.FeedbackStatusResolved {
		return nil, ErrTicketResolved
	}

	return s.transition(ctx, fb, model.FeedbackStatusResolved)
}

// UpdateStatus moves a ticket forward only; nothing leaves resolved.
func (s *FeedbackService) UpdateStatus(ctx context.Context, caller *model.User, id int64, status string) (*model.Feedback, error) {
	if !s.canModerate(caller) {
		return nil, ErrPermissionDenied
	}
	if !model.ValidFeedbackStatus(status) {
		return nil, ErrInvalidTransition
	}

	fb, err := s.load(id)
	if err != nil {
		return nil, err
	}
	if fb.Status == status {
		return fb, nil
	}
	if fb.Status == model.FeedbackStatusResolved ||
		model.FeedbackStatusRank(status) < model.FeedbackStatusRank(fb.Status) {
		return nil, ErrInvalidTransition
	}

	return s.transition(ctx, fb, status)
}

func (s *FeedbackService) transition(ctx context.Context, fb *model.Feedback, status string) (*model.Feedback, error) {
	fields := map[string]interface{}{"status": status}
	if status == model.FeedbackStatusResolved {
		fields["resolved_at"] = time.Now()
	}

	if err := s.feedbackRepo.Transition(fb.ID, fb.Status, fields); err != nil {
		if errors.Is(err, repository.ErrStaleState) {
			return nil, ErrInvalidTransition
		}
		return nil, err
	}

	updated, err := s.load(fb.ID)
	if err != nil {
		return nil, err
	}

	if status == model.FeedbackStatusResolved {
		s.notifyOwner(ctx, updated, queue.KindFeedbackResolved, pubsub.EventFeedbackResolved)
	}
	return updated, nil
}

// Delete removes the ticket and its history for good.
func (s *FeedbackService) Delete(caller *model.User, id int64) error {
	if !s.canModerate(caller) {
		return ErrPermissionDenied
	}
	if err := s.feedbackRepo.Delete(id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrFeedbackNotFound
		}
		return err
	}
	return nil
}

func (s *FeedbackService) notifyOwner(ctx context.Context, fb *model.Feedback, kind, eventType string) {
	data := map[string]string{"subject": fb.Subject}
	if fb.Response != nil {
		data["response"] = *fb.Response
	}

	nickname := ""
	if owner, err := s.userRepo.GetByID(fb.UserID); err == nil {
		nickname = owner.Nickname
	}

	s.effects.notify(ctx, &queue.NotificationMessage{
		Kind:     kind,
		UserID:   fb.UserID,
		To:       fb.Email,
		Nickname: nickname,
		Data:     data,
	})
	s.effects.publish(ctx, &pubsub.Event{
		Type:       eventType,
		Audience:   pubsub.AudienceUser,
		UserID:     fb.UserID,
		ResourceID: fb.ID,
		Status:     fb.Status,
	})
}
