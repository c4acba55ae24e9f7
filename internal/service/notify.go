package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/pkg/pubsub"
	"github.com/cryptoforce/platform/internal/pkg/queue"
)

// Notifier enqueues e-mail notifications. *queue.Queue satisfies it.
type Notifier interface {
	Push(ctx context.Context, msg *queue.NotificationMessage) error
}

// EventPublisher fans domain events out to websocket clients.
// *pubsub.Publisher satisfies it.
type EventPublisher interface {
	Publish(ctx context.Context, event *pubsub.Event) error
}

// sideEffects delivers best-effort notifications; failures are logged only.
type sideEffects struct {
	notifier  Notifier
	publisher EventPublisher
}

func (s sideEffects) notify(ctx context.Context, msg *queue.NotificationMessage) {
	if s.notifier == nil || msg.To == "" {
		return
	}
	if err := s.notifier.Push(ctx, msg); err != nil {
		log.Warn().Err(err).Str("kind", msg.Kind).Int64("user_id", msg.UserID).Msg("failed to enqueue notification")
	}
}

func (s sideEffects) publish(ctx context.Context, event *pubsub.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Warn().Err(err).Str("type", event.Type).Msg("failed to publish event")
	}
}
