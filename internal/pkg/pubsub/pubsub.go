package pubsub

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
)

const (
	ChannelEvents = "cryptoforce_events"
)

// Event types
const (
	EventFeedbackCreated   = "feedback_created"
	EventFeedbackResponded = "feedback_responded"
	EventFeedbackResolved  = "feedback_resolved"
	EventTribunalSubmitted = "tribunal_submitted"
	EventTribunalReviewed  = "tribunal_reviewed"
)

// Audiences
const (
	AudienceUser       = "user"
	AudienceModerators = "moderators"
)

// Event is a domain event pushed to connected websocket clients.
// UserID is the recipient when Audience is AudienceUser.
type Event struct {
	Type       string `json:"type"`
	Audience   string `json:"audience"`
	UserID     int64  `json:"user_id,omitempty"`
	ResourceID int64  `json:"resource_id"`
	Status     string `json:"status,omitempty"`
	Message    string `json:"message,omitempty"`
}

type Publisher struct {
	client *redis.Client
}

func NewPublisher(client *redis.Client) *Publisher {
	return &Publisher{client: client}
}

// Publish sends an event on the shared channel.
func (p *Publisher) Publish(ctx context.Context, event *Event) error {
	if event.Audience == "" {
		event.Audience = AudienceUser
	}

	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	return p.client.Publish(ctx, ChannelEvents, data).Err()
}

type Subscriber struct {
	client *redis.Client
}

func NewSubscriber(client *redis.Client) *Subscriber {
	return &Subscriber{client: client}
}

// Subscribe blocks until ctx is done, calling handler for every event.
func (s *Subscriber) Subscribe(ctx context.Context, handler func(*Event)) error {
	pubsub := s.client.Subscribe(ctx, ChannelEvents)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("failed to subscribe: %w", err)
	}

	ch := pubsub.Channel()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}

			var event Event
			if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
				continue
			}

			handler(&event)
		}
	}
}
