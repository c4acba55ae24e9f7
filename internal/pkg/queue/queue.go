package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// Notification kinds delivered by the worker.
const (
	KindFeedbackResponded = "feedback_responded"
	KindFeedbackResolved  = "feedback_resolved"
	KindTribunalApproved  = "tribunal_approved"
	KindTribunalRejected  = "tribunal_rejected"
)

type Queue struct {
	client    *redis.Client
	queueName string
}

// NotificationMessage is one e-mail notification job.
type NotificationMessage struct {
	Kind     string            `json:"kind"`
	UserID   int64             `json:"user_id"`
	To       string            `json:"to"`
	Nickname string            `json:"nickname"`
	Data     map[string]string `json:"data,omitempty"`
}

func NewQueue(client *redis.Client, queueName string) *Queue {
	return &Queue{
		client:    client,
		queueName: queueName,
	}
}

// Push enqueues a notification.
func (q *Queue) Push(ctx context.Context, msg *NotificationMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	return q.client.LPush(ctx, q.queueName, data).Err()
}

// Pop blocks up to timeout; (nil, nil) means the queue stayed empty.
func (q *Queue) Pop(ctx context.Context, timeout time.Duration) (*NotificationMessage, error) {
	result, err := q.client.BRPop(ctx, timeout, q.queueName).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to pop from queue: %w", err)
	}

	if len(result) < 2 {
		return nil, nil
	}

	var msg NotificationMessage
	if err := json.Unmarshal([]byte(result[1]), &msg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal message: %w", err)
	}

	return &msg, nil
}

func (q *Queue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, q.queueName).Result()
}
