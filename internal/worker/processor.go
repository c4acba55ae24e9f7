package worker

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/pkg/queue"
)

const defaultPopTimeout = 5 * time.Second

// Source yields queued notifications. *queue.Queue satisfies it.
type Source interface {
	Pop(ctx context.Context, timeout time.Duration) (*queue.NotificationMessage, error)
}

// Mailer delivers one notification. *email.Service satisfies it.
type Mailer interface {
	Deliver(msg *queue.NotificationMessage) error
}

type Processor struct {
	source     Source
	mailer     Mailer
	workers    int
	popTimeout time.Duration
}

func NewProcessor(source Source, mailer Mailer, workers int) *Processor {
	if workers < 1 {
		workers = 1
	}
	return &Processor{
		source:     source,
		mailer:     mailer,
		workers:    workers,
		popTimeout: defaultPopTimeout,
	}
}

// Process delivers a single notification. Failures are logged and dropped.
func (p *Processor) Process(msg *queue.NotificationMessage) error {
	if msg.To == "" {
		log.Warn().Str("kind", msg.Kind).Int64("user_id", msg.UserID).Msg("notification without recipient skipped")
		return nil
	}

	start := time.Now()
	if err := p.mailer.Deliver(msg); err != nil {
		log.Error().Err(err).Str("kind", msg.Kind).Int64("user_id", msg.UserID).Msg("notification delivery failed")
		return err
	}

	log.Info().Str("kind", msg.Kind).Int64("user_id", msg.UserID).
		Dur("duration", time.Since(start)).Msg("notification delivered")
	return nil
}

// Run starts the worker goroutines and blocks until ctx is cancelled and
// every in-flight delivery has returned.
func (p *Processor) Run(ctx context.Context) {
	var wg sync.WaitGroup
	for i := 0; i < p.workers; i++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			p.loop(ctx, workerID)
		}(i)
	}

	log.Info().Int("workers", p.workers).Msg("notification worker started")
	wg.Wait()
	log.Info().Msg("notification worker stopped")
}

func (p *Processor) loop(ctx context.Context, workerID int) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := p.source.Pop(ctx, p.popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Error().Err(err).Int("worker", workerID).Msg("failed to pop notification")
			// avoid spinning while redis is unreachable
			select {
			case <-ctx.Done():
				return
			case <-time.After(time.Second):
			}
			continue
		}
		if msg == nil {
			continue
		}

		_ = p.Process(msg)
	}
}
