package service

import (
	"context"
	"errors"
	"sync"

	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/pubsub"
	"github.com/cryptoforce/platform/internal/pkg/queue"
)

const (
	testFounderEmail = "fundador@cryptoforce.test"
	testMaestroEmail = "maestro@cryptoforce.test"
)

func testGate() *access.Gate {
	return access.NewGate([]string{testFounderEmail}, []string{testMaestroEmail})
}

type fakeNotifier struct {
	mu       sync.Mutex
	messages []*queue.NotificationMessage
	err      error
}

func (f *fakeNotifier) Push(_ context.Context, msg *queue.NotificationMessage) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.messages = append(f.messages, msg)
	return nil
}

func (f *fakeNotifier) kinds() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.messages))
	for _, m := range f.messages {
		out = append(out, m.Kind)
	}
	return out
}

type fakePublisher struct {
	mu     sync.Mutex
	events []*pubsub.Event
}

func (f *fakePublisher) Publish(_ context.Context, event *pubsub.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
	return nil
}

func (f *fakePublisher) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
	fail     bool
}

func (f *fakeStorage) UploadAvatar(uid string, data []byte, ext string) (string, error) {
	if f.fail {
		return "", errors.New("oss unavailable")
	}
	url := "https://cdn.example.com/avatars/" + uid + ext
	f.uploaded = append(f.uploaded, url)
	return url, nil
}

func (f *fakeStorage) Delete(url string) error {
	f.deleted = append(f.deleted, url)
	return nil
}
