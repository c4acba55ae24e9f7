package ws

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/pkg/pubsub"
)

// Hub tracks open connections per user. It is per-process: events reach
// other instances through redis pub/sub.
type Hub struct {
	// a user may hold several connections (tabs, reconnects)
	clients   map[int64]map[*Client]struct{}
	mu        sync.RWMutex
	writeWait time.Duration
}

// defaultWriteWait bounds a single write; without redis events are written
// from inside the request handler.
const defaultWriteWait = 2 * time.Second

type Client struct {
	UserID    int64
	Moderator bool
	Conn      *websocket.Conn
	mu        sync.Mutex // serializes writes
}

type Message struct {
	Type string      `json:"type"`
	Data interface{} `json:"data"`
}

func NewHub() *Hub {
	return &Hub{
		clients:   make(map[int64]map[*Client]struct{}),
		writeWait: defaultWriteWait,
	}
}

func (h *Hub) Register(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[client.UserID] == nil {
		h.clients[client.UserID] = make(map[*Client]struct{})
	}
	h.clients[client.UserID][client] = struct{}{}

	log.Debug().
		Int64("user_id", client.UserID).
		Bool("moderator", client.Moderator).
		Int("user_conns", len(h.clients[client.UserID])).
		Msg("websocket connected")
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if conns, ok := h.clients[client.UserID]; ok {
		delete(conns, client)
		if len(conns) == 0 {
			delete(h.clients, client.UserID)
		}
	}
	log.Debug().Int64("user_id", client.UserID).Msg("websocket disconnected")
}

// SendToUser writes msg to every connection of userID.
func (h *Hub) SendToUser(userID int64, msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	conns := h.clients[userID]
	clients := make([]*Client, 0, len(conns))
	for c := range conns {
		clients = append(clients, c)
	}
	h.mu.RUnlock()

	h.write(clients, data)
	return nil
}

// SendToModerators writes msg to every moderator connection.
func (h *Hub) SendToModerators(msg *Message) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	h.mu.RLock()
	var clients []*Client
	for _, conns := range h.clients {
		for c := range conns {
			if c.Moderator {
				clients = append(clients, c)
			}
		}
	}
	h.mu.RUnlock()

	h.write(clients, data)
	return nil
}

// Dispatch routes a domain event to its audience on this instance.
func (h *Hub) Dispatch(event *pubsub.Event) error {
	msg := &Message{Type: event.Type, Data: event}
	if event.Audience == pubsub.AudienceModerators {
		return h.SendToModerators(msg)
	}
	return h.SendToUser(event.UserID, msg)
}

// Publish lets the hub stand in for the redis publisher on a single instance.
func (h *Hub) Publish(_ context.Context, event *pubsub.Event) error {
	if event.Audience == "" {
		event.Audience = pubsub.AudienceUser
	}
	return h.Dispatch(event)
}

func (h *Hub) write(clients []*Client, data []byte) {
	for _, c := range clients {
		c.mu.Lock()
		c.Conn.SetWriteDeadline(time.Now().Add(h.writeWait))
		err := c.Conn.WriteMessage(websocket.TextMessage, data)
		c.mu.Unlock()
		if err != nil {
			log.Warn().Err(err).Int64("user_id", c.UserID).Msg("websocket write failed")
			// a timed out connection is unusable; closing ends its read loop
			c.Conn.Close()
		}
	}
}

func (h *Hub) IsOnline(userID int64) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	conns, ok := h.clients[userID]
	return ok && len(conns) > 0
}

func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	total := 0
	for _, conns := range h.clients {
		total += len(conns)
	}
	return total
}
