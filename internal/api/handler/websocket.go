package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cryptoforce/platform/internal/api/middleware"
	"github.com/cryptoforce/platform/internal/pkg/access"
	"github.com/cryptoforce/platform/internal/pkg/identity"
	"github.com/cryptoforce/platform/internal/pkg/response"
	"github.com/cryptoforce/platform/internal/pkg/ws"
)

type WebSocketHandler struct {
	hub      *ws.Hub
	verifier identity.Verifier
	profiles middleware.ProfileLoader
	gate     *access.Gate
	upgrader websocket.Upgrader
}

// NewWebSocketHandler only accepts browser origins from allowedOrigins;
// "*" accepts any.
func NewWebSocketHandler(
	hub *ws.Hub,
	verifier identity.Verifier,
	profiles middleware.ProfileLoader,
	gate *access.Gate,
	allowedOrigins []string,
) *WebSocketHandler {
	origins := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = true
	}

	return &WebSocketHandler{
		hub:      hub,
		verifier: verifier,
		profiles: profiles,
		gate:     gate,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins["*"] || origins[origin]
			},
		},
	}
}

// Handle upgrades an authenticated connection. Browsers cannot set headers
// on websocket requests, so the token travels in the query string.
// GET /api/v1/ws?token=xxx
func (h *WebSocketHandler) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.AuthError(c, "Token requerido")
		return
	}

	user, err := middleware.Authenticate(c.Request.Context(), h.verifier, h.profiles, token)
	if err != nil {
		response.AuthError(c, "Sesión inválida o expirada")
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Int64("user_id", user.ID).Msg("failed to upgrade websocket")
		return
	}

	client := &ws.Client{
		UserID:    user.ID,
		Moderator: h.gate.CanModerate(user.UserLevel, user.Email),
		Conn:      conn,
	}

	h.hub.Register(client)

	// reads only detect disconnects
	go func() {
		defer func() {
			h.hub.Unregister(client)
			conn.Close()
		}()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}
