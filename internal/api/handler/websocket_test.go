package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoforce/platform/internal/pkg/identity"
	"github.com/cryptoforce/platform/internal/pkg/jwt"
	"github.com/cryptoforce/platform/internal/pkg/ws"
	"github.com/cryptoforce/platform/internal/testutil"
)

func TestWebSocketHandler(t *testing.T) {
	env, cleanup := setupEnv(t)
	defer cleanup()

	hub := ws.NewHub()
	h := NewWebSocketHandler(hub, identity.NewLocalVerifier(testSecret), env.Auth, env.Gate, []string{"*"})

	router := gin.New()
	router.GET("/ws", h.Handle)
	server := httptest.NewServer(router)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "/ws"

	t.Run("missing token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("invalid token", func(t *testing.T) {
		_, resp, err := websocket.DefaultDialer.Dial(wsURL+"?token=bogus", nil)
		require.Error(t, err)
		require.NotNil(t, resp)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	})

	t.Run("moderator connection", func(t *testing.T) {
		maestro := testutil.TestUser(t, env.DB, testutil.WithEmail(testMaestroEmail), testutil.WithLevel(6))
		token, err := jwt.GenerateToken(maestro.UID, maestro.Email, testSecret, 1)
		require.NoError(t, err)

		conn, _, err := websocket.DefaultDialer.Dial(wsURL+"?token="+token, nil)
		require.NoError(t, err)
		defer conn.Close()

		require.Eventually(t, func() bool { return hub.IsOnline(maestro.ID) }, time.Second, 10*time.Millisecond)

		require.NoError(t, hub.SendToModerators(&ws.Message{Type: "tribunal_submitted"}))
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, received, err := conn.ReadMessage()
		require.NoError(t, err)
		assert.Contains(t, string(received), "tribunal_submitted")
	})
}
