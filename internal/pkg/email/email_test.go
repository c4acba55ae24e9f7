package email

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/pkg/queue"
)

func TestRender(t *testing.T) {
	t.Run("feedback responded escapes user text", func(t *testing.T) {
		subject, body, err := Render(&queue.NotificationMessage{
			Kind:     queue.KindFeedbackResponded,
			Nickname: "Luke",
			Data: map[string]string{
				"subject":  "Error en el dashboard",
				"response": "<script>alert(1)</script>",
			},
		}, "https://cryptoforce.example/")

		require.NoError(t, err)
		assert.Equal(t, "Respuesta a tu ticket - Crypto Force", subject)
		assert.Contains(t, body, "Hola Luke")
		assert.Contains(t, body, "Error en el dashboard")
		assert.Contains(t, body, "https://cryptoforce.example/dashboard/feedback")
		assert.NotContains(t, body, "<script>")
	})

	t.Run("tribunal rejected with reason", func(t *testing.T) {
		_, body, err := Render(&queue.NotificationMessage{
			Kind: queue.KindTribunalRejected,
			Data: map[string]string{"title": "Velas japonesas", "reason": "Faltan fuentes"},
		}, "https://cryptoforce.example")

		require.NoError(t, err)
		assert.Contains(t, body, "Velas japonesas")
		assert.Contains(t, body, "Motivo: Faltan fuentes")
		assert.Contains(t, body, "Hola guerrero")
	})

	t.Run("tribunal rejected without reason", func(t *testing.T) {
		_, body, err := Render(&queue.NotificationMessage{
			Kind: queue.KindTribunalRejected,
			Data: map[string]string{"title": "Velas japonesas"},
		}, "")

		require.NoError(t, err)
		assert.NotContains(t, body, "Motivo")
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, _, err := Render(&queue.NotificationMessage{Kind: "newsletter"}, "")
		assert.Error(t, err)
	})
}

func TestDeliver_NoRecipient(t *testing.T) {
	svc := NewService(&config.EmailConfig{SMTPHost: "localhost", SMTPPort: 25}, "")

	err := svc.Deliver(&queue.NotificationMessage{Kind: queue.KindFeedbackResolved})
	assert.Error(t, err)
}
