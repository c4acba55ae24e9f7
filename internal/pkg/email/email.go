package email

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"
	"strings"

	"github.com/cryptoforce/platform/config"
	"github.com/cryptoforce/platform/internal/pkg/queue"
)

const layout = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: Arial, sans-serif; line-height: 1.6; color: #333;">
    <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
        <h2 style="color: #b91c1c;">{{.Title}}</h2>
        <p>Hola {{.Nickname}},</p>
        {{.Body}}
        <div style="text-align: center; margin: 30px 0;">
            <a href="{{.Link}}" style="background-color: #b91c1c; color: white; padding: 12px 30px; text-decoration: none; border-radius: 5px; display: inline-block;">Ir a Crypto Force</a>
        </div>
        <hr style="border: none; border-top: 1px solid #e5e7eb; margin: 20px 0;">
        <p style="color: #6b7280; font-size: 12px;">Este correo fue enviado automáticamente, no respondas a este mensaje.</p>
    </div>
</body>
</html>
`

type notificationTemplate struct {
	subject string
	title   string
	body    string
	path    string
}

var templates = map[string]notificationTemplate{
	queue.KindFeedbackResponded: {
		subject: "Respuesta a tu ticket - Crypto Force",
		title:   "Tu ticket tiene una respuesta",
		body:    `<p>Un maestro respondió a tu ticket <strong>{{.subject}}</strong>:</p><blockquote style="background-color: #f3f4f6; padding: 15px;">{{.response}}</blockquote>`,
		path:    "/dashboard/feedback",
	},
	queue.KindFeedbackResolved: {
		subject: "Ticket resuelto - Crypto Force",
		title:   "Tu ticket fue resuelto",
		body:    `<p>Tu ticket <strong>{{.subject}}</strong> fue marcado como resuelto.</p>`,
		path:    "/dashboard/feedback",
	},
	queue.KindTribunalApproved: {
		subject: "Contenido aprobado - Tribunal Imperial",
		title:   "El Tribunal aprobó tu contenido",
		body:    `<p>Tu módulo <strong>{{.title}}</strong> fue aprobado y ya está publicado.</p>`,
		path:    "/dashboard/tribunal",
	},
	queue.KindTribunalRejected: {
		subject: "Contenido rechazado - Tribunal Imperial",
		title:   "El Tribunal rechazó tu contenido",
		body:    `<p>Tu módulo <strong>{{.title}}</strong> fue rechazado.</p>{{if .reason}}<p>Motivo: {{.reason}}</p>{{end}}`,
		path:    "/dashboard/tribunal",
	},
}

var page = template.Must(template.New("layout").Parse(layout))

// Render builds the subject and HTML body for a notification.
func Render(msg *queue.NotificationMessage, siteURL string) (string, string, error) {
	tpl, ok := templates[msg.Kind]
	if !ok {
		return "", "", fmt.Errorf("unknown notification kind %q", msg.Kind)
	}

	bodyTpl, err := template.New(msg.Kind).Option("missingkey=zero").Parse(tpl.body)
	if err != nil {
		return "", "", err
	}
	var inner bytes.Buffer
	if err := bodyTpl.Execute(&inner, msg.Data); err != nil {
		return "", "", fmt.Errorf("failed to render %s: %w", msg.Kind, err)
	}

	nickname := msg.Nickname
	if nickname == "" {
		nickname = "guerrero"
	}

	var out bytes.Buffer
	err = page.Execute(&out, map[string]interface{}{
		"Title":    tpl.title,
		"Nickname": nickname,
		"Body":     template.HTML(inner.String()),
		"Link":     strings.TrimRight(siteURL, "/") + tpl.path,
	})
	if err != nil {
		return "", "", fmt.Errorf("failed to render layout: %w", err)
	}

	return tpl.subject, out.String(), nil
}

type Service struct {
	cfg     *config.EmailConfig
	siteURL string
}

func NewService(cfg *config.EmailConfig, siteURL string) *Service {
	return &Service{cfg: cfg, siteURL: siteURL}
}

// Deliver renders and sends one notification.
func (s *Service) Deliver(msg *queue.NotificationMessage) error {
	if msg.To == "" {
		return fmt.Errorf("notification %s has no recipient", msg.Kind)
	}

	subject, body, err := Render(msg, s.siteURL)
	if err != nil {
		return err
	}

	return s.sendHTML(msg.To, subject, body)
}

func (s *Service) sendHTML(to, subject, body string) error {
	headers := [][2]string{
		{"From", s.cfg.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var msg strings.Builder
	for _, h := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", h[0], h[1]))
	}
	msg.WriteString("\r\n")
	msg.WriteString(body)

	auth := smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.SMTPHost)
	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)

	return smtp.SendMail(addr, auth, s.cfg.From, []string{to}, []byte(msg.String()))
}
