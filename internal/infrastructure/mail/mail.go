// Package mail delivers list notifications by SMTP.
package mail

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"strings"
	"text/template"
	"time"

	"github.com/go-mail/mail/v2"
	"github.com/rs/zerolog"

	"github.com/listshare/todo-share/internal/core/domain"
	"github.com/listshare/todo-share/internal/core/ports"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var listShared = template.Must(template.ParseFS(templateFS, "templates/list_shared.tmpl"))

type sender interface {
	DialAndSend(m ...*mail.Message) error
}

// Config holds SMTP settings.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
	// Timeout bounds SMTP dial and I/O. Zero keeps the dialer default.
	Timeout  time.Duration
}

// Mailer sends one message per notification and never retries.
type Mailer struct {
	dialer sender
	sender string
}

var _ ports.Notifier = (*Mailer)(nil)

func NewMailer(cfg Config) *Mailer {
	d := mail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	if cfg.Timeout > 0 {
		d.Timeout = cfg.Timeout
	}
	return &Mailer{dialer: d, sender: cfg.Sender}
}

func (m *Mailer) Notify(ctx context.Context, n domain.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	subject, body, err := render(n)
	if err != nil {
		return err
	}

	msg := mail.NewMessage()
	msg.SetHeader("To", n.ToEmail)
	msg.SetHeader("From", m.sender)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func render(n domain.Notification) (subject, body string, err error) {
	var s, b bytes.Buffer
	if err := listShared.ExecuteTemplate(&s, "subject", n); err != nil {
		return "", "", fmt.Errorf("render subject: %w", err)
	}
	if err := listShared.ExecuteTemplate(&b, "plainBody", n); err != nil {
		return "", "", fmt.Errorf("render body: %w", err)
	}
	return strings.TrimSpace(s.String()), b.String(), nil
}

// LogNotifier writes notifications to the log instead of sending them.
// It stands in for Mailer when no SMTP host is configured.
type LogNotifier struct {
	log zerolog.Logger
}

var _ ports.Notifier = (*LogNotifier)(nil)

func NewLogNotifier(log zerolog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (l *LogNotifier) Notify(_ context.Context, n domain.Notification) error {
	subject, body, err := render(n)
	if err != nil {
		return err
	}
	l.log.Info().
		Str("to", n.ToEmail).
		Str("subject", subject).
		Str("body", body).
		Msg("notification (smtp disabled)")
	return nil
}
