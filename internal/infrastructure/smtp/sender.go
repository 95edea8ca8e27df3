package smtp

import (
	"context"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"
	"github.com/go-otp-api/internal/config"
)

// Sender submits messages directly through an authenticated SMTP account
// (the "direct" transport).
type Sender struct {
	host string
	port int
	user string
	pass string
	from string
	name string
}

func NewSender(cfg *config.Config) *Sender {
	return &Sender{
		host: cfg.SMTPHost,
		port: cfg.SMTPPort,
		user: cfg.SMTPUsername,
		pass: cfg.SMTPPassword,
		from: cfg.SenderEmail,
		name: cfg.SenderName,
	}
}

func (s *Sender) Send(_ context.Context, to, subject, textBody, htmlBody string) error {
	m := mail.NewMessage()
	m.SetAddressHeader("From", s.from, s.name)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)

	// multipart/alternative when both bodies are present
	if textBody != "" {
		m.SetBody("text/plain", textBody)
		if htmlBody != "" {
			m.AddAlternative("text/html", htmlBody)
		}
	} else {
		m.SetBody("text/html", htmlBody)
	}

	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	d.Timeout = 10 * time.Second

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("smtp send to %s: %w", to, err)
	}
	return nil
}
