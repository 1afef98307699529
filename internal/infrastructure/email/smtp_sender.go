package email

import (
	"context"

	"github.com/manorfm/scholarship-auth/internal/domain"
	"github.com/manorfm/scholarship-auth/internal/infrastructure/config"
	"gopkg.in/gomail.v2"
)

// mailDialer is the part of gomail.Dialer used here.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers multipart text and HTML messages over SMTP.
type SMTPSender struct {
	dialer   mailDialer
	from     string
	fromName string
}

func NewSMTPSender(cfg *config.EmailConfig) *SMTPSender {
	d := gomail.NewDialer(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password)
	d.SSL = cfg.SMTP.UseTLS
	return &SMTPSender{dialer: d, from: cfg.From, fromName: cfg.FromName}
}

// Send blocks until the SMTP exchange finishes or ctx is done. A cancelled
// send may still complete in the background.
func (s *SMTPSender) Send(ctx context.Context, msg *domain.EmailMessage) error {
	m := gomail.NewMessage()
	m.SetAddressHeader("From", s.from, s.fromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.Text)
	if msg.HTML != "" {
		m.AddAlternative("text/html", msg.HTML)
	}

	done := make(chan error, 1)
	go func() {
		done <- s.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
