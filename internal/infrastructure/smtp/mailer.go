package smtp

import (
	"context"

	"github.com/go-label-api/internal/config"
	"gopkg.in/gomail.v2"
)

// Mailer sends plain-text emails through an SMTP relay.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	send   func(...*gomail.Message) error
}

func NewMailer(cfg *config.Config) *Mailer {
	d := gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword)
	return &Mailer{dialer: d, from: cfg.SMTPFrom, send: d.DialAndSend}
}

func (m *Mailer) SendEmail(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return m.send(msg)
}
