package notify

import (
	"context"
	"errors"

	"hospital-equipment-tracker/internal/config"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// EmailNotifier sends plain-text reminder digests over SMTP
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

// NewEmailNotifier returns nil when no SMTP host is configured
func NewEmailNotifier(cfg config.SMTPConfig, log *zap.Logger) *EmailNotifier {
	if cfg.Host == "" {
		log.Info("SMTP_HOST not set; email reminders disabled")
		return nil
	}
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:   cfg.From,
		log:    log,
	}
}

func (n *EmailNotifier) Send(ctx context.Context, to []string, subject, body string) error {
	if len(to) == 0 {
		return errors.New("no recipients")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := n.message(to, subject, body)
	if err := n.dialer.DialAndSend(msg); err != nil {
		return err
	}

	n.log.Debug("Email sent", zap.Strings("to", to), zap.String("subject", subject))
	return nil
}

func (n *EmailNotifier) message(to []string, subject, body string) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", n.from)
	msg.SetHeader("To", to...)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", body)
	return msg
}
