package utils

import (
	"context"
	"crypto/tls"
	"fmt"

	"github.com/badoux/checkmail"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the outgoing mail settings of the notifier
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
}

// SMTPNotifier delivers plain-text notifications through an SMTP relay.
type SMTPNotifier struct {
	cfg    SMTPConfig
	dialer *gomail.Dialer
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	dialer := gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	dialer.TLSConfig = &tls.Config{ServerName: cfg.Host}
	return &SMTPNotifier{cfg: cfg, dialer: dialer}
}

// Notify sends one message. gomail has no context support, so the send runs in
// its own goroutine and Notify returns when ctx is done even if the relay hangs.
func (n *SMTPNotifier) Notify(ctx context.Context, to, subject, body string) error {
	if err := checkmail.ValidateFormat(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", m.FormatAddress(n.cfg.FromEmail, n.cfg.FromName))
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetHeader("Auto-Submitted", "auto-generated")
	m.SetBody("text/plain", body)

	done := make(chan error, 1)
	go func() {
		done <- n.dialer.DialAndSend(m)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("send failed: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("send to %s abandoned: %w", to, ctx.Err())
	}
}

// LogNotifier only logs notifications. It is used when no SMTP relay is configured.
type LogNotifier struct {
	Log *logrus.Entry
}

func (n LogNotifier) Notify(_ context.Context, to, subject, _ string) error {
	n.Log.WithFields(logrus.Fields{
		"to":      to,
		"subject": subject,
	}).Info("Notification not sent, no SMTP relay configured")
	return nil
}
