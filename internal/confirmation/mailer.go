package confirmation

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/binarymart/storefront-backend/pkg/config"
)

// Mailer delivers one rendered message.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMTPMailer sends plain-text mail over SMTP with optional auth.
type SMTPMailer struct {
	cfg config.SMTPConfig
}

// NewSMTPMailer builds a mailer from the SMTP configuration.
func NewSMTPMailer(cfg config.SMTPConfig) (*SMTPMailer, error) {
	if !cfg.Enabled() {
		return nil, fmt.Errorf("smtp host and from address are required")
	}
	return &SMTPMailer{cfg: cfg}, nil
}

// Send delivers the message. The context deadline is honored only up to the
// point the SMTP dial starts; net/smtp does not take a context.
func (m *SMTPMailer) Send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var auth smtp.Auth
	if m.cfg.Username != "" {
		auth = smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "From: %s\r\n", m.cfg.From)
	fmt.Fprintf(&msg, "To: %s\r\n", to)
	fmt.Fprintf(&msg, "Subject: %s\r\n", subject)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=utf-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	if err := smtp.SendMail(m.cfg.Addr(), auth, m.cfg.From, []string{to}, []byte(msg.String())); err != nil {
		return fmt.Errorf("sending mail to %s: %w", to, err)
	}
	return nil
}
