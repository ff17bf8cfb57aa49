// Package notify sends the application's emails: oversum notices to a user and the
// accountant, and the weekly order export to the kitchen.
package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"

	"github.com/mmynk/smakolyk/internal/config"
)

// Message is a plain-text email.
type Message struct {
	To      []string
	Subject string
	Body    string
	// Attachments are paths of files attached to the email.
	Attachments []string
}

// Sender delivers messages.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// SMTPSender delivers messages through an SMTP relay.
type SMTPSender struct {
	cfg config.MailConfig
}

// NewSMTPSender creates a sender for the configured relay.
func NewSMTPSender(cfg config.MailConfig) *SMTPSender {
	return &SMTPSender{cfg: cfg}
}

func (s *SMTPSender) Send(ctx context.Context, msg Message) error {
	m := mail.NewMsg()
	if err := m.From(s.cfg.From); err != nil {
		return fmt.Errorf("invalid sender %q: %w", s.cfg.From, err)
	}
	if err := m.To(msg.To...); err != nil {
		return fmt.Errorf("invalid recipients %v: %w", msg.To, err)
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	for _, path := range msg.Attachments {
		m.AttachFile(path)
	}

	opts := []mail.Option{
		mail.WithPort(s.cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if s.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.cfg.Username),
			mail.WithPassword(s.cfg.Password),
		)
	}

	client, err := mail.NewClient(s.cfg.Host, opts...)
	if err != nil {
		return fmt.Errorf("failed to create mail client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("failed to send %q: %w", msg.Subject, err)
	}
	return nil
}
