package mailer

import (
	"context"
	"fmt"
	"time"

	mail "github.com/go-mail/mail"

	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// SMTPSender delivers mail through a single SMTP account.
type SMTPSender struct {
	host    string
	port    int
	user    string
	pass    string
	timeout time.Duration
}

// NewSMTPSender creates an SMTP sender from static config.
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return &SMTPSender{
		host:    cfg.Host,
		port:    cfg.Port,
		user:    cfg.User,
		pass:    cfg.Pass,
		timeout: cfg.Timeout(),
	}
}

// NewSMTPSenderWithCredentials creates an SMTP sender for credentials
// supplied at runtime through the config endpoint, keeping the
// configured host/port.
func NewSMTPSenderWithCredentials(cfg config.SMTPConfig, user, pass string) *SMTPSender {
	cfg.User = user
	cfg.Pass = pass
	return NewSMTPSender(cfg)
}

// Send delivers one message. Delivery refusals come back as
// Result.Success=false; only a missing account is an error. The SMTP
// server rejects mismatched From headers, so mail goes out from the
// authenticated account address rather than the sender-details one.
func (s *SMTPSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	if s.user == "" || s.pass == "" {
		return nil, fmt.Errorf("smtp transport not configured")
	}

	from := msg.FromEmail
	if s.user != "" {
		from = s.user
	}

	m := mail.NewMessage()
	m.SetAddressHeader("From", from, msg.FromName)
	m.SetHeader("To", msg.To)
	m.SetHeader("Subject", msg.Subject)

	// multipart/alternative: text first, HTML preferred
	if msg.Text != "" {
		m.SetBody("text/plain", msg.Text)
		m.AddAlternative("text/html", msg.HTML)
	} else {
		m.SetBody("text/html", msg.HTML)
	}

	for _, att := range msg.Attachments {
		m.Attach(att.Path, mail.Rename(att.Filename))
	}

	d := mail.NewDialer(s.host, s.port, s.user, s.pass)
	d.Timeout = s.timeout

	if err := d.DialAndSend(m); err != nil {
		logger.Warn("smtp send failed", "to", msg.To, "err", err)
		return &Result{Success: false, Error: err.Error()}, nil
	}

	logger.Info("smtp send ok", "to", msg.To, "subject", msg.Subject)
	return &Result{
		Success:   true,
		MessageID: fmt.Sprintf("smtp-%d", time.Now().UnixNano()),
	}, nil
}
