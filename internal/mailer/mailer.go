// Package mailer abstracts the single outbound mail transport. Backends
// report ordinary delivery failures through Result.Success=false; an
// error return is reserved for catastrophic misconfiguration (no client,
// bad credentials shape), never for bounces or refusals.
package mailer

import (
	"context"
	"sync"

	jhtml2text "github.com/jaytaylor/html2text"

	"github.com/ignite/outreach/internal/domain"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// Message is one email ready for delivery.
type Message struct {
	To          string
	Subject     string
	HTML        string
	Text        string
	FromName    string
	FromEmail   string
	Attachments []domain.Attachment
}

// Result is the outcome of one send attempt.
type Result struct {
	Success   bool
	MessageID string
	Error     string
}

// Mailer submits one message to the outbound transport.
type Mailer interface {
	Send(ctx context.Context, msg *Message) (*Result, error)
}

// Switcher is the process-wide transport: it owns the active backend and
// allows runtime reconfiguration (the SMTP config endpoint swaps it).
// All dispatch runs share one Switcher, so sends stay serialized on a
// single transport by construction.
type Switcher struct {
	mu     sync.RWMutex
	active Mailer
}

// NewSwitcher creates a Switcher with the given initial backend.
// A nil backend falls back to the mock transport.
func NewSwitcher(initial Mailer) *Switcher {
	if initial == nil {
		initial = NewMockSender()
	}
	return &Switcher{active: initial}
}

// SetActive swaps the backend. In-flight sends finish on the old one.
func (s *Switcher) SetActive(m Mailer) {
	s.mu.Lock()
	s.active = m
	s.mu.Unlock()
	logger.Info("mail transport reconfigured")
}

// Send fills in the plain-text alternative part when absent, then
// delegates to the active backend.
func (s *Switcher) Send(ctx context.Context, msg *Message) (*Result, error) {
	if msg.Text == "" {
		msg.Text = plainText(msg.HTML)
	}

	s.mu.RLock()
	active := s.active
	s.mu.RUnlock()
	return active.Send(ctx, msg)
}

// plainText derives the text/plain alternative from the HTML part.
// Conversion failures just mean no text part; the HTML still goes out.
func plainText(html string) string {
	text, err := jhtml2text.FromString(html, jhtml2text.Options{TextOnly: true})
	if err != nil {
		return ""
	}
	return text
}
