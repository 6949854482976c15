package mailer

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"
)

// MockSender is the transport used when no real backend is configured.
// It logs the message, simulates delivery latency, and reports success,
// so the full pipeline can be exercised without an SMTP account.
type MockSender struct {
	latency time.Duration
}

// NewMockSender creates a mock transport with realistic send latency.
func NewMockSender() *MockSender {
	return &MockSender{latency: 500 * time.Millisecond}
}

// Send pretends to deliver the message.
func (m *MockSender) Send(ctx context.Context, msg *Message) (*Result, error) {
	select {
	case <-time.After(m.latency):
	case <-ctx.Done():
		return &Result{Success: false, Error: ctx.Err().Error()}, nil
	}

	log.Printf("[MOCK EMAIL] To: %s | Subject: %s", msg.To, msg.Subject)
	if len(msg.Attachments) > 0 {
		names := make([]string, len(msg.Attachments))
		for i, att := range msg.Attachments {
			names[i] = att.Filename
		}
		log.Printf("[MOCK FILES]: %s", strings.Join(names, ", "))
	}

	return &Result{
		Success:   true,
		MessageID: fmt.Sprintf("mock-%d", time.Now().UnixMilli()),
	}, nil
}
