package mailer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingMailer struct {
	calls int
	last  *Message
}

func (m *countingMailer) Send(_ context.Context, msg *Message) (*Result, error) {
	m.calls++
	m.last = msg
	return &Result{Success: true, MessageID: "counted"}, nil
}

func TestSwitcherFillsTextPart(t *testing.T) {
	backend := &countingMailer{}
	sw := NewSwitcher(backend)

	_, err := sw.Send(context.Background(), &Message{
		To:      "a@x.com",
		Subject: "Hi",
		HTML:    "<p>Hello <strong>there</strong></p>",
	})
	require.NoError(t, err)
	require.NotNil(t, backend.last)
	assert.Contains(t, backend.last.Text, "Hello there")
}

func TestSwitcherKeepsExplicitText(t *testing.T) {
	backend := &countingMailer{}
	sw := NewSwitcher(backend)

	_, err := sw.Send(context.Background(), &Message{
		To:   "a@x.com",
		HTML: "<p>ignored</p>",
		Text: "already set",
	})
	require.NoError(t, err)
	assert.Equal(t, "already set", backend.last.Text)
}

func TestSwitcherSetActive(t *testing.T) {
	first := &countingMailer{}
	second := &countingMailer{}
	sw := NewSwitcher(first)

	_, err := sw.Send(context.Background(), &Message{To: "a@x.com", HTML: "<p>x</p>"})
	require.NoError(t, err)

	sw.SetActive(second)
	_, err = sw.Send(context.Background(), &Message{To: "b@x.com", HTML: "<p>y</p>"})
	require.NoError(t, err)

	assert.Equal(t, 1, first.calls)
	assert.Equal(t, 1, second.calls)
}

func TestSwitcherNilBackendFallsBackToMock(t *testing.T) {
	sw := NewSwitcher(nil)

	result, err := sw.Send(context.Background(), &Message{To: "a@x.com", Subject: "Hi", HTML: "<p>x</p>"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.MessageID, "mock-"))
}

func TestMockSenderSucceeds(t *testing.T) {
	m := &MockSender{latency: 1}

	result, err := m.Send(context.Background(), &Message{To: "a@x.com", Subject: "Hi"})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.True(t, strings.HasPrefix(result.MessageID, "mock-"))
}

func TestMockSenderRespectsContext(t *testing.T) {
	m := NewMockSender()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := m.Send(ctx, &Message{To: "a@x.com"})
	require.NoError(t, err)
	assert.False(t, result.Success)
}
