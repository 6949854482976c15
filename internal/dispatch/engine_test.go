package dispatch

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/domain"
	"github.com/ignite/outreach/internal/mailer"
)

// scriptedMailer returns one scripted outcome per call, in order. A true
// entry succeeds, a false entry is refused. Calls beyond the script
// succeed.
type scriptedMailer struct {
	mu       sync.Mutex
	script   []bool
	calls    int
	messages []mailer.Message
}

func (m *scriptedMailer) Send(_ context.Context, msg *mailer.Message) (*mailer.Result, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, *msg)
	ok := true
	if m.calls < len(m.script) {
		ok = m.script[m.calls]
	}
	m.calls++
	if !ok {
		return &mailer.Result{Success: false, Error: "relay refused"}, nil
	}
	return &mailer.Result{Success: true, MessageID: "id"}, nil
}

func newTestEngine(transport mailer.Mailer) (*Engine, *[]time.Duration) {
	e := NewEngine(transport, config.DispatchConfig{
		MaxRetries:        3,
		RateLimitMillis:   2000,
		BackoffStepMillis: 2000,
	})
	sleeps := &[]time.Duration{}
	e.sleep = func(d time.Duration) { *sleeps = append(*sleeps, d) }
	return e, sleeps
}

func recipients(emails ...string) []domain.ResolvedRecipient {
	out := make([]domain.ResolvedRecipient, 0, len(emails))
	for _, e := range emails {
		out = append(out, domain.ResolvedRecipient{Email: e})
	}
	return out
}

func collectEvents(t *testing.T, run func(EventFunc)) []domain.Event {
	t.Helper()
	var events []domain.Event
	run(func(ev domain.Event) { events = append(events, ev) })
	return events
}

func TestRunAllSucceed(t *testing.T) {
	transport := &scriptedMailer{}
	e, sleeps := newTestEngine(transport)

	spec := domain.CampaignSpec{Subject: "Hi", BodyTemplate: "<p>x</p>"}
	events := collectEvents(t, func(onEvent EventFunc) {
		e.run("c1", recipients("a@x.com", "b@x.com", "c@x.com"), spec, onEvent)
	})

	require.Len(t, events, 4)
	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		assert.Equal(t, domain.EventSent, events[i].Type)
		assert.Equal(t, email, events[i].Email)
	}
	assert.Equal(t, domain.EventCompleted, events[3].Type)

	// One rate-limit pause after every recipient, last included.
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second, 2 * time.Second}, *sleeps)
	assert.Equal(t, 3, transport.calls)
}

func TestRunRetriesWithLinearBackoff(t *testing.T) {
	transport := &scriptedMailer{script: []bool{false, false, true}}
	e, sleeps := newTestEngine(transport)

	spec := domain.CampaignSpec{Subject: "Hi", BodyTemplate: "<p>x</p>"}
	events := collectEvents(t, func(onEvent EventFunc) {
		e.run("c1", recipients("a@x.com"), spec, onEvent)
	})

	require.Len(t, events, 2)
	assert.Equal(t, domain.EventSent, events[0].Type)
	assert.Equal(t, domain.EventCompleted, events[1].Type)
	assert.Equal(t, 3, transport.calls)

	// Backoff after attempts 1 and 2, then the inter-send delay.
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second, 2 * time.Second}, *sleeps)
}

func TestRunExhaustedRetriesMarksFailed(t *testing.T) {
	transport := &scriptedMailer{script: []bool{false, false, false}}
	e, _ := newTestEngine(transport)

	spec := domain.CampaignSpec{Subject: "Hi", BodyTemplate: "<p>x</p>"}
	events := collectEvents(t, func(onEvent EventFunc) {
		e.run("c1", recipients("a@x.com", "b@x.com"), spec, onEvent)
	})

	require.Len(t, events, 3)
	assert.Equal(t, domain.EventFailed, events[0].Type)
	assert.Equal(t, "a@x.com", events[0].Email)
	assert.Equal(t, domain.EventSent, events[1].Type)
	assert.Equal(t, "b@x.com", events[1].Email)
	assert.Equal(t, domain.EventCompleted, events[2].Type)

	// 3 exhausted attempts for the first recipient, 1 for the second.
	assert.Equal(t, 4, transport.calls)
}

func TestRunRendersPersonalizedMessages(t *testing.T) {
	transport := &scriptedMailer{}
	e, _ := newTestEngine(transport)

	spec := domain.CampaignSpec{
		Subject:       "Quarterly update",
		BodyTemplate:  "<p>Body</p>",
		SenderDetails: domain.SenderDetails{Name: "Ops", Email: "ops@x.com"},
	}
	recips := []domain.ResolvedRecipient{
		{Email: "a@x.com", Name: "Ann"},
		{Email: "b@x.com"},
	}
	collectEvents(t, func(onEvent EventFunc) {
		e.run("c1", recips, spec, onEvent)
	})

	require.Len(t, transport.messages, 2)
	first, second := transport.messages[0], transport.messages[1]

	assert.Equal(t, "a@x.com", first.To)
	assert.Equal(t, "Quarterly update", first.Subject)
	assert.Equal(t, "Ops", first.FromName)
	assert.Equal(t, "ops@x.com", first.FromEmail)
	assert.Contains(t, first.HTML, "Dear Ann,")
	assert.Contains(t, second.HTML, "Hello,")
}

func TestNewEngineDefaults(t *testing.T) {
	e := NewEngine(&scriptedMailer{}, config.DispatchConfig{})
	assert.Equal(t, 3, e.maxRetries)
	assert.Equal(t, 2*time.Second, e.backoffStep)
	assert.Equal(t, 2*time.Second, e.rateDelay)
}

func TestDispatchRunsInBackground(t *testing.T) {
	transport := &scriptedMailer{}
	e := NewEngine(transport, config.DispatchConfig{
		MaxRetries:        1,
		RateLimitMillis:   1,
		BackoffStepMillis: 1,
	})

	done := make(chan struct{})
	var mu sync.Mutex
	var events []domain.Event
	e.Dispatch("c1", recipients("a@x.com"), domain.CampaignSpec{Subject: "Hi", BodyTemplate: "<p>x</p>"}, func(ev domain.Event) {
		mu.Lock()
		events = append(events, ev)
		mu.Unlock()
		if ev.Type == domain.EventCompleted {
			close(done)
		}
	})

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("campaign did not complete")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventSent, events[0].Type)
	assert.Equal(t, domain.EventCompleted, events[1].Type)
}
