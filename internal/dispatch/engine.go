// Package dispatch runs campaign delivery: one background run per
// campaign, recipients processed strictly in order, one at a time, with
// bounded retries and a fixed inter-send delay protecting the shared
// mail transport.
package dispatch

import (
	"context"
	"time"

	"github.com/ignite/outreach/internal/composer"
	"github.com/ignite/outreach/internal/config"
	"github.com/ignite/outreach/internal/domain"
	"github.com/ignite/outreach/internal/mailer"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// EventFunc receives status events in emission order. Sent/failed per
// recipient, then exactly one completed event after the last outcome.
type EventFunc func(domain.Event)

// Engine dispatches campaigns through the shared mail transport.
type Engine struct {
	transport   mailer.Mailer
	maxRetries  int
	backoffStep time.Duration
	rateDelay   time.Duration

	// sleep is swapped in tests so retry backoff and rate limiting run
	// without wall-clock waits.
	sleep func(time.Duration)
}

// NewEngine creates a dispatch engine over the given transport.
func NewEngine(transport mailer.Mailer, cfg config.DispatchConfig) *Engine {
	e := &Engine{
		transport:   transport,
		maxRetries:  cfg.MaxRetries,
		backoffStep: cfg.BackoffStep(),
		rateDelay:   cfg.RateLimitDelay(),
		sleep:       time.Sleep,
	}
	if e.maxRetries <= 0 {
		e.maxRetries = 3
	}
	if e.backoffStep <= 0 {
		e.backoffStep = 2 * time.Second
	}
	if e.rateDelay <= 0 {
		e.rateDelay = 2 * time.Second
	}
	return e
}

// Dispatch starts a campaign run in the background and returns
// immediately. The run cannot be cancelled once started; it always
// finishes every recipient and emits the terminal completed event.
func (e *Engine) Dispatch(campaignID string, recipients []domain.ResolvedRecipient, spec domain.CampaignSpec, onEvent EventFunc) {
	go e.run(campaignID, recipients, spec, onEvent)
}

func (e *Engine) run(campaignID string, recipients []domain.ResolvedRecipient, spec domain.CampaignSpec, onEvent EventFunc) {
	logger.Info("campaign run started", "campaign", campaignID, "recipients", len(recipients))

	comp := composer.New(spec)

	for _, recipient := range recipients {
		if e.deliver(campaignID, recipient, comp, spec) {
			onEvent(domain.Event{Type: domain.EventSent, Email: recipient.Email})
		} else {
			onEvent(domain.Event{Type: domain.EventFailed, Email: recipient.Email})
		}

		// Fixed inter-send delay, success or not: the transport's rate
		// limit is the bottleneck, not ours.
		e.sleep(e.rateDelay)
	}

	onEvent(domain.Event{Type: domain.EventCompleted})
	logger.Info("campaign run complete", "campaign", campaignID)
}

// deliver renders and sends to one recipient, retrying failed attempts
// with linear backoff (step, 2*step, ...). Returns true when any
// attempt succeeded. Individual failures never abort the run.
func (e *Engine) deliver(campaignID string, recipient domain.ResolvedRecipient, comp *composer.Composer, spec domain.CampaignSpec) bool {
	msg := &mailer.Message{
		To:          recipient.Email,
		Subject:     spec.Subject,
		HTML:        comp.Render(recipient),
		FromName:    spec.FromName(),
		FromEmail:   spec.SenderDetails.Email,
		Attachments: spec.Attachments,
	}

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		result, err := e.transport.Send(context.Background(), msg)
		if err == nil && result.Success {
			logger.Debug("recipient delivered",
				"campaign", campaignID,
				"email", recipient.Email,
				"attempt", attempt,
			)
			return true
		}

		reason := "delivery refused"
		if err != nil {
			reason = err.Error()
		} else if result.Error != "" {
			reason = result.Error
		}
		logger.Warn("send attempt failed",
			"campaign", campaignID,
			"email", recipient.Email,
			"attempt", attempt,
			"reason", reason,
		)

		if attempt < e.maxRetries {
			e.sleep(e.backoffStep * time.Duration(attempt))
		}
	}

	return false
}
