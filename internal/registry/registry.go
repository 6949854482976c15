// Package registry owns the in-memory campaign aggregates. Campaigns
// live for the process lifetime; there is deliberately no persistence
// and no deletion. All mutation goes through Apply, fed by dispatch
// events in emission order.
package registry

import (
	"errors"
	"sync"
	"time"

	"github.com/ignite/outreach/internal/domain"
	"github.com/ignite/outreach/internal/pkg/logger"
)

// ErrNotFound is returned when no campaign exists for an identifier.
var ErrNotFound = errors.New("campaign not found")

// Registry maps campaign identifiers to their aggregates.
type Registry struct {
	mu        sync.RWMutex
	campaigns map[string]*domain.Campaign
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{campaigns: make(map[string]*domain.Campaign)}
}

// Create registers a new campaign in processing state with every
// recipient pending. Returns a snapshot of the created aggregate.
func (r *Registry) Create(campaignID string, recipients []domain.ResolvedRecipient) *domain.Campaign {
	statuses := make([]domain.RecipientStatus, len(recipients))
	for i, rec := range recipients {
		statuses[i] = domain.RecipientStatus{
			Email:  rec.Email,
			Name:   rec.Name,
			Status: domain.RecipientPending,
		}
	}

	c := &domain.Campaign{
		ID:         campaignID,
		Status:     domain.CampaignProcessing,
		Total:      len(recipients),
		Sent:       0,
		Failed:     0,
		CreatedAt:  time.Now(),
		Recipients: statuses,
	}

	r.mu.Lock()
	r.campaigns[campaignID] = c
	r.mu.Unlock()

	return c.Clone()
}

// Apply folds one dispatch event into the campaign aggregate. Events
// for unknown campaigns or recipients are dropped with a warning. A
// repeated completed event is a no-op.
func (r *Registry) Apply(campaignID string, event domain.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.campaigns[campaignID]
	if !ok {
		logger.Warn("event for unknown campaign", "campaign", campaignID, "type", string(event.Type))
		return
	}

	switch event.Type {
	case domain.EventSent:
		c.Sent++
		r.setRecipientState(c, event.Email, domain.RecipientSent)
	case domain.EventFailed:
		c.Failed++
		r.setRecipientState(c, event.Email, domain.RecipientFailed)
	case domain.EventCompleted:
		c.Status = domain.CampaignCompleted
	}
}

func (r *Registry) setRecipientState(c *domain.Campaign, email string, state domain.RecipientState) {
	for i := range c.Recipients {
		if c.Recipients[i].Email == email {
			c.Recipients[i].Status = state
			return
		}
	}
}

// Get returns a snapshot of the campaign, or ErrNotFound. The snapshot
// is safe to serialize while the run keeps mutating the original.
func (r *Registry) Get(campaignID string) (*domain.Campaign, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.campaigns[campaignID]
	if !ok {
		return nil, ErrNotFound
	}
	return c.Clone(), nil
}
