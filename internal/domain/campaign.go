package domain

import (
	"time"
)

// CampaignStatus enumerates the lifecycle states of a campaign.
type CampaignStatus string

const (
	CampaignProcessing CampaignStatus = "processing"
	CampaignCompleted  CampaignStatus = "completed"
)

// RecipientState enumerates the delivery state of a single recipient.
// Each recipient moves pending → sent or pending → failed exactly once.
type RecipientState string

const (
	RecipientPending RecipientState = "pending"
	RecipientSent    RecipientState = "sent"
	RecipientFailed  RecipientState = "failed"
)

// RecipientStatus tracks one recipient's delivery outcome within a campaign.
type RecipientStatus struct {
	Email  string         `json:"email"`
	Name   string         `json:"name,omitempty"`
	Status RecipientState `json:"status"`
}

// Campaign is the aggregate root for one dispatch run. It is owned
// exclusively by the registry; sent/failed counters and per-recipient
// states are mutated only through dispatch events.
type Campaign struct {
	ID         string            `json:"id"`
	Status     CampaignStatus    `json:"status"`
	Total      int               `json:"total"`
	Sent       int               `json:"sent"`
	Failed     int               `json:"failed"`
	CreatedAt  time.Time         `json:"createdAt"`
	Recipients []RecipientStatus `json:"recipients"`
}

// IsTerminal returns true if the campaign has finished all recipients.
func (c *Campaign) IsTerminal() bool {
	return c.Status == CampaignCompleted
}

// Clone returns a deep copy safe to hand to callers while the dispatch
// run keeps mutating the original through the registry.
func (c *Campaign) Clone() *Campaign {
	cp := *c
	cp.Recipients = make([]RecipientStatus, len(c.Recipients))
	copy(cp.Recipients, c.Recipients)
	return &cp
}

// EventType enumerates dispatch status events.
type EventType string

const (
	EventSent      EventType = "sent"
	EventFailed    EventType = "failed"
	EventCompleted EventType = "completed"
)

// Event is a dispatch status update. Sent/failed events carry the
// recipient address; the terminal completed event carries none.
type Event struct {
	Type  EventType `json:"type"`
	Email string    `json:"email,omitempty"`
}
