package campaigns

import (
	"time"

	"exchange-crm/internal/clients"
)

// Campaign is an office-scoped marketing campaign. Agents recommend active
// campaigns to clients and send quick messages under them.
//
// Tenancy invariant: OfficeID is set at creation and immutable thereafter.
type Campaign struct {
	ID       string `json:"id" db:"id"`
	OfficeID string `json:"office_id" db:"office_id"`

	Name   string `json:"name" db:"name"`
	Status Status `json:"status" db:"status"`

	// Segments narrows targeting; empty means every segment is eligible.
	Segments []clients.Segment `json:"segments,omitempty" db:"segments"`

	// Priority orders recommendation; higher wins.
	Priority int `json:"priority" db:"priority"`

	// StartsAt/EndsAt bound the effective window. A nil EndsAt is open-ended.
	StartsAt time.Time  `json:"starts_at" db:"starts_at"`
	EndsAt   *time.Time `json:"ends_at,omitempty" db:"ends_at"`

	// MessageTemplate is the default quick-message body.
	MessageTemplate string `json:"message_template,omitempty" db:"message_template"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type Status string

const (
	StatusActive Status = "active"
	StatusPaused Status = "paused"
)

// QuickMessage is an append-only record of a campaign message sent to a
// client. The office is stored denormalized so listings stay a single query.
type QuickMessage struct {
	ID         string `json:"id" db:"id"`
	OfficeID   string `json:"office_id" db:"office_id"`
	CampaignID string `json:"campaign_id" db:"campaign_id"`
	ClientID   string `json:"client_id" db:"client_id"`

	SentBy string `json:"sent_by" db:"sent_by"`
	Body   string `json:"body" db:"body"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// targets reports whether the campaign applies to a client segment.
func (c Campaign) targets(seg clients.Segment) bool {
	if len(c.Segments) == 0 {
		return true
	}
	for _, s := range c.Segments {
		if s == seg {
			return true
		}
	}
	return false
}

// effectiveAt reports whether the campaign window covers the given instant.
func (c Campaign) effectiveAt(at time.Time) bool {
	if at.Before(c.StartsAt) {
		return false
	}
	if c.EndsAt != nil && !at.Before(*c.EndsAt) {
		return false
	}
	return true
}
