package transactions

import (
	"time"

	"exchange-crm/internal/rates"
)

// Transaction is a completed currency exchange recorded for a client.
//
// Invariants:
// - office_id is set at creation (from the creating agent's office, or
//   explicitly by an admin) and immutable thereafter.
// - the client must belong to the same office.
// - rows are append-only; corrections are new transactions.
type Transaction struct {
	ID       string `json:"id" db:"id"`
	OfficeID string `json:"office_id" db:"office_id"`
	ClientID string `json:"client_id" db:"client_id"`

	// CreatedBy is the user who booked the exchange.
	CreatedBy string `json:"created_by" db:"created_by"`

	// Direction is the office's side of the exchange.
	Direction rates.Direction `json:"direction" db:"direction"`

	// Base/Quote are ISO 4217 codes; AmountMinor is the base amount the
	// client brought (buy) or received (sell), QuoteMinor the converted
	// amount, both in minor units.
	Base        string `json:"base" db:"base"`
	Quote       string `json:"quote" db:"quote"`
	AmountMinor int64  `json:"amount_minor" db:"amount_minor"`
	QuoteMinor  int64  `json:"quote_minor" db:"quote_minor"`

	// RateMicro is the applied rate, quote-per-base scaled by rates.RateScale.
	RateMicro int64 `json:"rate_micro" db:"rate_micro"`

	// IdempotencyKey is required for safe retries of booking operations.
	IdempotencyKey string `json:"idempotency_key" db:"idempotency_key"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// ListFilter narrows listings. OfficeID is owned by the scope guard, not the
// caller: the service fills it from ListScope before the query runs.
type ListFilter struct {
	OfficeID string
	ClientID string
	From     time.Time
	To       time.Time
}
