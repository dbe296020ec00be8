package rates

import "time"

// Rate models are office-scoped (office_id required everywhere).
// Amounts are expressed in minor units (e.g., cents) using int64; the rate
// itself is a fixed-point value scaled by RateScale.

// RateScale is the fixed-point denominator for Rate.RateMicro: one unit of
// the base currency buys RateMicro/RateScale units of the quote currency.
const RateScale = 1_000_000

// Rate is a buy or sell quote an office publishes for a currency pair.
type Rate struct {
	ID       string `json:"id" db:"id"`
	OfficeID string `json:"office_id" db:"office_id"`

	// Base and Quote are ISO 4217 codes (e.g., "USD", "EUR").
	Base  string `json:"base" db:"base"`
	Quote string `json:"quote" db:"quote"`

	// Direction is the office's side: buy means the office buys base from
	// the client, sell means the office sells base to the client.
	Direction Direction `json:"direction" db:"direction"`

	// RateMicro is quote-per-base scaled by RateScale.
	RateMicro int64 `json:"rate_micro" db:"rate_micro"`

	// Effective window for the rate.
	EffectiveFrom time.Time  `json:"effective_from" db:"effective_from"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty" db:"effective_to"`

	Status RateStatus `json:"status" db:"status"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

type RateStatus string

const (
	RateStatusActive   RateStatus = "active"
	RateStatusInactive RateStatus = "inactive"
)

type Direction string

const (
	DirectionBuy  Direction = "buy"
	DirectionSell Direction = "sell"
)
