package rates

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Service resolves office-scoped exchange quotes and publishes rate rows.
//
// Contract:
// - Rate lookup is by office, pair, direction and effective window.
// - Writes go through Upsert only; quoting never mutates the store.
// - Callers authorize the office before asking for a quote; this service
//   trusts the office id it is given.
type Service struct {
	repo  RateRepository
	clock func() time.Time
}

func NewService(repo RateRepository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

type QuoteRequest struct {
	OfficeID  string
	Direction Direction

	Base  string
	Quote string

	// AmountMinor is the base-currency amount in minor units.
	AmountMinor int64

	// At determines which effective rate to use. If zero, service clock is used.
	At time.Time
}

type Quote struct {
	OfficeID  string
	Direction Direction

	Base  string
	Quote string

	RateMicro int64

	AmountMinor int64
	// QuoteMinor is the resulting quote-currency amount in minor units,
	// rounded down.
	QuoteMinor int64
}

var (
	ErrRateNotFound    = errors.New("rate not found")
	ErrInvalidQuoteReq = errors.New("invalid quote request")
	ErrInvalidRate     = errors.New("invalid rate")
)

// Compute resolves the effective rate and converts the amount.
func (s *Service) Compute(ctx context.Context, req QuoteRequest) (Quote, error) {
	if req.OfficeID == "" || req.Base == "" || req.Quote == "" || req.Base == req.Quote {
		return Quote{}, ErrInvalidQuoteReq
	}
	if req.Direction != DirectionBuy && req.Direction != DirectionSell {
		return Quote{}, ErrInvalidQuoteReq
	}
	if req.AmountMinor <= 0 {
		return Quote{}, ErrInvalidQuoteReq
	}

	at := req.At
	if at.IsZero() {
		at = s.clock().UTC()
	}

	r, ok, err := s.repo.FindRate(ctx, req.OfficeID, req.Base, req.Quote, req.Direction, at)
	if err != nil {
		return Quote{}, err
	}
	if !ok {
		return Quote{}, ErrRateNotFound
	}

	return Quote{
		OfficeID:    req.OfficeID,
		Direction:   req.Direction,
		Base:        req.Base,
		Quote:       req.Quote,
		RateMicro:   r.RateMicro,
		AmountMinor: req.AmountMinor,
		QuoteMinor:  convertMinor(req.AmountMinor, r.RateMicro),
	}, nil
}

// UpsertRequest publishes a rate row for an office. A set ID replaces the
// existing row; otherwise a new one is created.
type UpsertRequest struct {
	ID       string `json:"id,omitempty"`
	OfficeID string `json:"office_id"`

	Base  string `json:"base"`
	Quote string `json:"quote"`

	Direction Direction `json:"direction"`
	RateMicro int64     `json:"rate_micro"`

	// EffectiveFrom defaults to the service clock when zero.
	EffectiveFrom time.Time  `json:"effective_from,omitempty"`
	EffectiveTo   *time.Time `json:"effective_to,omitempty"`

	// Status defaults to active.
	Status RateStatus `json:"status,omitempty"`
}

// Upsert validates and stores a rate row. Admin-only at the transport layer;
// agents never publish rates.
func (s *Service) Upsert(ctx context.Context, req UpsertRequest) (Rate, error) {
	if req.OfficeID == "" || req.Base == "" || req.Quote == "" || req.Base == req.Quote {
		return Rate{}, ErrInvalidRate
	}
	if req.Direction != DirectionBuy && req.Direction != DirectionSell {
		return Rate{}, ErrInvalidRate
	}
	if req.RateMicro <= 0 {
		return Rate{}, ErrInvalidRate
	}

	now := s.clock().UTC()
	from := req.EffectiveFrom
	if from.IsZero() {
		from = now
	}
	if req.EffectiveTo != nil && !req.EffectiveTo.After(from) {
		return Rate{}, ErrInvalidRate
	}

	status := req.Status
	if status == "" {
		status = RateStatusActive
	}
	if status != RateStatusActive && status != RateStatusInactive {
		return Rate{}, ErrInvalidRate
	}

	r := Rate{
		ID:            req.ID,
		OfficeID:      req.OfficeID,
		Base:          req.Base,
		Quote:         req.Quote,
		Direction:     req.Direction,
		RateMicro:     req.RateMicro,
		EffectiveFrom: from,
		EffectiveTo:   req.EffectiveTo,
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if r.ID == "" {
		r.ID = uuid.NewString()
	}

	if err := s.repo.UpsertRate(ctx, r); err != nil {
		return Rate{}, err
	}
	return r, nil
}

// RateRepository abstracts rate persistence.
// Implementation can be Postgres, cached, etc.
type RateRepository interface {
	FindRate(ctx context.Context, officeID, base, quote string, direction Direction, at time.Time) (Rate, bool, error)
	UpsertRate(ctx context.Context, r Rate) error
}

func convertMinor(amountMinor, rateMicro int64) int64 {
	// Truncating division; exchanges round in the house's favor.
	// Split the amount before multiplying so amounts near the int64 range
	// do not overflow the intermediate product.
	whole, rem := amountMinor/RateScale, amountMinor%RateScale
	return whole*rateMicro + rem*rateMicro/RateScale
}
