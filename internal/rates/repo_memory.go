package rates

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory repository useful for tests and early
// development. It is office-scoped and supports exact pair matches.
//
// NOTE: This is not intended for production; replace with Postgres implementation.
type MemoryRepo struct {
	mu    sync.RWMutex
	Rates []Rate
}

func (r *MemoryRepo) FindRate(ctx context.Context, officeID, base, quote string, direction Direction, at time.Time) (Rate, bool, error) {
	_ = ctx
	r.mu.RLock()
	defer r.mu.RUnlock()

	// Prefer the most recent effective rate row.
	var best Rate
	found := false

	for _, p := range r.Rates {
		if p.OfficeID != officeID {
			continue
		}
		if p.Base != base || p.Quote != quote {
			continue
		}
		if p.Direction != direction {
			continue
		}
		if p.Status != RateStatusActive {
			continue
		}
		if at.Before(p.EffectiveFrom) {
			continue
		}
		if p.EffectiveTo != nil && !at.Before(*p.EffectiveTo) {
			continue
		}

		if !found || p.EffectiveFrom.After(best.EffectiveFrom) {
			best = p
			found = true
		}
	}

	return best, found, nil
}

// UpsertRate replaces the row with the same id, or appends a new one.
func (r *MemoryRepo) UpsertRate(ctx context.Context, rate Rate) error {
	_ = ctx
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, p := range r.Rates {
		if p.ID == rate.ID {
			r.Rates[i] = rate
			return nil
		}
	}
	r.Rates = append(r.Rates, rate)
	return nil
}
