package reporting

import (
	"context"
	"sync"
	"time"

	"exchange-crm/internal/audit"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/transactions"
)

// MemoryRepo is a simple in-memory source bundle for tests and early
// development. It applies the same filters the real stores apply in SQL.

type MemoryRepo struct {
	mu sync.Mutex

	Transactions []transactions.Transaction
	Messages     []campaigns.QuickMessage
	Events       []audit.Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) List(ctx context.Context, f transactions.ListFilter) ([]transactions.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []transactions.Transaction
	for _, t := range r.Transactions {
		if f.OfficeID != "" && t.OfficeID != f.OfficeID {
			continue
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		if !f.From.IsZero() && t.CreatedAt.Before(f.From) {
			continue
		}
		if !f.To.IsZero() && !t.CreatedAt.Before(f.To) {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

func (r *MemoryRepo) ListMessages(ctx context.Context, officeID, campaignID string) ([]campaigns.QuickMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []campaigns.QuickMessage
	for _, m := range r.Messages {
		if officeID != "" && m.OfficeID != officeID {
			continue
		}
		if campaignID != "" && m.CampaignID != campaignID {
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *MemoryRepo) ListByType(ctx context.Context, officeID string, typ audit.EventType, from, to time.Time) ([]audit.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []audit.Event
	for _, e := range r.Events {
		if e.Type != typ {
			continue
		}
		if officeID != "" && e.OfficeID != officeID {
			continue
		}
		if !e.CreatedAt.IsZero() {
			if e.CreatedAt.Before(from) || !e.CreatedAt.Before(to) {
				continue
			}
		}
		out = append(out, e)
	}
	return out, nil
}
