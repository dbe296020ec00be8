package audit

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is a simple in-memory append-only repository useful for tests.
// It is not intended for production use.

type MemoryRepo struct {
	mu     sync.Mutex
	events []Event
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{} }

func (r *MemoryRepo) Append(ctx context.Context, e Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

// ListByType queries events for reporting. Office filtering is mandatory
// semantics here even though the caller may pass "" for an admin-wide view.
func (r *MemoryRepo) ListByType(ctx context.Context, officeID string, typ EventType, from, to time.Time) ([]Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Event
	for _, e := range r.events {
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

func (r *MemoryRepo) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}
