package campaigns

import (
	"context"
	"sync"
)

// MemoryRepo is a simple in-memory repository for tests and early
// development. It filters by office on reads so query shape matches the
// eventual Postgres implementation.
type MemoryRepo struct {
	mu sync.Mutex

	campaigns map[string]Campaign
	messages  []QuickMessage
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{campaigns: map[string]Campaign{}}
}

func (r *MemoryRepo) GetCampaign(ctx context.Context, id string) (Campaign, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	return c, ok, nil
}

func (r *MemoryRepo) ListCampaigns(ctx context.Context, officeID string) ([]Campaign, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Campaign
	for _, c := range r.campaigns {
		if officeID != "" && c.OfficeID != officeID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (r *MemoryRepo) InsertCampaign(ctx context.Context, c Campaign) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.campaigns[c.ID] = c
	return nil
}

func (r *MemoryRepo) UpdateCampaignStatus(ctx context.Context, id string, status Status) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.campaigns[id]
	if !ok {
		return false, nil
	}
	c.Status = status
	r.campaigns[id] = c
	return true, nil
}

func (r *MemoryRepo) InsertMessage(ctx context.Context, m QuickMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, m)
	return nil
}

func (r *MemoryRepo) ListMessages(ctx context.Context, officeID, campaignID string) ([]QuickMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []QuickMessage
	for _, m := range r.messages {
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
