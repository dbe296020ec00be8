package campaigns

import (
	"sort"
	"time"

	"exchange-crm/internal/clients"
)

// Recommendation is the outcome of picking a campaign for a client.
//
// Reason is intended for internal logs and the recommendation audit trail,
// not for client-facing copy.
type Recommendation struct {
	OfficeID   string `json:"office_id"`
	ClientID   string `json:"client_id"`
	CampaignID string `json:"campaign_id,omitempty"`

	CampaignName string `json:"campaign_name,omitempty"`
	Body         string `json:"body,omitempty"`

	Eligible bool   `json:"eligible"`
	Reason   string `json:"reason"`
}

const (
	reasonSelected   = "selected"
	reasonNoEligible = "no_eligible_campaign"
)

// pickCampaign evaluates the office's campaigns for a client segment.
//
// Eligibility: active status, effective window covering at, segment match.
// Selection among eligible campaigns is deterministic: highest priority,
// then most recent start, then id. No randomness; a client asking twice
// gets the same answer.
func pickCampaign(candidates []Campaign, seg clients.Segment, at time.Time) (Campaign, bool) {
	eligible := make([]Campaign, 0, len(candidates))
	for _, c := range candidates {
		if c.Status != StatusActive {
			continue
		}
		if !c.effectiveAt(at) {
			continue
		}
		if !c.targets(seg) {
			continue
		}
		eligible = append(eligible, c)
	}
	if len(eligible) == 0 {
		return Campaign{}, false
	}

	sort.Slice(eligible, func(i, j int) bool {
		a, b := eligible[i], eligible[j]
		if a.Priority != b.Priority {
			return a.Priority > b.Priority
		}
		if !a.StartsAt.Equal(b.StartsAt) {
			return a.StartsAt.After(b.StartsAt)
		}
		return a.ID < b.ID
	})
	return eligible[0], true
}
