package campaigns

import (
	"context"

	"exchange-crm/internal/audit"
)

// AuditAdapter bridges the recommendation hook to the shared audit.Service.
// Recommendation events feed conversion reporting, so unlike most audit
// writes they are not purely diagnostic.
type AuditAdapter struct {
	Audit *audit.Service
}

func (a AuditAdapter) LogRecommendation(ctx context.Context, actorUserID string, rec Recommendation) error {
	if a.Audit == nil {
		return nil
	}
	return a.Audit.Append(ctx, audit.Event{
		OfficeID:    rec.OfficeID,
		Type:        audit.EventTypeRecommendation,
		ActorUserID: actorUserID,
		ClientID:    rec.ClientID,
		CampaignID:  rec.CampaignID,
		Message:     rec.Reason,
	})
}
