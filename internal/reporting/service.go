package reporting

import (
	"context"
	"errors"
	"time"

	"exchange-crm/internal/audit"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/rates"
	"exchange-crm/internal/scope"
	"exchange-crm/internal/transactions"
)

var ErrInvalidRequest = errors.New("reporting: invalid request")

// Data sources. All reads come from immutable records (transactions,
// quick messages, audit events); reporting never writes.
//
// TransactionSource is satisfied by transactions.Repository, MessageSource
// by the campaigns store, EventSource by audit.MemoryRepo.

type TransactionSource interface {
	List(ctx context.Context, f transactions.ListFilter) ([]transactions.Transaction, error)
}

type MessageSource interface {
	ListMessages(ctx context.Context, officeID, campaignID string) ([]campaigns.QuickMessage, error)
}

type EventSource interface {
	ListByType(ctx context.Context, officeID string, typ audit.EventType, from, to time.Time) ([]audit.Event, error)
}

type Service struct {
	txs    TransactionSource
	msgs   MessageSource
	events EventSource
}

func NewService(txs TransactionSource, msgs MessageSource, events EventSource) *Service {
	return &Service{txs: txs, msgs: msgs, events: events}
}

// TransactionsSummary aggregates booked exchanges over a time range.
// Agents are always pinned to their own office; admins may pass any office
// or none for a platform-wide view.
func (s *Service) TransactionsSummary(ctx context.Context, p scope.Principal, req TransactionsSummaryRequest) (TransactionsSummary, error) {
	if err := validateRange(req.Range); err != nil {
		return TransactionsSummary{}, err
	}
	if s.txs == nil {
		return TransactionsSummary{}, errors.New("reporting: transaction source not configured")
	}

	officeID, none := resolveOffice(p, req.OfficeID)
	out := TransactionsSummary{
		OfficeID:          officeID,
		ClientID:          req.ClientID,
		VolumeMinorByBase: map[string]int64{},
	}
	if none {
		return out, nil
	}

	rows, err := s.txs.List(ctx, transactions.ListFilter{
		OfficeID: officeID,
		ClientID: req.ClientID,
		From:     req.Range.From,
		To:       req.Range.To,
	})
	if err != nil {
		return TransactionsSummary{}, err
	}

	seen := map[string]struct{}{}
	for _, t := range rows {
		out.TotalTransactions++
		switch t.Direction {
		case rates.DirectionBuy:
			out.BuyTransactions++
		case rates.DirectionSell:
			out.SellTransactions++
		}
		out.VolumeMinorByBase[t.Base] += t.AmountMinor
		seen[t.ClientID] = struct{}{}
	}
	out.UniqueClients = len(seen)
	return out, nil
}

// CampaignConversion correlates recommendation events with booked exchanges:
// a recommended client counts as converted when they book any transaction
// after the recommendation, within the range.
func (s *Service) CampaignConversion(ctx context.Context, p scope.Principal, req CampaignConversionRequest) (CampaignConversion, error) {
	if req.CampaignID == "" {
		return CampaignConversion{}, ErrInvalidRequest
	}
	if err := validateRange(req.Range); err != nil {
		return CampaignConversion{}, err
	}
	if s.txs == nil || s.msgs == nil || s.events == nil {
		return CampaignConversion{}, errors.New("reporting: sources not configured")
	}

	officeID, none := resolveOffice(p, req.OfficeID)
	out := CampaignConversion{OfficeID: officeID, CampaignID: req.CampaignID}
	if none {
		return out, nil
	}

	recs, err := s.events.ListByType(ctx, officeID, audit.EventTypeRecommendation, req.Range.From, req.Range.To)
	if err != nil {
		return CampaignConversion{}, err
	}
	// Earliest recommendation per client for this campaign.
	recommendedAt := map[string]time.Time{}
	for _, e := range recs {
		if e.CampaignID != req.CampaignID {
			continue
		}
		out.Recommendations++
		if at, ok := recommendedAt[e.ClientID]; !ok || e.CreatedAt.Before(at) {
			recommendedAt[e.ClientID] = e.CreatedAt
		}
	}

	msgs, err := s.msgs.ListMessages(ctx, officeID, req.CampaignID)
	if err != nil {
		return CampaignConversion{}, err
	}
	for _, m := range msgs {
		if inRange(m.CreatedAt, req.Range) {
			out.MessagesSent++
		}
	}

	if len(recommendedAt) > 0 {
		rows, err := s.txs.List(ctx, transactions.ListFilter{
			OfficeID: officeID,
			From:     req.Range.From,
			To:       req.Range.To,
		})
		if err != nil {
			return CampaignConversion{}, err
		}
		converted := map[string]struct{}{}
		for _, t := range rows {
			at, ok := recommendedAt[t.ClientID]
			if !ok {
				continue
			}
			if t.CreatedAt.Before(at) {
				continue
			}
			converted[t.ClientID] = struct{}{}
		}
		out.ConvertedClients = len(converted)
		out.ConversionRate = float64(out.ConvertedClients) / float64(len(recommendedAt))
	}
	return out, nil
}

func validateRange(r TimeRange) error {
	if r.From.IsZero() || r.To.IsZero() || !r.To.After(r.From) {
		return ErrInvalidRequest
	}
	return nil
}

func inRange(at time.Time, r TimeRange) bool {
	return !at.Before(r.From) && at.Before(r.To)
}

// resolveOffice pins agents to their own office. The second return is true
// for an office-less agent, whose reports are empty by definition.
func resolveOffice(p scope.Principal, requested string) (string, bool) {
	officeID, restricted := scope.ListScope(p)
	if !restricted {
		return requested, false
	}
	if officeID == "" {
		return "", true
	}
	return officeID, false
}
