package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"exchange-crm/internal/audit"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/rates"
	"exchange-crm/internal/scope"
	"exchange-crm/internal/transactions"
)

var (
	adminP = scope.Principal{UserID: "admin-1", Role: scope.RoleAdmin}
	agentP = scope.Principal{UserID: "agent-1", Role: scope.RoleAgent, OfficeID: "o1"}
)

func testRange(now time.Time) TimeRange {
	return TimeRange{From: now.Add(-time.Hour), To: now.Add(time.Hour)}
}

func TestTransactionsSummary_AgentPinnedToOwnOffice(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo()
	repo.Transactions = []transactions.Transaction{
		{ID: "t1", OfficeID: "o1", ClientID: "c1", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 10000, CreatedAt: now},
		{ID: "t2", OfficeID: "o1", ClientID: "c1", Direction: rates.DirectionSell, Base: "USD", AmountMinor: 5000, CreatedAt: now},
		{ID: "t3", OfficeID: "o1", ClientID: "c2", Direction: rates.DirectionBuy, Base: "EUR", AmountMinor: 3000, CreatedAt: now},
		{ID: "t4", OfficeID: "o2", ClientID: "c9", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 99999, CreatedAt: now},
	}
	svc := NewService(repo, repo, repo)

	// The agent's request names a foreign office; it is overridden.
	out, err := svc.TransactionsSummary(context.Background(), agentP, TransactionsSummaryRequest{
		OfficeID: "o2",
		Range:    testRange(now),
	})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.OfficeID != "o1" || out.TotalTransactions != 3 {
		t.Fatalf("unexpected summary: %+v", out)
	}
	if out.BuyTransactions != 2 || out.SellTransactions != 1 || out.UniqueClients != 2 {
		t.Fatalf("unexpected counts: %+v", out)
	}
	if out.VolumeMinorByBase["USD"] != 15000 || out.VolumeMinorByBase["EUR"] != 3000 {
		t.Fatalf("unexpected volumes: %+v", out.VolumeMinorByBase)
	}
}

func TestTransactionsSummary_AdminViews(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo()
	repo.Transactions = []transactions.Transaction{
		{ID: "t1", OfficeID: "o1", ClientID: "c1", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 100, CreatedAt: now},
		{ID: "t2", OfficeID: "o2", ClientID: "c2", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 200, CreatedAt: now},
	}
	svc := NewService(repo, repo, repo)

	out, err := svc.TransactionsSummary(context.Background(), adminP, TransactionsSummaryRequest{Range: testRange(now)})
	if err != nil || out.TotalTransactions != 2 {
		t.Fatalf("platform-wide: %+v / %v", out, err)
	}

	out, err = svc.TransactionsSummary(context.Background(), adminP, TransactionsSummaryRequest{OfficeID: "o2", Range: testRange(now)})
	if err != nil || out.TotalTransactions != 1 {
		t.Fatalf("single office: %+v / %v", out, err)
	}
}

func TestTransactionsSummary_Validation(t *testing.T) {
	svc := NewService(NewMemoryRepo(), nil, nil)
	now := time.Unix(1700000000, 0).UTC()

	cases := []TimeRange{
		{},
		{From: now},
		{From: now, To: now},
		{From: now, To: now.Add(-time.Hour)},
	}
	for i, r := range cases {
		if _, err := svc.TransactionsSummary(context.Background(), adminP, TransactionsSummaryRequest{Range: r}); !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("case %d: expected invalid request, got %v", i, err)
		}
	}
}

func TestTransactionsSummary_OfficelessAgentEmpty(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	repo := NewMemoryRepo()
	repo.Transactions = []transactions.Transaction{
		{ID: "t1", OfficeID: "o1", ClientID: "c1", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 100, CreatedAt: now},
	}
	svc := NewService(repo, repo, repo)

	out, err := svc.TransactionsSummary(context.Background(), scope.Principal{UserID: "u", Role: scope.RoleAgent}, TransactionsSummaryRequest{Range: testRange(now)})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if out.TotalTransactions != 0 {
		t.Fatalf("office-less agent must see nothing: %+v", out)
	}
}

func TestCampaignConversion(t *testing.T) {
	now := time.Unix(1700000000, 0).UTC()
	recAt := now.Add(-30 * time.Minute)

	repo := NewMemoryRepo()
	repo.Events = []audit.Event{
		{Type: audit.EventTypeRecommendation, OfficeID: "o1", CampaignID: "cp1", ClientID: "c1", CreatedAt: recAt},
		{Type: audit.EventTypeRecommendation, OfficeID: "o1", CampaignID: "cp1", ClientID: "c2", CreatedAt: recAt},
		// Repeat recommendation for the same client counts once for conversion.
		{Type: audit.EventTypeRecommendation, OfficeID: "o1", CampaignID: "cp1", ClientID: "c1", CreatedAt: recAt.Add(time.Minute)},
		// Different campaign is excluded.
		{Type: audit.EventTypeRecommendation, OfficeID: "o1", CampaignID: "cp2", ClientID: "c3", CreatedAt: recAt},
	}
	repo.Messages = []campaigns.QuickMessage{
		{ID: "m1", OfficeID: "o1", CampaignID: "cp1", ClientID: "c1", CreatedAt: recAt},
		{ID: "m2", OfficeID: "o1", CampaignID: "cp1", ClientID: "c2", CreatedAt: now.Add(-2 * time.Hour)}, // outside range
	}
	repo.Transactions = []transactions.Transaction{
		// c1 booked after being recommended: converted.
		{ID: "t1", OfficeID: "o1", ClientID: "c1", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 100, CreatedAt: now},
		// c2 booked before the recommendation: not converted.
		{ID: "t2", OfficeID: "o1", ClientID: "c2", Direction: rates.DirectionBuy, Base: "USD", AmountMinor: 100, CreatedAt: recAt.Add(-time.Minute)},
	}
	svc := NewService(repo, repo, repo)

	out, err := svc.CampaignConversion(context.Background(), agentP, CampaignConversionRequest{
		CampaignID: "cp1",
		Range:      testRange(now),
	})
	if err != nil {
		t.Fatalf("conversion: %v", err)
	}
	if out.Recommendations != 3 {
		t.Fatalf("expected 3 recommendation events, got %d", out.Recommendations)
	}
	if out.MessagesSent != 1 {
		t.Fatalf("expected 1 in-range message, got %d", out.MessagesSent)
	}
	if out.ConvertedClients != 1 {
		t.Fatalf("expected 1 converted client, got %d", out.ConvertedClients)
	}
	if out.ConversionRate != 0.5 {
		t.Fatalf("expected 0.5 conversion rate, got %f", out.ConversionRate)
	}
}

func TestCampaignConversion_RequiresCampaign(t *testing.T) {
	svc := NewService(NewMemoryRepo(), NewMemoryRepo(), NewMemoryRepo())
	now := time.Unix(1700000000, 0).UTC()
	if _, err := svc.CampaignConversion(context.Background(), adminP, CampaignConversionRequest{Range: testRange(now)}); !errors.Is(err, ErrInvalidRequest) {
		t.Fatalf("expected invalid request, got %v", err)
	}
}
