package transactions

import (
	"context"
	"errors"
	"testing"
	"time"

	"exchange-crm/internal/rates"
	"exchange-crm/internal/scope"
)

type memTxStore struct {
	txs   map[string]Transaction
	lists []ListFilter
}

func newMemTxStore(seed ...Transaction) *memTxStore {
	m := &memTxStore{txs: map[string]Transaction{}}
	for _, t := range seed {
		m.txs[t.ID] = t
	}
	return m
}

func (m *memTxStore) Get(ctx context.Context, id string) (Transaction, bool, error) {
	t, ok := m.txs[id]
	return t, ok, nil
}

func (m *memTxStore) FindByIdempotency(ctx context.Context, officeID, key string) (Transaction, bool, error) {
	for _, t := range m.txs {
		if t.OfficeID == officeID && t.IdempotencyKey == key {
			return t, true, nil
		}
	}
	return Transaction{}, false, nil
}

func (m *memTxStore) Insert(ctx context.Context, t Transaction) error {
	m.txs[t.ID] = t
	return nil
}

func (m *memTxStore) List(ctx context.Context, f ListFilter) ([]Transaction, error) {
	m.lists = append(m.lists, f)
	var out []Transaction
	for _, t := range m.txs {
		if f.OfficeID != "" && t.OfficeID != f.OfficeID {
			continue
		}
		if f.ClientID != "" && t.ClientID != f.ClientID {
			continue
		}
		out = append(out, t)
	}
	return out, nil
}

type fakeClients struct {
	offices map[string]string
}

func (f *fakeClients) OwningOffice(ctx context.Context, clientID string) (string, bool, error) {
	office, ok := f.offices[clientID]
	return office, ok, nil
}

type fakeQuoter struct {
	rateMicro int64
	err       error
	lastReq   rates.QuoteRequest
}

func (f *fakeQuoter) Compute(ctx context.Context, req rates.QuoteRequest) (rates.Quote, error) {
	f.lastReq = req
	if f.err != nil {
		return rates.Quote{}, f.err
	}
	return rates.Quote{
		RateMicro:  f.rateMicro,
		QuoteMinor: req.AmountMinor * f.rateMicro / rates.RateScale,
	}, nil
}

type fakeTxAudit struct {
	flags []string
}

func (f *fakeTxAudit) LogDataIntegrity(ctx context.Context, actorUserID, clientID, transactionID, message string) error {
	f.flags = append(f.flags, transactionID)
	return nil
}

var (
	adminP = scope.Principal{UserID: "admin-1", Role: scope.RoleAdmin}
	agentP = scope.Principal{UserID: "agent-1", Role: scope.RoleAgent, OfficeID: "o1"}
)

func newTestService(store *memTxStore, clients *fakeClients, quoter *fakeQuoter) *Service {
	svc := NewService(store, clients, quoter, nil)
	svc.clock = func() time.Time { return time.Unix(1700000000, 0).UTC() }
	return svc
}

func TestCreate_AgentBooksIntoOwnOffice(t *testing.T) {
	store := newMemTxStore()
	clients := &fakeClients{offices: map[string]string{"c1": "o1"}}
	quoter := &fakeQuoter{rateMicro: 920_000}
	svc := newTestService(store, clients, quoter)

	tx, err := svc.Create(context.Background(), agentP, CreateRequest{
		ClientID:       "c1",
		Direction:      rates.DirectionBuy,
		Base:           "USD",
		Quote:          "EUR",
		AmountMinor:    10000,
		IdempotencyKey: "k1",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if tx.OfficeID != "o1" || tx.CreatedBy != "agent-1" {
		t.Fatalf("unexpected transaction: %+v", tx)
	}
	if tx.RateMicro != 920_000 || tx.QuoteMinor != 9200 {
		t.Fatalf("unexpected quote: %+v", tx)
	}
	if quoter.lastReq.OfficeID != "o1" {
		t.Fatalf("quote must be resolved against the booking office, got %q", quoter.lastReq.OfficeID)
	}
}

func TestCreate_OfficeResolution(t *testing.T) {
	store := newMemTxStore()
	clients := &fakeClients{offices: map[string]string{"c1": "o1", "c2": "o2"}}
	svc := newTestService(store, clients, &fakeQuoter{rateMicro: rates.RateScale})

	base := CreateRequest{
		ClientID: "c2", Direction: rates.DirectionBuy,
		Base: "USD", Quote: "EUR", AmountMinor: 100, IdempotencyKey: "k",
	}

	// Agent naming a foreign office is forbidden outright.
	req := base
	req.OfficeID = "o2"
	if _, err := svc.Create(context.Background(), agentP, req); !errors.Is(err, scope.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}

	// Admin must name the office explicitly.
	if _, err := svc.Create(context.Background(), adminP, base); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected invalid argument, got %v", err)
	}
	if _, err := svc.Create(context.Background(), adminP, req); err != nil {
		t.Fatalf("admin create: %v", err)
	}

	// Office-less agent cannot book.
	orphanAgent := scope.Principal{UserID: "u", Role: scope.RoleAgent}
	if _, err := svc.Create(context.Background(), orphanAgent, base); !errors.Is(err, scope.ErrForbidden) {
		t.Fatalf("expected forbidden, got %v", err)
	}
}

func TestCreate_ForeignClientLooksAbsent(t *testing.T) {
	store := newMemTxStore()
	clients := &fakeClients{offices: map[string]string{"c2": "o2"}}
	svc := newTestService(store, clients, &fakeQuoter{rateMicro: rates.RateScale})

	req := CreateRequest{
		ClientID: "c2", Direction: rates.DirectionBuy,
		Base: "USD", Quote: "EUR", AmountMinor: 100, IdempotencyKey: "k",
	}
	_, errForeign := svc.Create(context.Background(), agentP, req)

	req.ClientID = "missing"
	_, errMiss := svc.Create(context.Background(), agentP, req)

	if !errors.Is(errForeign, ErrNotFound) || !errors.Is(errMiss, ErrNotFound) {
		t.Fatalf("expected not-found for both, got %v / %v", errForeign, errMiss)
	}
	if errForeign.Error() != errMiss.Error() {
		t.Fatalf("foreign client and missing client must be indistinguishable")
	}
}

func TestCreate_IdempotentRetryReturnsExisting(t *testing.T) {
	store := newMemTxStore()
	clients := &fakeClients{offices: map[string]string{"c1": "o1"}}
	svc := newTestService(store, clients, &fakeQuoter{rateMicro: 920_000})

	req := CreateRequest{
		ClientID: "c1", Direction: rates.DirectionSell,
		Base: "USD", Quote: "EUR", AmountMinor: 5000, IdempotencyKey: "retry-1",
	}
	first, err := svc.Create(context.Background(), agentP, req)
	if err != nil {
		t.Fatalf("first: %v", err)
	}
	second, err := svc.Create(context.Background(), agentP, req)
	if err != nil {
		t.Fatalf("retry: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("retry must return the original booking, got %q vs %q", second.ID, first.ID)
	}
	if len(store.txs) != 1 {
		t.Fatalf("retry must not insert a second row, have %d", len(store.txs))
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newMemTxStore(), &fakeClients{}, &fakeQuoter{})
	cases := []CreateRequest{
		{},
		{ClientID: "c1", AmountMinor: 0, IdempotencyKey: "k"},
		{ClientID: "c1", AmountMinor: 100},
	}
	for i, req := range cases {
		if _, err := svc.Create(context.Background(), agentP, req); !errors.Is(err, ErrInvalidArgument) {
			t.Fatalf("case %d: expected invalid argument, got %v", i, err)
		}
	}
}

func TestGet_CrossOfficeIndistinguishableFromMiss(t *testing.T) {
	store := newMemTxStore(
		Transaction{ID: "t1", OfficeID: "o1"},
		Transaction{ID: "t2", OfficeID: "o2"},
	)
	svc := newTestService(store, &fakeClients{}, &fakeQuoter{})

	if _, err := svc.Get(context.Background(), agentP, "t1"); err != nil {
		t.Fatalf("own office: %v", err)
	}

	_, errCross := svc.Get(context.Background(), agentP, "t2")
	_, errMiss := svc.Get(context.Background(), agentP, "missing")
	if !errors.Is(errCross, ErrNotFound) || !errors.Is(errMiss, ErrNotFound) {
		t.Fatalf("expected not-found for both, got %v / %v", errCross, errMiss)
	}
	if errCross.Error() != errMiss.Error() {
		t.Fatalf("cross-office and miss must be indistinguishable")
	}

	if _, err := svc.Get(context.Background(), adminP, "t2"); err != nil {
		t.Fatalf("admin: %v", err)
	}
}

func TestGet_OrphanedTransactionFlagged(t *testing.T) {
	store := newMemTxStore(Transaction{ID: "t1", OfficeID: ""})
	aud := &fakeTxAudit{}
	svc := NewService(store, &fakeClients{}, &fakeQuoter{}, aud)

	if _, err := svc.Get(context.Background(), agentP, "t1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not-found for orphan, got %v", err)
	}
	if len(aud.flags) != 1 || aud.flags[0] != "t1" {
		t.Fatalf("expected data-integrity flag, got %v", aud.flags)
	}
}

func TestList_OfficeFilterPushedToStore(t *testing.T) {
	store := newMemTxStore(
		Transaction{ID: "t1", OfficeID: "o1"},
		Transaction{ID: "t2", OfficeID: "o2"},
	)
	svc := newTestService(store, &fakeClients{}, &fakeQuoter{})

	got, err := svc.List(context.Background(), agentP, ListFilter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, tx := range got {
		if tx.OfficeID != "o1" {
			t.Fatalf("leaked transaction from office %q", tx.OfficeID)
		}
	}
	if store.lists[0].OfficeID != "o1" {
		t.Fatalf("agent filter not pushed to query: %+v", store.lists)
	}

	// Agent cannot widen by passing a foreign office in the filter.
	if _, err := svc.List(context.Background(), agentP, ListFilter{OfficeID: "o2"}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if store.lists[1].OfficeID != "o1" {
		t.Fatalf("caller-supplied office must be overridden: %+v", store.lists[1])
	}

	if _, err := svc.List(context.Background(), adminP, ListFilter{}); err != nil {
		t.Fatalf("admin list: %v", err)
	}
	if store.lists[2].OfficeID != "" {
		t.Fatalf("admin list must be unfiltered")
	}

	// Office-less agent sees nothing and no query runs.
	queries := len(store.lists)
	got, err = svc.List(context.Background(), scope.Principal{UserID: "u", Role: scope.RoleAgent}, ListFilter{})
	if err != nil || got != nil {
		t.Fatalf("office-less agent: %v / %v", got, err)
	}
	if len(store.lists) != queries {
		t.Fatalf("office-less agent must not reach the store")
	}
}
