package transactions

import (
	"context"
	"errors"
	"time"

	"exchange-crm/internal/rates"
	"exchange-crm/internal/scope"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("transaction not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store abstracts transaction persistence for the service.
type Store interface {
	Get(ctx context.Context, id string) (Transaction, bool, error)
	FindByIdempotency(ctx context.Context, officeID, key string) (Transaction, bool, error)
	Insert(ctx context.Context, t Transaction) error
	List(ctx context.Context, f ListFilter) ([]Transaction, error)
}

// ClientDirectory resolves which office owns a client. Implemented by the
// clients repository; declared here so this package depends on the
// capability only.
type ClientDirectory interface {
	OwningOffice(ctx context.Context, clientID string) (string, bool, error)
}

// Quoter resolves the applied exchange rate. Implemented by rates.Service.
type Quoter interface {
	Compute(ctx context.Context, req rates.QuoteRequest) (rates.Quote, error)
}

// IntegrityAudit flags orphaned rows discovered during authorization.
type IntegrityAudit interface {
	LogDataIntegrity(ctx context.Context, actorUserID, clientID, transactionID, message string) error
}

type Service struct {
	store   Store
	clients ClientDirectory
	quoter  Quoter
	audit   IntegrityAudit
	clock   func() time.Time
}

func NewService(store Store, clients ClientDirectory, quoter Quoter, audit IntegrityAudit) *Service {
	return &Service{
		store:   store,
		clients: clients,
		quoter:  quoter,
		audit:   audit,
		clock:   time.Now,
	}
}

// Get authorizes against the transaction's owning office before reporting
// existence.
func (s *Service) Get(ctx context.Context, p scope.Principal, id string) (Transaction, error) {
	if id == "" {
		return Transaction{}, ErrInvalidArgument
	}
	t, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Transaction{}, err
	}
	if !ok {
		return Transaction{}, ErrNotFound
	}
	if d := scope.Authorize(p, t.OfficeID); !d.Allowed {
		if s.audit != nil && scope.OrphanedResource(d) {
			_ = s.audit.LogDataIntegrity(ctx, p.UserID, "", t.ID, "transaction has no owning office")
		}
		return Transaction{}, ErrNotFound
	}
	return t, nil
}

// List constrains the query to the principal's office before execution.
// The caller-supplied filter may narrow further but never widen.
func (s *Service) List(ctx context.Context, p scope.Principal, f ListFilter) ([]Transaction, error) {
	officeID, restricted := scope.ListScope(p)
	if restricted {
		if officeID == "" {
			return nil, nil
		}
		f.OfficeID = officeID
	}
	return s.store.List(ctx, f)
}

type CreateRequest struct {
	ClientID  string          `json:"client_id"`
	Direction rates.Direction `json:"direction"`

	Base        string `json:"base"`
	Quote       string `json:"quote"`
	AmountMinor int64  `json:"amount_minor"`

	IdempotencyKey string `json:"idempotency_key"`

	// OfficeID may only be set by admins; agents always book into their
	// own office.
	OfficeID string `json:"office_id,omitempty"`
}

// Create books an exchange at the office's current rate.
//
// Office resolution mirrors client creation: agents book into their own
// office, admins name one explicitly, and no transaction is ever stored
// without an owning office. The client must belong to the same office; a
// foreign client id looks absent rather than forbidden.
func (s *Service) Create(ctx context.Context, p scope.Principal, req CreateRequest) (Transaction, error) {
	if req.ClientID == "" || req.AmountMinor <= 0 || req.IdempotencyKey == "" {
		return Transaction{}, ErrInvalidArgument
	}

	officeID, err := s.resolveTargetOffice(p, req.OfficeID)
	if err != nil {
		return Transaction{}, err
	}

	clientOffice, found, err := s.clients.OwningOffice(ctx, req.ClientID)
	if err != nil {
		return Transaction{}, err
	}
	if !found || clientOffice != officeID {
		// Foreign or missing client: same answer either way.
		return Transaction{}, ErrNotFound
	}

	// Safe retry: return the already-booked transaction for a repeated key.
	if existing, ok, err := s.store.FindByIdempotency(ctx, officeID, req.IdempotencyKey); err != nil {
		return Transaction{}, err
	} else if ok {
		return existing, nil
	}

	now := s.clock().UTC()
	q, err := s.quoter.Compute(ctx, rates.QuoteRequest{
		OfficeID:    officeID,
		Direction:   req.Direction,
		Base:        req.Base,
		Quote:       req.Quote,
		AmountMinor: req.AmountMinor,
		At:          now,
	})
	if err != nil {
		return Transaction{}, err
	}

	t := Transaction{
		ID:             uuid.NewString(),
		OfficeID:       officeID,
		ClientID:       req.ClientID,
		CreatedBy:      p.UserID,
		Direction:      req.Direction,
		Base:           req.Base,
		Quote:          req.Quote,
		AmountMinor:    req.AmountMinor,
		QuoteMinor:     q.QuoteMinor,
		RateMicro:      q.RateMicro,
		IdempotencyKey: req.IdempotencyKey,
		CreatedAt:      now,
	}
	if err := s.store.Insert(ctx, t); err != nil {
		return Transaction{}, err
	}
	return t, nil
}

func (s *Service) resolveTargetOffice(p scope.Principal, requested string) (string, error) {
	if p.IsAdmin() {
		if requested == "" {
			return "", ErrInvalidArgument
		}
		return requested, nil
	}
	if p.OfficeID == "" {
		return "", scope.ErrForbidden
	}
	if requested != "" && requested != p.OfficeID {
		return "", scope.ErrForbidden
	}
	return p.OfficeID, nil
}
