package clients

import (
	"context"
	"errors"
	"time"

	"exchange-crm/internal/scope"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("client not found")
	ErrInvalidArgument = errors.New("invalid argument")
)

// Store abstracts client persistence for the service.
type Store interface {
	Get(ctx context.Context, id string) (Client, bool, error)
	List(ctx context.Context, officeID string) ([]Client, error)
	Insert(ctx context.Context, c Client) error
	UpdateSegment(ctx context.Context, h SegmentHistory, now time.Time) error
	ListSegmentHistory(ctx context.Context, clientID string) ([]SegmentHistory, error)
}

// IntegrityAudit flags orphaned rows discovered during authorization.
type IntegrityAudit interface {
	LogDataIntegrity(ctx context.Context, actorUserID, clientID, transactionID, message string) error
}

type Service struct {
	store Store
	audit IntegrityAudit
	clock func() time.Time
}

func NewService(store Store, audit IntegrityAudit) *Service {
	return &Service{store: store, audit: audit, clock: time.Now}
}

// Get authorizes against the client's owning office before reporting
// existence: a cross-office id lookup is indistinguishable from a miss.
func (s *Service) Get(ctx context.Context, p scope.Principal, id string) (Client, error) {
	if id == "" {
		return Client{}, ErrInvalidArgument
	}
	c, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return Client{}, err
	}
	if !ok {
		return Client{}, ErrNotFound
	}
	if d := scope.Authorize(p, c.OfficeID); !d.Allowed {
		s.flagOrphan(ctx, p, d, c.ID)
		return Client{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, p scope.Principal) ([]Client, error) {
	officeID, restricted := scope.ListScope(p)
	if restricted && officeID == "" {
		return nil, nil
	}
	return s.store.List(ctx, officeID)
}

type CreateRequest struct {
	Name    string  `json:"name"`
	Phone   string  `json:"phone,omitempty"`
	Email   string  `json:"email,omitempty"`
	Segment Segment `json:"segment,omitempty"`
	Notes   string  `json:"notes,omitempty"`

	// OfficeID may only be set by admins; agents always create into their
	// own office.
	OfficeID string `json:"office_id,omitempty"`
}

// Create inserts a client into a resolved owning office. An agent's client
// lands in the agent's office; an admin must name one explicitly. A request
// whose office cannot be resolved is rejected, never stored office-less.
func (s *Service) Create(ctx context.Context, p scope.Principal, req CreateRequest) (Client, error) {
	if req.Name == "" {
		return Client{}, ErrInvalidArgument
	}
	seg := req.Segment
	if seg == "" {
		seg = SegmentNew
	}
	if !validSegment(seg) {
		return Client{}, ErrInvalidArgument
	}

	officeID, err := resolveTargetOffice(p, req.OfficeID)
	if err != nil {
		return Client{}, err
	}

	now := s.clock().UTC()
	c := Client{
		ID:        uuid.NewString(),
		OfficeID:  officeID,
		Name:      req.Name,
		Phone:     req.Phone,
		Email:     req.Email,
		Segment:   seg,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Insert(ctx, c); err != nil {
		return Client{}, err
	}
	return c, nil
}

// ChangeSegment moves a client to a new segment and appends a history row.
func (s *Service) ChangeSegment(ctx context.Context, p scope.Principal, clientID string, to Segment) (SegmentHistory, error) {
	if !validSegment(to) {
		return SegmentHistory{}, ErrInvalidArgument
	}
	c, err := s.Get(ctx, p, clientID)
	if err != nil {
		return SegmentHistory{}, err
	}
	if c.Segment == to {
		return SegmentHistory{}, ErrInvalidArgument
	}

	now := s.clock().UTC()
	h := SegmentHistory{
		ID:          uuid.NewString(),
		ClientID:    c.ID,
		FromSegment: c.Segment,
		ToSegment:   to,
		ChangedBy:   p.UserID,
		CreatedAt:   now,
	}
	if err := s.store.UpdateSegment(ctx, h, now); err != nil {
		return SegmentHistory{}, err
	}
	return h, nil
}

// SegmentHistory lists a client's segment transitions. History rows have no
// office of their own; the check runs against the owning client, so the
// guard outcome is identical to reading the client itself.
func (s *Service) SegmentHistory(ctx context.Context, p scope.Principal, clientID string) ([]SegmentHistory, error) {
	if _, err := s.Get(ctx, p, clientID); err != nil {
		return nil, err
	}
	return s.store.ListSegmentHistory(ctx, clientID)
}

func (s *Service) flagOrphan(ctx context.Context, p scope.Principal, d scope.Decision, clientID string) {
	if s.audit == nil || !scope.OrphanedResource(d) {
		return
	}
	_ = s.audit.LogDataIntegrity(ctx, p.UserID, clientID, "", "client has no owning office")
}

// resolveTargetOffice decides which office a new scoped row belongs to.
// Shared by create paths: agents write into their own office only, and an
// explicit foreign office is a Forbidden (the caller named it, so existence
// is not being leaked).
func resolveTargetOffice(p scope.Principal, requested string) (string, error) {
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
