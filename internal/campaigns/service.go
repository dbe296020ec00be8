package campaigns

import (
	"context"
	"errors"
	"time"

	"exchange-crm/internal/clients"
	"exchange-crm/internal/scope"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("campaign not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrCampaignClosed  = errors.New("campaign not active")
)

// Store abstracts campaign persistence for the service.
type Store interface {
	GetCampaign(ctx context.Context, id string) (Campaign, bool, error)
	ListCampaigns(ctx context.Context, officeID string) ([]Campaign, error)
	InsertCampaign(ctx context.Context, c Campaign) error
	UpdateCampaignStatus(ctx context.Context, id string, status Status) (bool, error)
	InsertMessage(ctx context.Context, m QuickMessage) error
	ListMessages(ctx context.Context, officeID, campaignID string) ([]QuickMessage, error)
}

// ClientSource resolves clients with scoping already applied. Implemented by
// clients.Service; its not-found answer already hides foreign offices, so
// this package inherits that behavior for free.
type ClientSource interface {
	Get(ctx context.Context, p scope.Principal, id string) (clients.Client, error)
}

// RecommendationLog records which campaign was recommended to whom.
type RecommendationLog interface {
	LogRecommendation(ctx context.Context, actorUserID string, rec Recommendation) error
}

type Service struct {
	store     Store
	clientSrc ClientSource
	recLog    RecommendationLog
	clock     func() time.Time
}

func NewService(store Store, clientSrc ClientSource, recLog RecommendationLog) *Service {
	return &Service{store: store, clientSrc: clientSrc, recLog: recLog, clock: time.Now}
}

// Get authorizes against the campaign's owning office before reporting
// existence.
func (s *Service) Get(ctx context.Context, p scope.Principal, id string) (Campaign, error) {
	if id == "" {
		return Campaign{}, ErrInvalidArgument
	}
	c, ok, err := s.store.GetCampaign(ctx, id)
	if err != nil {
		return Campaign{}, err
	}
	if !ok {
		return Campaign{}, ErrNotFound
	}
	if d := scope.Authorize(p, c.OfficeID); !d.Allowed {
		return Campaign{}, ErrNotFound
	}
	return c, nil
}

func (s *Service) List(ctx context.Context, p scope.Principal) ([]Campaign, error) {
	officeID, restricted := scope.ListScope(p)
	if restricted && officeID == "" {
		return nil, nil
	}
	return s.store.ListCampaigns(ctx, officeID)
}

type CreateRequest struct {
	Name            string            `json:"name"`
	Segments        []clients.Segment `json:"segments,omitempty"`
	Priority        int               `json:"priority"`
	StartsAt        time.Time         `json:"starts_at,omitempty"`
	EndsAt          *time.Time        `json:"ends_at,omitempty"`
	MessageTemplate string            `json:"message_template,omitempty"`

	// OfficeID may only be set by admins; agents always create into their
	// own office.
	OfficeID string `json:"office_id,omitempty"`
}

// Create inserts a campaign into a resolved owning office, following the
// same resolution as client creation.
func (s *Service) Create(ctx context.Context, p scope.Principal, req CreateRequest) (Campaign, error) {
	if req.Name == "" || req.Priority < 0 {
		return Campaign{}, ErrInvalidArgument
	}
	for _, seg := range req.Segments {
		switch seg {
		case clients.SegmentNew, clients.SegmentRegular, clients.SegmentVIP, clients.SegmentDormant:
		default:
			return Campaign{}, ErrInvalidArgument
		}
	}

	officeID, err := s.resolveTargetOffice(p, req.OfficeID)
	if err != nil {
		return Campaign{}, err
	}

	now := s.clock().UTC()
	startsAt := req.StartsAt
	if startsAt.IsZero() {
		startsAt = now
	}
	if req.EndsAt != nil && !req.EndsAt.After(startsAt) {
		return Campaign{}, ErrInvalidArgument
	}

	c := Campaign{
		ID:              uuid.NewString(),
		OfficeID:        officeID,
		Name:            req.Name,
		Status:          StatusActive,
		Segments:        req.Segments,
		Priority:        req.Priority,
		StartsAt:        startsAt,
		EndsAt:          req.EndsAt,
		MessageTemplate: req.MessageTemplate,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.store.InsertCampaign(ctx, c); err != nil {
		return Campaign{}, err
	}
	return c, nil
}

// SetStatus pauses or resumes a campaign.
func (s *Service) SetStatus(ctx context.Context, p scope.Principal, id string, status Status) (Campaign, error) {
	if status != StatusActive && status != StatusPaused {
		return Campaign{}, ErrInvalidArgument
	}
	c, err := s.Get(ctx, p, id)
	if err != nil {
		return Campaign{}, err
	}
	ok, err := s.store.UpdateCampaignStatus(ctx, id, status)
	if err != nil {
		return Campaign{}, err
	}
	if !ok {
		return Campaign{}, ErrNotFound
	}
	c.Status = status
	return c, nil
}

// Recommend picks the campaign an agent should offer a client right now.
//
// The client is resolved through the scoped client service, so a foreign
// client id fails exactly like a missing one. An ineligible client still
// gets a recommendation result (Eligible=false) rather than an error.
func (s *Service) Recommend(ctx context.Context, p scope.Principal, clientID string) (Recommendation, error) {
	if clientID == "" {
		return Recommendation{}, ErrInvalidArgument
	}
	client, err := s.clientSrc.Get(ctx, p, clientID)
	if err != nil {
		return Recommendation{}, err
	}

	candidates, err := s.store.ListCampaigns(ctx, client.OfficeID)
	if err != nil {
		return Recommendation{}, err
	}

	rec := Recommendation{
		OfficeID: client.OfficeID,
		ClientID: client.ID,
		Reason:   reasonNoEligible,
	}
	if c, ok := pickCampaign(candidates, client.Segment, s.clock().UTC()); ok {
		rec.CampaignID = c.ID
		rec.CampaignName = c.Name
		rec.Body = c.MessageTemplate
		rec.Eligible = true
		rec.Reason = reasonSelected
	}

	if s.recLog != nil {
		// Best-effort; a recommendation must not fail on audit problems.
		_ = s.recLog.LogRecommendation(ctx, p.UserID, rec)
	}
	return rec, nil
}

type SendMessageRequest struct {
	ClientID   string `json:"client_id"`
	CampaignID string `json:"campaign_id"`

	// Body overrides the campaign's message template when set.
	Body string `json:"body,omitempty"`
}

// SendMessage records a quick message sent to a client under a campaign.
// The campaign must belong to the client's office and be currently active.
func (s *Service) SendMessage(ctx context.Context, p scope.Principal, req SendMessageRequest) (QuickMessage, error) {
	if req.ClientID == "" || req.CampaignID == "" {
		return QuickMessage{}, ErrInvalidArgument
	}
	client, err := s.clientSrc.Get(ctx, p, req.ClientID)
	if err != nil {
		return QuickMessage{}, err
	}
	c, err := s.Get(ctx, p, req.CampaignID)
	if err != nil {
		return QuickMessage{}, err
	}
	if c.OfficeID != client.OfficeID {
		// Cross-office pairing looks like a missing campaign.
		return QuickMessage{}, ErrNotFound
	}

	now := s.clock().UTC()
	if c.Status != StatusActive || !c.effectiveAt(now) {
		return QuickMessage{}, ErrCampaignClosed
	}

	body := req.Body
	if body == "" {
		body = c.MessageTemplate
	}
	if body == "" {
		return QuickMessage{}, ErrInvalidArgument
	}

	m := QuickMessage{
		ID:         uuid.NewString(),
		OfficeID:   c.OfficeID,
		CampaignID: c.ID,
		ClientID:   client.ID,
		SentBy:     p.UserID,
		Body:       body,
		CreatedAt:  now,
	}
	if err := s.store.InsertMessage(ctx, m); err != nil {
		return QuickMessage{}, err
	}
	return m, nil
}

// ListMessages lists quick messages, office-constrained for agents and
// optionally narrowed to one campaign.
func (s *Service) ListMessages(ctx context.Context, p scope.Principal, campaignID string) ([]QuickMessage, error) {
	officeID, restricted := scope.ListScope(p)
	if restricted && officeID == "" {
		return nil, nil
	}
	return s.store.ListMessages(ctx, officeID, campaignID)
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
