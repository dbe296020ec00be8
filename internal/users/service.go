package users

import (
	"context"
	"errors"
	"time"

	"exchange-crm/internal/auth"
	"exchange-crm/internal/scope"

	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("user not found")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrEmailTaken      = errors.New("email already in use")
)

// Store abstracts user persistence for the service.
type Store interface {
	Get(ctx context.Context, id string) (User, bool, error)
	GetByEmail(ctx context.Context, email string) (User, bool, error)
	List(ctx context.Context, officeID string) ([]User, error)
	Insert(ctx context.Context, u User) error
	UpdateStatus(ctx context.Context, id, status string) (bool, error)
}

// AdminAudit receives privileged-mutation records. Best-effort.
type AdminAudit interface {
	LogAdminAction(ctx context.Context, officeID, actorUserID, actorRole, ip, message, targetUserID, metadata string) error
}

// Service is the user-management surface. Reads are office-scoped like every
// other resource; mutations are admin-only.
type Service struct {
	store Store
	audit AdminAudit
	clock func() time.Time
}

func NewService(store Store, audit AdminAudit) *Service {
	return &Service{store: store, audit: audit, clock: time.Now}
}

// Get returns a single user. A cross-office lookup by an agent collapses to
// ErrNotFound so id probing reveals nothing.
func (s *Service) Get(ctx context.Context, p scope.Principal, id string) (User, error) {
	if id == "" {
		return User{}, ErrInvalidArgument
	}
	u, ok, err := s.store.Get(ctx, id)
	if err != nil {
		return User{}, err
	}
	if !ok {
		return User{}, ErrNotFound
	}
	// Admin accounts have no office; only admins may read them.
	if d := scope.Authorize(p, u.OfficeID); !d.Allowed {
		return User{}, ErrNotFound
	}
	return u, nil
}

// List applies the tenancy pre-filter before the query executes: admins get
// all users, agents only colleagues from their own office.
func (s *Service) List(ctx context.Context, p scope.Principal) ([]User, error) {
	officeID, restricted := scope.ListScope(p)
	if restricted && officeID == "" {
		// Office-less agent: nothing is visible.
		return nil, nil
	}
	return s.store.List(ctx, officeID)
}

type CreateRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Role     string `json:"role"`
	OfficeID string `json:"office_id,omitempty"`
}

// Create registers a new user. Admin-only. Agent accounts must bind to an
// office at creation; the binding is immutable afterwards.
func (s *Service) Create(ctx context.Context, p scope.Principal, ip string, req CreateRequest) (User, error) {
	if !p.IsAdmin() {
		return User{}, scope.ErrForbidden
	}

	email := auth.NormalizeEmail(req.Email)
	if email == "" || req.Name == "" || req.Password == "" {
		return User{}, ErrInvalidArgument
	}
	switch req.Role {
	case scope.RoleAdmin:
		if req.OfficeID != "" {
			return User{}, ErrInvalidArgument
		}
	case scope.RoleAgent:
		if req.OfficeID == "" {
			return User{}, ErrInvalidArgument
		}
	default:
		return User{}, ErrInvalidArgument
	}

	if _, exists, err := s.store.GetByEmail(ctx, email); err != nil {
		return User{}, err
	} else if exists {
		return User{}, ErrEmailTaken
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return User{}, err
	}

	now := s.clock().UTC()
	u := User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         req.Name,
		PasswordHash: hash,
		Role:         req.Role,
		Status:       scope.StatusActive,
		OfficeID:     req.OfficeID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.store.Insert(ctx, u); err != nil {
		return User{}, err
	}

	if s.audit != nil {
		_ = s.audit.LogAdminAction(ctx, req.OfficeID, p.UserID, p.Role, ip, "user created", u.ID, "")
	}
	return u, nil
}

// Deactivate flips a user to inactive. Admin-only. The target's outstanding
// tokens keep verifying cryptographically but fail principal resolution from
// the next request on.
func (s *Service) Deactivate(ctx context.Context, p scope.Principal, ip, userID string) error {
	if !p.IsAdmin() {
		return scope.ErrForbidden
	}
	if userID == "" {
		return ErrInvalidArgument
	}

	ok, err := s.store.UpdateStatus(ctx, userID, scope.StatusInactive)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}

	if s.audit != nil {
		_ = s.audit.LogAdminAction(ctx, "", p.UserID, p.Role, ip, "user deactivated", userID, "")
	}
	return nil
}
