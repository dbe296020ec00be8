package audit

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
//
// It MUST be append-only.
// No Update/Delete methods are provided by design.

type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service logs internal audit information.
//
// IMPORTANT:
// - Audit is internal-only. Do not expose these records to tenant users by default.
// - Callers should treat audit logging as best-effort.

type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

func (s *Service) Append(ctx context.Context, e Event) error {
	if s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if e.Type == "" {
		return ErrInvalidEvent
	}

	now := s.clock().UTC()
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	return s.repo.Append(ctx, e)
}

// LogLogin records a login outcome. Satisfies auth.AuditLog; errors are
// swallowed because login must never fail on audit problems.
func (s *Service) LogLogin(ctx context.Context, officeID, userID, email, ip string, success bool) {
	typ := EventTypeLogin
	msg := "login succeeded"
	if !success {
		typ = EventTypeLoginFailed
		msg = "login failed"
	}
	_ = s.Append(ctx, Event{
		OfficeID:    officeID,
		Type:        typ,
		ActorUserID: userID,
		IPAddress:   ip,
		Message:     msg,
		Metadata:    `{"email":"` + email + `"}`,
	})
}

// LogAdminAction records a privileged mutation (user creation, deactivation,
// cross-office operations by admins).
func (s *Service) LogAdminAction(ctx context.Context, officeID, actorUserID, actorRole, ip, message, targetUserID, metadata string) error {
	return s.Append(ctx, Event{
		OfficeID:     officeID,
		Type:         EventTypeAdminAction,
		ActorUserID:  actorUserID,
		ActorRole:    actorRole,
		IPAddress:    ip,
		TargetUserID: targetUserID,
		Message:      message,
		Metadata:     metadata,
	})
}

// LogDataIntegrity flags a scoped row whose owning office could not be
// resolved at authorization time.
func (s *Service) LogDataIntegrity(ctx context.Context, actorUserID, clientID, transactionID, message string) error {
	return s.Append(ctx, Event{
		Type:          EventTypeDataIntegrity,
		ActorUserID:   actorUserID,
		ClientID:      clientID,
		TransactionID: transactionID,
		Message:       message,
	})
}
