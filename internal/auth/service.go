package auth

import (
	"context"
	"strings"
	"time"

	"exchange-crm/internal/scope"
)

// LoginLimiter throttles authentication attempts. Implemented over Redis in
// pkg/utils; nil disables throttling (tests, local tooling).
type LoginLimiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// AuditLog receives login outcomes. Best-effort: failures never block login.
type AuditLog interface {
	LogLogin(ctx context.Context, officeID, userID, email, ip string, success bool)
}

// Service implements credential verification and token issuance.
type Service struct {
	codec   *Codec
	store   AccountStore
	limiter LoginLimiter
	audit   AuditLog
	clock   func() time.Time
}

func NewService(codec *Codec, store AccountStore, limiter LoginLimiter, audit AuditLog) *Service {
	return &Service{
		codec:   codec,
		store:   store,
		limiter: limiter,
		audit:   audit,
		clock:   time.Now,
	}
}

// OfficeSummary is the office projection exposed to clients after login.
type OfficeSummary struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

// PublicUser is the user projection returned on login. Never includes the
// secret hash.
type PublicUser struct {
	ID     string        `json:"id"`
	Name   string        `json:"name"`
	Email  string        `json:"email"`
	Role   string        `json:"role"`
	Office OfficeSummary `json:"office"`
}

type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      PublicUser `json:"user"`
}

// NormalizeEmail is the canonical email form used for lookups and throttle
// keys: trimmed and lowercased.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Authenticate verifies email+password and issues a bearer token.
//
// Failure ordering is deliberate:
//  1. throttle (before any store work)
//  2. unknown email and wrong password both return ErrInvalidCredentials,
//     with equal bcrypt cost on both paths
//  3. disabled status is checked only after the secret verified, so an
//     attacker guessing passwords never learns an account is disabled
func (s *Service) Authenticate(ctx context.Context, email, password, clientIP string) (Session, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return Session{}, ErrInvalidCredentials
	}

	if s.limiter != nil {
		allowed, err := s.limiter.Allow(ctx, email+"|"+clientIP)
		if err != nil {
			return Session{}, err
		}
		if !allowed {
			return Session{}, ErrTooManyAttempts
		}
	}

	acc, found, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		return Session{}, err
	}
	if !found {
		burnPasswordCheck(password)
		s.logLogin(ctx, Account{Email: email}, clientIP, false)
		return Session{}, ErrInvalidCredentials
	}

	if err := VerifyPassword(acc.PasswordHash, password); err != nil {
		s.logLogin(ctx, acc, clientIP, false)
		return Session{}, ErrInvalidCredentials
	}

	if acc.Status != scope.StatusActive {
		s.logLogin(ctx, acc, clientIP, false)
		return Session{}, ErrAccountDisabled
	}

	now := s.clock().UTC()
	token, err := s.codec.Issue(now, acc.ID, acc.Role)
	if err != nil {
		return Session{}, err
	}

	s.logLogin(ctx, acc, clientIP, true)

	return Session{
		Token:     token,
		ExpiresAt: now.Add(s.codec.TTL()),
		User: PublicUser{
			ID:    acc.ID,
			Name:  acc.Name,
			Email: acc.Email,
			Role:  acc.Role,
			Office: OfficeSummary{
				ID:   acc.OfficeID,
				Name: acc.OfficeName,
			},
		},
	}, nil
}

func (s *Service) logLogin(ctx context.Context, acc Account, ip string, success bool) {
	if s.audit == nil {
		return
	}
	s.audit.LogLogin(ctx, acc.OfficeID, acc.ID, acc.Email, ip, success)
}
