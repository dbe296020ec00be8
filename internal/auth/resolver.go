package auth

import (
	"context"
	"strings"
	"time"

	"exchange-crm/internal/scope"
)

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
)

// Resolver turns an Authorization header value into a verified principal.
//
// The token only proves identity; role, office and status are re-read from
// the credential store on every request. There is no caching: a deactivated
// or demoted user is cut off on their next request even though their token
// is still cryptographically valid.
type Resolver struct {
	codec *Codec
	store AccountStore
	clock func() time.Time
}

func NewResolver(codec *Codec, store AccountStore) *Resolver {
	return &Resolver{codec: codec, store: store, clock: time.Now}
}

// Resolve returns the principal for rawHeader, or ErrUnauthenticated.
// Unexpected store failures are returned as-is so callers can surface 500.
func (r *Resolver) Resolve(ctx context.Context, rawHeader string) (scope.Principal, error) {
	raw := strings.TrimSpace(rawHeader)
	if raw == "" || !strings.HasPrefix(raw, bearerPrefix) {
		return scope.Principal{}, ErrUnauthenticated
	}
	tok := strings.TrimPrefix(raw, bearerPrefix)

	claims, err := r.codec.Verify(tok, r.clock())
	if err != nil {
		return scope.Principal{}, ErrUnauthenticated
	}

	acc, ok, err := r.store.FindByID(ctx, claims.UserID)
	if err != nil {
		return scope.Principal{}, err
	}
	if !ok {
		return scope.Principal{}, ErrUnauthenticated
	}
	if acc.Status != scope.StatusActive {
		// Deliberate re-check: a still-unexpired token for a deactivated
		// account is rejected here, not in the codec.
		return scope.Principal{}, ErrUnauthenticated
	}

	return scope.Principal{
		UserID:   acc.ID,
		Role:     acc.Role,
		OfficeID: acc.OfficeID,
	}, nil
}
