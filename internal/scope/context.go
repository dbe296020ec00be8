package scope

import (
	"context"
	"errors"
)

type ctxKey int

const ctxPrincipal ctxKey = iota

// WithPrincipal stores the resolved principal in the request context.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, ctxPrincipal, p)
}

// PrincipalFrom extracts the principal set by the auth middleware.
func PrincipalFrom(ctx context.Context) (Principal, error) {
	v := ctx.Value(ctxPrincipal)
	if p, ok := v.(Principal); ok && p.UserID != "" {
		return p, nil
	}
	return Principal{}, errors.New("principal not in context")
}
