package auth

import "errors"

var (
	// ErrUnauthenticated covers every failure to establish identity: missing
	// or malformed header, bad signature, expired token, unknown user, or a
	// deactivated account presenting a still-valid token.
	ErrUnauthenticated = errors.New("unauthenticated")

	// ErrInvalidCredentials is returned for both unknown email and wrong
	// password; the two must stay indistinguishable to callers.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountDisabled is only reachable after the secret verified.
	ErrAccountDisabled = errors.New("account disabled")

	// ErrTooManyAttempts signals the login throttle tripped.
	ErrTooManyAttempts = errors.New("too many attempts")
)
