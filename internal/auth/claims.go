package auth

import "github.com/golang-jwt/jwt/v5"

// Claims are the only supported JWT claims shape for this service.
//
// The token proves identity only. Role is embedded for diagnostics but is
// never trusted for authorization decisions: the resolver re-reads role and
// office from the credential store on every request, so demotions and
// deactivations take effect without re-login.
type Claims struct {
	jwt.RegisteredClaims

	UserID string `json:"user_id"`
	Role   string `json:"role"`
}
