package auth

import (
	"errors"
	"net/http"

	"exchange-crm/internal/scope"

	"github.com/gin-gonic/gin"
)

// RequirePrincipal resolves the bearer token and injects the principal into
// the request context. It performs no office checks; those belong to
// internal/scope and the domain services.
func RequirePrincipal(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := r.Resolve(c.Request.Context(), c.GetHeader(authorizationHeader))
		if err != nil {
			if errors.Is(err, ErrUnauthenticated) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or missing bearer token"})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
			return
		}

		ctx := scope.WithPrincipal(c.Request.Context(), p)
		c.Request = c.Request.WithContext(ctx)

		// Also store on gin context for handler convenience.
		c.Set("user_id", p.UserID)
		c.Set("role", p.Role)

		c.Next()
	}
}
