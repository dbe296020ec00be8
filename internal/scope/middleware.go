package scope

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RequireAdmin gates admin-only route groups (user management, office-wide
// administration). Office checks on individual resources still go through
// Authorize in the services; this only filters by role up front.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := PrincipalFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !p.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}

// RequireOffice enforces that non-admin callers carry an office binding before
// any office-scoped handler runs. Admins pass through unconditionally.
func RequireOffice() gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := PrincipalFrom(c.Request.Context())
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !p.IsAdmin() && p.OfficeID == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
