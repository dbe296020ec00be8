package httpapi

import (
	"errors"
	"net/http"

	"exchange-crm/internal/auth"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/clients"
	"exchange-crm/internal/offices"
	"exchange-crm/internal/rates"
	"exchange-crm/internal/reporting"
	"exchange-crm/internal/scope"
	"exchange-crm/internal/transactions"
	"exchange-crm/internal/users"
	"exchange-crm/pkg/logger"

	"github.com/gin-gonic/gin"
)

// writeError maps service sentinels to HTTP statuses in one place so every
// handler returns the same shape for the same failure.
//
// The services already collapse cross-office reads into their not-found
// sentinels, so a 404 here never distinguishes "absent" from "foreign".
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials),
		errors.Is(err, auth.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})

	case errors.Is(err, auth.ErrAccountDisabled):
		// Disabled accounts are only distinguishable after the secret
		// verified; still a 401 so automation treats it as a dead credential.
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "account disabled"})

	case errors.Is(err, auth.ErrTooManyAttempts):
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many attempts"})

	case errors.Is(err, scope.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})

	case errors.Is(err, users.ErrNotFound),
		errors.Is(err, clients.ErrNotFound),
		errors.Is(err, transactions.ErrNotFound),
		errors.Is(err, campaigns.ErrNotFound),
		errors.Is(err, offices.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})

	case errors.Is(err, users.ErrEmailTaken):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": "email already in use"})

	case errors.Is(err, users.ErrInvalidArgument),
		errors.Is(err, clients.ErrInvalidArgument),
		errors.Is(err, transactions.ErrInvalidArgument),
		errors.Is(err, campaigns.ErrInvalidArgument),
		errors.Is(err, campaigns.ErrCampaignClosed),
		errors.Is(err, rates.ErrInvalidQuoteReq),
		errors.Is(err, rates.ErrInvalidRate),
		errors.Is(err, rates.ErrRateNotFound),
		errors.Is(err, reporting.ErrInvalidRequest):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	default:
		// The real error goes to the request log only; the body stays opaque.
		logger.FromGin(c).Error("unhandled service error", "err", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
