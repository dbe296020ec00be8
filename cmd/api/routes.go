package main

import (
	"exchange-crm/internal/httpapi"
	"exchange-crm/internal/scope"

	"github.com/gin-gonic/gin"
)

// registerRoutes wires HTTP routes to handlers.
// Keep this file free of business logic. Handlers should delegate to internal modules.
func registerRoutes(r *gin.Engine, h httpapi.Handlers, authMW gin.HandlerFunc) {
	// public
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	v1 := r.Group("/v1")

	// Login is the only unauthenticated API route.
	v1.POST("/auth/login", h.Login)

	// protected API group
	api := v1.Group("")
	api.Use(authMW)
	{
		api.GET("/me", h.Me)

		// Office-scoped resources. RequireOffice rejects agents without an
		// office binding up front; per-row checks still run in the services.
		clientsG := api.Group("/clients")
		clientsG.Use(scope.RequireOffice())
		{
			clientsG.GET("", h.ListClients)
			clientsG.POST("", h.CreateClient)
			clientsG.GET("/:id", h.GetClient)
			clientsG.PUT("/:id/segment", h.ChangeClientSegment)
			clientsG.GET("/:id/segment-history", h.ClientSegmentHistory)
			clientsG.GET("/:id/recommendation", h.RecommendForClient)
		}

		txG := api.Group("/transactions")
		txG.Use(scope.RequireOffice())
		{
			txG.GET("", h.ListTransactions)
			txG.POST("", h.CreateTransaction)
			txG.GET("/:id", h.GetTransaction)
		}

		ratesG := api.Group("/rates")
		ratesG.Use(scope.RequireOffice())
		{
			ratesG.POST("/quote", h.Quote)
		}

		campaignsG := api.Group("/campaigns")
		campaignsG.Use(scope.RequireOffice())
		{
			campaignsG.GET("", h.ListCampaigns)
			campaignsG.POST("", h.CreateCampaign)
			campaignsG.GET("/:id", h.GetCampaign)
			campaignsG.PUT("/:id/status", h.SetCampaignStatus)
			campaignsG.POST("/messages", h.SendQuickMessage)
			campaignsG.GET("/messages", h.ListQuickMessages)
		}

		// Users are readable by anyone in the office; mutations are admin-only.
		api.GET("/users", h.ListUsers)
		api.GET("/users/:id", h.GetUser)

		api.GET("/offices/:id", h.GetOffice)

		reportsG := api.Group("/reports")
		{
			reportsG.GET("/transactions-summary", h.TransactionsSummary)
			reportsG.GET("/campaign-conversion", h.CampaignConversion)
		}

		// ADMIN routes
		admin := api.Group("/admin")
		admin.Use(scope.RequireAdmin())
		{
			admin.GET("/offices", h.ListOffices)
			admin.POST("/users", h.CreateUser)
			admin.POST("/users/:id/deactivate", h.DeactivateUser)
			admin.POST("/rates", h.UpsertRate)
		}
	}
}
