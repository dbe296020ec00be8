package httpapi

import (
	"context"
	"net/http"
	"time"

	"exchange-crm/internal/auth"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/clients"
	"exchange-crm/internal/offices"
	"exchange-crm/internal/rates"
	"exchange-crm/internal/reporting"
	"exchange-crm/internal/scope"
	"exchange-crm/internal/transactions"
	"exchange-crm/internal/users"

	"github.com/gin-gonic/gin"
)

// OfficeReader is the read surface handlers need from the offices store.
// Satisfied by offices.Repository.
type OfficeReader interface {
	FindByID(ctx context.Context, id string) (offices.Office, error)
	List(ctx context.Context) ([]offices.Office, error)
}

// Handlers groups HTTP handlers for dependency injection.
// Keep these thin: parse/validate input, call internal services, return JSON.
type Handlers struct {
	Auth         *auth.Service
	Users        *users.Service
	Clients      *clients.Service
	Transactions *transactions.Service
	Campaigns    *campaigns.Service
	Rates        *rates.Service
	Reporting    *reporting.Service
	Offices      OfficeReader
}

// principal fetches the resolved principal or aborts with 401. The auth
// middleware always sets it on protected groups; this guards miswiring.
func principal(c *gin.Context) (scope.Principal, bool) {
	p, err := scope.PrincipalFrom(c.Request.Context())
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
		return scope.Principal{}, false
	}
	return p, true
}

// --- Auth ---

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h Handlers) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	session, err := h.Auth.Authenticate(c.Request.Context(), req.Email, req.Password, c.ClientIP())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// Me echoes the resolved principal. Useful for clients to discover their
// office binding after login.
func (h Handlers) Me(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"user_id": p.UserID, "role": p.Role, "office_id": p.OfficeID})
}

// --- Clients ---

func (h Handlers) ListClients(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Clients.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"clients": out})
}

func (h Handlers) GetClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Clients.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req clients.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Clients.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

type changeSegmentRequest struct {
	Segment clients.Segment `json:"segment"`
}

func (h Handlers) ChangeClientSegment(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req changeSegmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Clients.ChangeSegment(c.Request.Context(), p, c.Param("id"), req.Segment)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ClientSegmentHistory(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Clients.SegmentHistory(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"history": out})
}

func (h Handlers) RecommendForClient(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Campaigns.Recommend(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Transactions ---

func (h Handlers) CreateTransaction(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req transactions.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Transactions.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) GetTransaction(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Transactions.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) ListTransactions(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	f := transactions.ListFilter{ClientID: c.Query("client_id")}
	var err error
	if f.From, err = parseTimeQuery(c, "from"); err != nil {
		return
	}
	if f.To, err = parseTimeQuery(c, "to"); err != nil {
		return
	}
	out, err := h.Transactions.List(c.Request.Context(), p, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"transactions": out})
}

// --- Rates ---

type quoteRequest struct {
	OfficeID    string          `json:"office_id,omitempty"`
	Direction   rates.Direction `json:"direction"`
	Base        string          `json:"base"`
	Quote       string          `json:"quote"`
	AmountMinor int64           `json:"amount_minor"`
}

// Quote previews a conversion without booking it. Agents quote against their
// own office; admins must name one.
func (h Handlers) Quote(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req quoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}

	officeID := req.OfficeID
	if !p.IsAdmin() {
		if officeID != "" && officeID != p.OfficeID {
			writeError(c, scope.ErrForbidden)
			return
		}
		officeID = p.OfficeID
	}

	out, err := h.Rates.Compute(c.Request.Context(), rates.QuoteRequest{
		OfficeID:    officeID,
		Direction:   req.Direction,
		Base:        req.Base,
		Quote:       req.Quote,
		AmountMinor: req.AmountMinor,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// UpsertRate publishes an office rate. Reaches here only through the admin
// group, so no office pinning is needed.
func (h Handlers) UpsertRate(c *gin.Context) {
	if _, ok := principal(c); !ok {
		return
	}
	var req rates.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Rates.Upsert(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

// --- Campaigns ---

func (h Handlers) ListCampaigns(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Campaigns.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"campaigns": out})
}

func (h Handlers) GetCampaign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Campaigns.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateCampaign(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req campaigns.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Campaigns.Create(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

type campaignStatusRequest struct {
	Status campaigns.Status `json:"status"`
}

func (h Handlers) SetCampaignStatus(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req campaignStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Campaigns.SetStatus(c.Request.Context(), p, c.Param("id"), req.Status)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) SendQuickMessage(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req campaigns.SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Campaigns.SendMessage(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) ListQuickMessages(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Campaigns.ListMessages(c.Request.Context(), p, c.Query("campaign_id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": out})
}

// --- Users ---

func (h Handlers) ListUsers(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Users.List(c.Request.Context(), p)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"users": out})
}

func (h Handlers) GetUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	out, err := h.Users.Get(c.Request.Context(), p, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CreateUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	var req users.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "invalid json"})
		return
	}
	out, err := h.Users.Create(c.Request.Context(), p, c.ClientIP(), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, out)
}

func (h Handlers) DeactivateUser(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	if err := h.Users.Deactivate(c.Request.Context(), p, c.ClientIP(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deactivated"})
}

// --- Offices ---

func (h Handlers) ListOffices(c *gin.Context) {
	out, err := h.Offices.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"offices": out})
}

// GetOffice lets agents read their own office only; a foreign office id
// answers 404 like any other scoped resource.
func (h Handlers) GetOffice(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	id := c.Param("id")
	if d := scope.Authorize(p, id); !d.Allowed {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	out, err := h.Offices.FindByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// --- Reporting ---

func (h Handlers) TransactionsSummary(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	req := reporting.TransactionsSummaryRequest{
		OfficeID: c.Query("office_id"),
		ClientID: c.Query("client_id"),
	}
	var err error
	if req.Range.From, err = parseTimeQuery(c, "from"); err != nil {
		return
	}
	if req.Range.To, err = parseTimeQuery(c, "to"); err != nil {
		return
	}
	out, err := h.Reporting.TransactionsSummary(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

func (h Handlers) CampaignConversion(c *gin.Context) {
	p, ok := principal(c)
	if !ok {
		return
	}
	req := reporting.CampaignConversionRequest{
		OfficeID:   c.Query("office_id"),
		CampaignID: c.Query("campaign_id"),
	}
	var err error
	if req.Range.From, err = parseTimeQuery(c, "from"); err != nil {
		return
	}
	if req.Range.To, err = parseTimeQuery(c, "to"); err != nil {
		return
	}
	out, err := h.Reporting.CampaignConversion(c.Request.Context(), p, req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// parseTimeQuery reads an RFC3339 query parameter. Aborts with 400 on a
// malformed value; an absent parameter yields the zero time.
func parseTimeQuery(c *gin.Context, name string) (time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": name + " must be RFC3339"})
		return time.Time{}, err
	}
	return t, nil
}
