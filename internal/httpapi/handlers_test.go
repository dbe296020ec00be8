package httpapi

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"exchange-crm/internal/auth"
	"exchange-crm/internal/campaigns"
	"exchange-crm/internal/clients"
	"exchange-crm/internal/config"
	"exchange-crm/internal/rates"
	"exchange-crm/internal/reporting"
	"exchange-crm/internal/scope"
	"exchange-crm/internal/transactions"
	"exchange-crm/internal/users"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestWriteError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{auth.ErrInvalidCredentials, http.StatusUnauthorized},
		{auth.ErrUnauthenticated, http.StatusUnauthorized},
		{auth.ErrAccountDisabled, http.StatusUnauthorized},
		{auth.ErrTooManyAttempts, http.StatusTooManyRequests},
		{scope.ErrForbidden, http.StatusForbidden},
		{users.ErrNotFound, http.StatusNotFound},
		{clients.ErrNotFound, http.StatusNotFound},
		{transactions.ErrNotFound, http.StatusNotFound},
		{campaigns.ErrNotFound, http.StatusNotFound},
		{users.ErrEmailTaken, http.StatusConflict},
		{clients.ErrInvalidArgument, http.StatusBadRequest},
		{rates.ErrRateNotFound, http.StatusBadRequest},
		{rates.ErrInvalidRate, http.StatusBadRequest},
		{reporting.ErrInvalidRequest, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		writeError(c, tc.err)
		if w.Code != tc.want {
			t.Fatalf("%v: expected %d, got %d", tc.err, tc.want, w.Code)
		}
	}
}

func TestWriteError_InternalDetailsNotLeaked(t *testing.T) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	writeError(c, errors.New("pq: connection refused host=10.0.0.5"))
	if strings.Contains(w.Body.String(), "10.0.0.5") {
		t.Fatalf("internal error detail leaked: %s", w.Body.String())
	}
}

// --- login flow ---

type fakeAccountStore struct {
	accounts map[string]auth.Account
}

func (f *fakeAccountStore) FindByID(ctx context.Context, id string) (auth.Account, bool, error) {
	for _, a := range f.accounts {
		if a.ID == id {
			return a, true, nil
		}
	}
	return auth.Account{}, false, nil
}

func (f *fakeAccountStore) FindByEmail(ctx context.Context, email string) (auth.Account, bool, error) {
	a, ok := f.accounts[email]
	return a, ok, nil
}

func loginTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	codec := testCodec(t)
	hash, err := auth.HashPassword("s3cret")
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	store := &fakeAccountStore{accounts: map[string]auth.Account{
		"ivan@office1.example": {
			ID: "u1", Email: "ivan@office1.example", Name: "Ivan",
			PasswordHash: hash, Role: scope.RoleAgent, Status: scope.StatusActive,
			OfficeID: "o1",
		},
	}}
	h := Handlers{Auth: auth.NewService(codec, store, nil, nil)}

	r := gin.New()
	r.POST("/v1/auth/login", h.Login)
	return r
}

func testCodec(t *testing.T) *auth.Codec {
	t.Helper()
	codec, err := auth.NewCodec(config.AuthConfig{JWTSecret: "test-secret", TokenTTL: time.Hour})
	if err != nil {
		t.Fatalf("codec: %v", err)
	}
	return codec
}

func TestLoginEndpoint(t *testing.T) {
	r := loginTestRouter(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/auth/login",
		strings.NewReader(`{"email":"Ivan@Office1.example ","password":"s3cret"}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"token"`) {
		t.Fatalf("expected session token in response: %s", w.Body.String())
	}
	if strings.Contains(w.Body.String(), "password") {
		t.Fatalf("password material leaked: %s", w.Body.String())
	}
}

func TestLoginEndpoint_FailuresIndistinguishable(t *testing.T) {
	r := loginTestRouter(t)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/login", strings.NewReader(body))
		r.ServeHTTP(w, req)
		return w
	}

	wrongPassword := post(`{"email":"ivan@office1.example","password":"nope"}`)
	unknownEmail := post(`{"email":"ghost@office1.example","password":"nope"}`)

	if wrongPassword.Code != http.StatusUnauthorized || unknownEmail.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401/401, got %d/%d", wrongPassword.Code, unknownEmail.Code)
	}
	if wrongPassword.Body.String() != unknownEmail.Body.String() {
		t.Fatalf("failure responses must be identical: %s vs %s",
			wrongPassword.Body.String(), unknownEmail.Body.String())
	}
}

// --- scoped resource flow ---

type clientMemStore struct {
	rows map[string]clients.Client
}

func (m *clientMemStore) Get(ctx context.Context, id string) (clients.Client, bool, error) {
	c, ok := m.rows[id]
	return c, ok, nil
}

func (m *clientMemStore) List(ctx context.Context, officeID string) ([]clients.Client, error) {
	var out []clients.Client
	for _, c := range m.rows {
		if officeID != "" && c.OfficeID != officeID {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (m *clientMemStore) Insert(ctx context.Context, c clients.Client) error {
	m.rows[c.ID] = c
	return nil
}

func (m *clientMemStore) UpdateSegment(ctx context.Context, h clients.SegmentHistory, now time.Time) error {
	c := m.rows[h.ClientID]
	c.Segment = h.ToSegment
	m.rows[h.ClientID] = c
	return nil
}

func (m *clientMemStore) ListSegmentHistory(ctx context.Context, clientID string) ([]clients.SegmentHistory, error) {
	return nil, nil
}

// asPrincipal injects a principal the way the auth middleware does, so
// routes can be exercised without minting tokens.
func asPrincipal(p scope.Principal) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := scope.WithPrincipal(c.Request.Context(), p)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func TestGetClientEndpoint_ScopedVisibility(t *testing.T) {
	store := &clientMemStore{rows: map[string]clients.Client{
		"c1": {ID: "c1", OfficeID: "o1", Name: "Ivan"},
		"c2": {ID: "c2", OfficeID: "o2", Name: "Petr"},
	}}
	h := Handlers{Clients: clients.NewService(store, nil)}

	agent := scope.Principal{UserID: "u1", Role: scope.RoleAgent, OfficeID: "o1"}
	r := gin.New()
	g := r.Group("", asPrincipal(agent), scope.RequireOffice())
	g.GET("/v1/clients/:id", h.GetClient)

	get := func(path string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	if w := get("/v1/clients/c1"); w.Code != http.StatusOK {
		t.Fatalf("own office: expected 200, got %d", w.Code)
	}

	cross := get("/v1/clients/c2")
	miss := get("/v1/clients/nope")
	if cross.Code != http.StatusNotFound || miss.Code != http.StatusNotFound {
		t.Fatalf("expected 404/404, got %d/%d", cross.Code, miss.Code)
	}
	if cross.Body.String() != miss.Body.String() {
		t.Fatalf("cross-office and miss responses must be identical")
	}
}

func TestAdminRoutes_RoleGate(t *testing.T) {
	h := Handlers{}
	agent := scope.Principal{UserID: "u1", Role: scope.RoleAgent, OfficeID: "o1"}

	r := gin.New()
	admin := r.Group("/v1/admin", asPrincipal(agent), scope.RequireAdmin())
	admin.POST("/users", h.CreateUser)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/admin/users", strings.NewReader(`{}`))
	r.ServeHTTP(w, req)
	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for agent on admin route, got %d", w.Code)
	}
}

func TestQuoteEndpoint_AgentPinnedToOwnOffice(t *testing.T) {
	now := time.Now().UTC()
	repo := &rates.MemoryRepo{Rates: []rates.Rate{
		{ID: "r1", OfficeID: "o1", Base: "USD", Quote: "EUR", Direction: rates.DirectionBuy,
			RateMicro: 920_000, EffectiveFrom: now.Add(-time.Hour), Status: rates.RateStatusActive},
	}}
	h := Handlers{Rates: rates.NewService(repo)}

	agent := scope.Principal{UserID: "u1", Role: scope.RoleAgent, OfficeID: "o1"}
	r := gin.New()
	g := r.Group("", asPrincipal(agent), scope.RequireOffice())
	g.POST("/v1/rates/quote", h.Quote)

	post := func(body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, "/v1/rates/quote", strings.NewReader(body))
		r.ServeHTTP(w, req)
		return w
	}

	if w := post(`{"direction":"buy","base":"USD","quote":"EUR","amount_minor":10000}`); w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	// Naming a foreign office explicitly is a 403, not a 404: the caller
	// already knows the office exists.
	if w := post(`{"office_id":"o2","direction":"buy","base":"USD","quote":"EUR","amount_minor":10000}`); w.Code != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", w.Code)
	}
}

func TestUpsertRateEndpoint_PublishThenQuote(t *testing.T) {
	h := Handlers{Rates: rates.NewService(&rates.MemoryRepo{})}

	admin := scope.Principal{UserID: "a1", Role: scope.RoleAdmin}
	agent := scope.Principal{UserID: "u1", Role: scope.RoleAgent, OfficeID: "o1"}

	r := gin.New()
	adminG := r.Group("/v1/admin", asPrincipal(admin), scope.RequireAdmin())
	adminG.POST("/rates", h.UpsertRate)
	agentG := r.Group("", asPrincipal(agent), scope.RequireOffice())
	agentG.POST("/v1/rates/quote", h.Quote)

	post := func(path, body string) *httptest.ResponseRecorder {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		r.ServeHTTP(w, req)
		return w
	}

	// The agent has nothing to quote against until the admin publishes.
	if w := post("/v1/rates/quote", `{"direction":"buy","base":"USD","quote":"EUR","amount_minor":10000}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 before publish, got %d", w.Code)
	}

	if w := post("/v1/admin/rates", `{"office_id":"o1","base":"USD","quote":"EUR","direction":"buy","rate_micro":920000}`); w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}

	w := post("/v1/rates/quote", `{"direction":"buy","base":"USD","quote":"EUR","amount_minor":10000}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 after publish, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"QuoteMinor":9200`) {
		t.Fatalf("expected converted amount in response: %s", w.Body.String())
	}

	if w := post("/v1/admin/rates", `{"office_id":"o1","base":"USD","quote":"USD","direction":"buy","rate_micro":1}`); w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for invalid rate, got %d", w.Code)
	}
}
