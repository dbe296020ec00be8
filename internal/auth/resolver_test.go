package auth

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"exchange-crm/internal/scope"

	"github.com/gin-gonic/gin"
)

type fakeStore struct {
	byID    map[string]Account
	byEmail map[string]Account
	err     error
}

func (f *fakeStore) FindByID(ctx context.Context, id string) (Account, bool, error) {
	if f.err != nil {
		return Account{}, false, f.err
	}
	a, ok := f.byID[id]
	return a, ok, nil
}

func (f *fakeStore) FindByEmail(ctx context.Context, email string) (Account, bool, error) {
	if f.err != nil {
		return Account{}, false, f.err
	}
	a, ok := f.byEmail[email]
	return a, ok, nil
}

func activeAgent() Account {
	return Account{
		ID:         "u1",
		Email:      "agent@example.com",
		Name:       "Agent One",
		Role:       scope.RoleAgent,
		Status:     scope.StatusActive,
		OfficeID:   "o1",
		OfficeName: "Downtown",
	}
}

func testResolver(t *testing.T, store AccountStore) (*Resolver, *Codec) {
	t.Helper()
	codec := testCodec(t)
	return NewResolver(codec, store), codec
}

func TestResolve_PrincipalFromCurrentStoreState(t *testing.T) {
	acc := activeAgent()
	store := &fakeStore{byID: map[string]Account{acc.ID: acc}}
	r, codec := testResolver(t, store)

	now := time.Unix(1700000000, 0).UTC()
	r.clock = func() time.Time { return now.Add(time.Minute) }

	tok, err := codec.Issue(now, acc.ID, scope.RoleAgent)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Promote the user after the token was minted; the principal must carry
	// the current role, not the embedded one.
	acc.Role = scope.RoleAdmin
	acc.OfficeID = ""
	store.byID[acc.ID] = acc

	p, err := r.Resolve(context.Background(), "Bearer "+tok)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if p.Role != scope.RoleAdmin || p.OfficeID != "" || p.UserID != "u1" {
		t.Fatalf("principal not built from store state: %+v", p)
	}
}

func TestResolve_RejectsBadHeaderShapes(t *testing.T) {
	acc := activeAgent()
	r, codec := testResolver(t, &fakeStore{byID: map[string]Account{acc.ID: acc}})

	now := time.Unix(1700000000, 0).UTC()
	r.clock = func() time.Time { return now }
	tok, _ := codec.Issue(now, acc.ID, acc.Role)

	for _, h := range []string{"", "Basic abc", tok, "bearer " + tok} {
		if _, err := r.Resolve(context.Background(), h); !errors.Is(err, ErrUnauthenticated) {
			t.Fatalf("header %q: expected ErrUnauthenticated, got %v", h, err)
		}
	}
}

func TestResolve_RejectsExpiredToken(t *testing.T) {
	acc := activeAgent()
	r, codec := testResolver(t, &fakeStore{byID: map[string]Account{acc.ID: acc}})

	now := time.Unix(1700000000, 0).UTC()
	tok, _ := codec.Issue(now, acc.ID, acc.Role)
	r.clock = func() time.Time { return now.Add(25 * time.Hour) }

	if _, err := r.Resolve(context.Background(), "Bearer "+tok); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolve_RejectsDeletedUser(t *testing.T) {
	acc := activeAgent()
	store := &fakeStore{byID: map[string]Account{acc.ID: acc}}
	r, codec := testResolver(t, store)

	now := time.Unix(1700000000, 0).UTC()
	r.clock = func() time.Time { return now }
	tok, _ := codec.Issue(now, acc.ID, acc.Role)

	delete(store.byID, acc.ID)

	if _, err := r.Resolve(context.Background(), "Bearer "+tok); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestResolve_RejectsDeactivatedMidTokenLifetime(t *testing.T) {
	acc := activeAgent()
	store := &fakeStore{byID: map[string]Account{acc.ID: acc}}
	r, codec := testResolver(t, store)

	now := time.Unix(1700000000, 0).UTC()
	r.clock = func() time.Time { return now.Add(time.Minute) }
	tok, _ := codec.Issue(now, acc.ID, acc.Role)

	// Valid while active.
	if _, err := r.Resolve(context.Background(), "Bearer "+tok); err != nil {
		t.Fatalf("resolve while active: %v", err)
	}

	acc.Status = scope.StatusInactive
	store.byID[acc.ID] = acc

	// Same token, next request: rejected.
	if _, err := r.Resolve(context.Background(), "Bearer "+tok); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated after deactivation, got %v", err)
	}
}

func TestResolve_StoreFailureIsNotUnauthenticated(t *testing.T) {
	acc := activeAgent()
	store := &fakeStore{byID: map[string]Account{acc.ID: acc}, err: errors.New("db down")}
	r, codec := testResolver(t, store)

	now := time.Unix(1700000000, 0).UTC()
	r.clock = func() time.Time { return now }
	tok, _ := codec.Issue(now, acc.ID, acc.Role)

	_, err := r.Resolve(context.Background(), "Bearer "+tok)
	if err == nil || errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("store failure must surface as internal error, got %v", err)
	}
}

func TestRequirePrincipal_Middleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	acc := activeAgent()
	r, codec := testResolver(t, &fakeStore{byID: map[string]Account{acc.ID: acc}})

	now := time.Unix(1700000000, 0).UTC()
	r.clock = func() time.Time { return now }
	tok, _ := codec.Issue(now, acc.ID, acc.Role)

	engine := gin.New()
	engine.GET("/x", RequirePrincipal(r), func(c *gin.Context) {
		p, err := scope.PrincipalFrom(c.Request.Context())
		if err != nil {
			c.Status(500)
			return
		}
		c.JSON(200, gin.H{"user_id": p.UserID, "office_id": p.OfficeID})
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	engine.ServeHTTP(w, req)
	if w.Code != 200 {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/x", nil)
	engine.ServeHTTP(w, req)
	if w.Code != 401 {
		t.Fatalf("expected 401 without token, got %d", w.Code)
	}
}
