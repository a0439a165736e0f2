package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/internal/middleware"
	"github.com/raunak23427/mutual-skill-sync/pkg/apperror"
	"github.com/raunak23427/mutual-skill-sync/pkg/response"
)

type fakeProfiles struct {
	byClerk map[string]*entity.Profile
}

func (f *fakeProfiles) FindByClerkID(_ context.Context, clerkID string) (*entity.Profile, error) {
	if p, ok := f.byClerk[clerkID]; ok {
		return p, nil
	}
	return nil, apperror.ErrNotFound
}

func newRouter(t *testing.T) (*gin.Engine, *identity.Verifier, uuid.UUID) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	v := identity.NewVerifier("secret", "")
	activeID := uuid.New()
	profiles := &fakeProfiles{byClerk: map[string]*entity.Profile{
		"active": {ID: activeID, ClerkID: "active", Status: entity.ProfileStatusActive},
		"banned": {ID: uuid.New(), ClerkID: "banned", Status: entity.ProfileStatusBanned},
	}}
	m := middleware.NewAuthMiddleware(v, profiles)

	r := gin.New()
	api := r.Group("/api", m.RequireAuth())
	api.GET("/whoami", func(c *gin.Context) {
		id, _ := response.GetUserID(c)
		c.String(http.StatusOK, id)
	})
	scoped := api.Group("", m.RequireProfile())
	scoped.GET("/me", func(c *gin.Context) {
		id, err := response.GetProfileID(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		c.String(http.StatusOK, id.String())
	})
	api.GET("/admin", m.RequireAdmin(), func(c *gin.Context) {
		c.Status(http.StatusNoContent)
	})

	return r, v, activeID
}

func token(t *testing.T, v *identity.Verifier, id, role string) string {
	t.Helper()
	tok, err := v.Issue(identity.Identity{ID: id, Role: role}, time.Minute)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	return tok
}

func do(r http.Handler, path, bearer string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuth(t *testing.T) {
	r, v, _ := newRouter(t)

	if w := do(r, "/api/whoami", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d", w.Code)
	}
	if w := do(r, "/api/whoami", "junk"); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: got %d", w.Code)
	}

	w := do(r, "/api/whoami", token(t, v, "active", ""))
	if w.Code != http.StatusOK || w.Body.String() != "active" {
		t.Fatalf("valid token: got %d %q", w.Code, w.Body.String())
	}

	w = do(r, "/api/whoami?token="+token(t, v, "active", ""), "")
	if w.Code != http.StatusOK {
		t.Fatalf("query token: got %d", w.Code)
	}
}

func TestRequireProfile(t *testing.T) {
	r, v, activeID := newRouter(t)

	w := do(r, "/api/me", token(t, v, "active", ""))
	if w.Code != http.StatusOK || w.Body.String() != activeID.String() {
		t.Fatalf("active profile: got %d %q", w.Code, w.Body.String())
	}
	if w := do(r, "/api/me", token(t, v, "banned", "")); w.Code != http.StatusForbidden {
		t.Fatalf("banned profile: got %d", w.Code)
	}
	if w := do(r, "/api/me", token(t, v, "unknown", "")); w.Code != http.StatusNotFound {
		t.Fatalf("unsynced profile: got %d", w.Code)
	}
}

func TestRequireAdmin(t *testing.T) {
	r, v, _ := newRouter(t)

	if w := do(r, "/api/admin", token(t, v, "active", "")); w.Code != http.StatusForbidden {
		t.Fatalf("member: got %d", w.Code)
	}
	if w := do(r, "/api/admin", token(t, v, "active", identity.RoleAdmin)); w.Code != http.StatusNoContent {
		t.Fatalf("admin: got %d", w.Code)
	}
}
