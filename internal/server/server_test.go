package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/raunak23427/mutual-skill-sync/internal/config"
	"github.com/raunak23427/mutual-skill-sync/internal/entity"
	"github.com/raunak23427/mutual-skill-sync/internal/identity"
	"github.com/raunak23427/mutual-skill-sync/internal/server"
	"github.com/raunak23427/mutual-skill-sync/internal/testutil"
)

const testSecret = "test-secret"

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	h, _ := newTestServerWithDB(t)
	return h
}

func newTestServerWithDB(t *testing.T) (http.Handler, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		AppEnv:             "test",
		Port:               "0",
		AllowedOrigins:     "http://localhost:5173",
		StorageProvider:    "none",
		IdentityJWTSecret:  testSecret,
		SwapRequestTTL:     time.Hour,
		SwapExpiryInterval: time.Minute,
	}
	db := testutil.OpenTestDB(t)
	srv, err := server.NewServer(context.Background(), cfg, db, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return srv.Handler(), db
}

func token(t *testing.T, id, role string) string {
	t.Helper()
	tok, err := identity.NewVerifier(testSecret, "").Issue(identity.Identity{
		ID:       id,
		Email:    id + "@example.com",
		FullName: "User " + id,
		Role:     role,
	}, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return tok
}

func do(h http.Handler, method, path, tok, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthz(t *testing.T) {
	h := newTestServer(t)

	w := do(h, http.MethodGet, "/healthz", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"database":"ok"`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestServer(t)

	do(h, http.MethodGet, "/healthz", "", "")
	w := do(h, http.MethodGet, "/metrics", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRoutesRequireToken(t *testing.T) {
	h := newTestServer(t)

	for _, path := range []string{"/api/profile/me", "/api/swaps/incoming", "/api/admin/users"} {
		if w := do(h, http.MethodGet, path, "", ""); w.Code != http.StatusUnauthorized {
			t.Errorf("GET %s = %d, want 401", path, w.Code)
		}
	}
}

func TestProfileRoutesNeedSync(t *testing.T) {
	h := newTestServer(t)
	tok := token(t, "user_1", "")

	if w := do(h, http.MethodGet, "/api/profile/me", tok, ""); w.Code != http.StatusNotFound {
		t.Fatalf("before sync = %d, want 404", w.Code)
	}

	if w := do(h, http.MethodPost, "/api/session/sync", tok, ""); w.Code != http.StatusOK {
		t.Fatalf("sync = %d, body %s", w.Code, w.Body.String())
	}

	w := do(h, http.MethodPost, "/api/profile/skills/offered", tok, `{"skill_name":"Go"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("add offered = %d, body %s", w.Code, w.Body.String())
	}

	w = do(h, http.MethodGet, "/api/profile/me", tok, "")
	if w.Code != http.StatusOK {
		t.Fatalf("profile/me = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "User user_1") {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestSearchTokenRefusedForBannedUser(t *testing.T) {
	h, db := newTestServerWithDB(t)
	tok := token(t, "user_2", "")

	if w := do(h, http.MethodGet, "/api/search/token", tok, ""); w.Code != http.StatusNotFound {
		t.Fatalf("before sync = %d, want 404", w.Code)
	}
	if w := do(h, http.MethodPost, "/api/session/sync", tok, ""); w.Code != http.StatusOK {
		t.Fatalf("sync = %d, body %s", w.Code, w.Body.String())
	}

	// no search host configured
	if w := do(h, http.MethodGet, "/api/search/token", tok, ""); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("active user = %d, want 503", w.Code)
	}

	if err := db.Model(&entity.Profile{}).Where("clerk_id = ?", "user_2").
		Update("status", entity.ProfileStatusBanned).Error; err != nil {
		t.Fatalf("ban: %v", err)
	}
	if w := do(h, http.MethodGet, "/api/search/token", tok, ""); w.Code != http.StatusForbidden {
		t.Fatalf("banned user = %d, want 403", w.Code)
	}
}

func TestAdminGate(t *testing.T) {
	h := newTestServer(t)

	if w := do(h, http.MethodGet, "/api/admin/stats", token(t, "member", ""), ""); w.Code != http.StatusForbidden {
		t.Errorf("member = %d, want 403", w.Code)
	}

	w := do(h, http.MethodGet, "/api/admin/stats", token(t, "boss", identity.RoleAdmin), "")
	if w.Code != http.StatusOK {
		t.Fatalf("admin = %d, body %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total_users":0`) {
		t.Errorf("body = %s", w.Body.String())
	}
}

func TestAdminReportDownload(t *testing.T) {
	h := newTestServer(t)
	admin := token(t, "boss", identity.RoleAdmin)

	w := do(h, http.MethodGet, "/api/admin/reports/users", admin, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}
	if got := w.Header().Get("Content-Disposition"); !strings.Contains(got, "users_report.csv") {
		t.Errorf("Content-Disposition = %q", got)
	}

	if w := do(h, http.MethodGet, "/api/admin/reports/skills", admin, ""); w.Code != http.StatusBadRequest {
		t.Errorf("unknown type = %d, want 400", w.Code)
	}
}
