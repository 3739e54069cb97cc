package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Dosada05/pickleball-tournament/models"
)

const testSecret = "test-secret"

func protected() http.Handler {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return Authenticate(testSecret)(RequireRole(models.RoleAdmin)(ok))
}

func TestAuthenticateAndRequireRole(t *testing.T) {
	adminToken, err := IssueToken(testSecret, "admin", models.RoleAdmin, time.Now())
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	userToken, _ := IssueToken(testSecret, "viewer", models.RoleUser, time.Now())
	expired, _ := IssueToken(testSecret, "admin", models.RoleAdmin, time.Now().Add(-48*time.Hour))
	foreign, _ := IssueToken("other-secret", "admin", models.RoleAdmin, time.Now())

	tests := []struct {
		name   string
		header string
		want   int
	}{
		{"admin token", "Bearer " + adminToken, http.StatusNoContent},
		{"user token", "Bearer " + userToken, http.StatusForbidden},
		{"no header", "", http.StatusUnauthorized},
		{"not bearer", "Basic abc", http.StatusUnauthorized},
		{"expired", "Bearer " + expired, http.StatusUnauthorized},
		{"wrong secret", "Bearer " + foreign, http.StatusUnauthorized},
		{"garbage", "Bearer not.a.token", http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/teams", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()
			protected().ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}

func TestRequireRoleWithoutAuthenticate(t *testing.T) {
	h := RequireRole(models.RoleAdmin)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401 without claims, got %d", rec.Code)
	}
}

type fixedRole models.Role

func (r fixedRole) Role() models.Role { return models.Role(r) }

func TestRequireActiveRole(t *testing.T) {
	ok := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	tests := []struct {
		name   string
		stored models.Role
		want   int
	}{
		{"admin session", models.RoleAdmin, http.StatusNoContent},
		{"logged out", models.RoleUser, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			RequireActiveRole(fixedRole(tt.stored), models.RoleAdmin)(ok).
				ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/teams", nil))
			if rec.Code != tt.want {
				t.Errorf("expected %d, got %d", tt.want, rec.Code)
			}
		})
	}
}
