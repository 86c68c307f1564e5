package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"resumesentry/internal/auth"
)

func newAuthService(t *testing.T) *auth.AuthService {
	t.Helper()
	svc, err := auth.NewAuthService("test-secret", time.Hour, time.Minute)
	if err != nil {
		t.Fatalf("NewAuthService: %v", err)
	}
	return svc
}

func runAuthMiddleware(t *testing.T, svc *auth.AuthService, header string) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = req

	AuthMiddleware(svc)(c)
	return c, w
}

func TestAuthMiddleware_SetsIdentity(t *testing.T) {
	svc := newAuthService(t)
	token, err := svc.GenerateToken(42, auth.RoleFreelancer)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	c, w := runAuthMiddleware(t, svc, "Bearer "+token)

	if w.Code == http.StatusUnauthorized {
		t.Fatalf("request was rejected: %s", w.Body.String())
	}
	if id, ok := c.Get("userID"); !ok || id.(uint) != 42 {
		t.Fatalf("userID = %v", id)
	}
	if role, ok := c.Get("userRole"); !ok || role.(string) != auth.RoleFreelancer {
		t.Fatalf("userRole = %v", role)
	}
}

func TestAuthMiddleware_RejectsMissingHeader(t *testing.T) {
	svc := newAuthService(t)

	_, w := runAuthMiddleware(t, svc, "")

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", w.Code)
	}
}

func TestAuthMiddleware_RejectsMalformedHeader(t *testing.T) {
	svc := newAuthService(t)
	token, err := svc.GenerateToken(1, auth.RoleAdmin)
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	for _, header := range []string{token, "Token " + token, "Bearer"} {
		_, w := runAuthMiddleware(t, svc, header)
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("header %q: expected 401 got %d", header, w.Code)
		}
	}
}

func TestRequireRole(t *testing.T) {
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/admin-only", nil)
	c.Set("userRole", auth.RoleFreelancer)

	RequireRole(auth.RoleAdmin)(c)

	if w.Code != http.StatusForbidden {
		t.Fatalf("expected 403 got %d", w.Code)
	}
}
