package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"atlas/config"
	"atlas/internal/api/handler"
	"atlas/internal/authz"
	"atlas/internal/service"
	"atlas/pkg/jwt"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ── Mocks ──

type mockRevocation struct {
	revoked map[string]bool
}

func (m *mockRevocation) IsRevoked(_ context.Context, jti string) bool {
	return m.revoked[jti]
}

type mockLoader struct {
	principal authz.Principal
	err       error
}

func (m *mockLoader) LoadPrincipal(_ context.Context, _ string) (authz.Principal, error) {
	return m.principal, m.err
}

type mockLimiter struct {
	allowed bool
	err     error
	calls   int
}

func (m *mockLimiter) CheckRateLimit(_ context.Context, _ string, _ int, _ time.Duration) (bool, error) {
	m.calls++
	return m.allowed, m.err
}

func newTestJWT() *jwt.Manager {
	return jwt.NewManager(&config.AuthConfig{
		JWTSecret:       "test-secret-key-for-middleware",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: time.Hour,
	})
}

func serve(r *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	r.ServeHTTP(w, req)
	return w
}

// ── JWTAuth ──

func TestJWTAuth(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("user-1", "manager")
	refresh, _ := mgr.GenerateRefreshToken("user-1", "manager")
	revokedToken, _ := mgr.GenerateAccessToken("user-2", "manager")
	revokedClaims, _ := mgr.ParseToken(revokedToken)

	checker := &mockRevocation{revoked: map[string]bool{revokedClaims.ID: true}}

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, checker), func(c *gin.Context) {
		c.String(http.StatusOK, c.GetString(handler.CtxUserID))
	})

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"ValidAccess", access, 200},
		{"MissingHeader", "", 401},
		{"RefreshTokenRejected", refresh, 401},
		{"Revoked", revokedToken, 401},
		{"Garbage", "not-a-token", 401},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(r, "GET", "/me", tt.token)
			if w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tt.wantStatus, w.Code)
			}
			if tt.wantStatus == 200 && w.Body.String() != "user-1" {
				t.Errorf("期望 user_id=user-1，实际=%s", w.Body.String())
			}
		})
	}
}

func TestJWTAuth_NilChecker(t *testing.T) {
	mgr := newTestJWT()
	access, _ := mgr.GenerateAccessToken("user-1", "manager")

	r := gin.New()
	r.GET("/me", JWTAuth(mgr, nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "GET", "/me", access); w.Code != http.StatusOK {
		t.Errorf("黑名单不可用时应放行，实际=%d", w.Code)
	}
}

// ── Principal ──

func TestPrincipal(t *testing.T) {
	region := "region-1"
	tests := []struct {
		name       string
		loader     *mockLoader
		wantStatus int
	}{
		{"Active", &mockLoader{principal: authz.NewPrincipal("user-1", authz.RoleExecutant, &region, true, nil, nil)}, 200},
		{"Inactive", &mockLoader{principal: authz.NewPrincipal("user-1", authz.RoleExecutant, &region, false, nil, nil)}, 401},
		{"UserDeleted", &mockLoader{err: service.ErrUserNotFound}, 401},
		{"LoadFailed", &mockLoader{err: errors.New("db down")}, 500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.GET("/x", func(c *gin.Context) {
				c.Set(handler.CtxUserID, "user-1")
				c.Next()
			}, Principal(tt.loader), func(c *gin.Context) {
				p, ok := handler.MustGetPrincipal(c)
				if !ok || p.ID() != "user-1" {
					t.Errorf("期望已注入授权主体")
				}
				c.Status(http.StatusOK)
			})

			if w := serve(r, "GET", "/x", ""); w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tt.wantStatus, w.Code)
			}
		})
	}
}

// ── RateLimit ──

func TestRateLimit(t *testing.T) {
	tests := []struct {
		name       string
		limiter    *mockLimiter
		wantStatus int
	}{
		{"Allowed", &mockLimiter{allowed: true}, 200},
		{"Exceeded", &mockLimiter{allowed: false}, 429},
		{"RedisErrorPassThrough", &mockLimiter{err: errors.New("redis down")}, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := gin.New()
			r.POST("/login", RateLimit(tt.limiter, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

			if w := serve(r, "POST", "/login", ""); w.Code != tt.wantStatus {
				t.Errorf("期望状态码 %d，实际=%d", tt.wantStatus, w.Code)
			}
			if tt.limiter.calls != 1 {
				t.Errorf("期望调用 1 次限流器，实际=%d", tt.limiter.calls)
			}
		})
	}
}

func TestRateLimit_NilLimiter(t *testing.T) {
	r := gin.New()
	r.POST("/login", RateLimit(nil, 5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	if w := serve(r, "POST", "/login", ""); w.Code != http.StatusOK {
		t.Errorf("未配置限流器时应放行，实际=%d", w.Code)
	}
}
