package middleware

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"schoollibrary/internal/logger"
	"schoollibrary/internal/middleware/auth"
	"schoollibrary/internal/microservices/http-api/models"
	"schoollibrary/internal/microservices/http-api/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubSessions map[string]*auth.Identity

func (s stubSessions) ValidateSession(_ context.Context, token string) (*auth.Identity, error) {
	if token == "store-down" {
		return nil, errors.New("redis: connection refused")
	}
	if identity, ok := s[token]; ok {
		return identity, nil
	}
	return nil, service.ErrInvalidSession
}

var sessions = stubSessions{
	"student-token":   {UserID: "s1", Role: models.RoleStudent},
	"librarian-token": {UserID: "l1", Role: models.RoleLibrarian},
	"principal-token": {UserID: "p1", Role: models.RolePrincipal},
	"admin-token":     {UserID: "a1", Role: models.RoleAdmin},
}

func newGuardedRouter() (*gin.Engine, *int) {
	calls := 0
	r := gin.New()
	r.Use(Session(sessions, slog.New(slog.NewTextHandler(io.Discard, nil))))

	r.GET("/books", func(c *gin.Context) {
		calls++
		c.Status(http.StatusOK)
	})
	dashboard := r.Group("/dashboard", RequireResource(auth.ResourceDashboard))
	dashboard.GET("", func(c *gin.Context) {
		calls++
		c.JSON(http.StatusOK, gin.H{
			"id":     CurrentIdentity(c).UserID,
			"ctx_id": auth.IdentityFrom(c.Request.Context()).UserID,
		})
	})
	return r, &calls
}

func TestDashboardGuard(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(*http.Request)
		wantStatus int
	}{
		{"anonymous", func(*http.Request) {}, http.StatusUnauthorized},
		{"student", bearer("student-token"), http.StatusUnauthorized},
		{"invalid token", bearer("forged"), http.StatusUnauthorized},
		{"session store down", bearer("store-down"), http.StatusUnauthorized},
		{"librarian bearer", bearer("librarian-token"), http.StatusOK},
		{"principal cookie", cookie("principal-token"), http.StatusOK},
		{"admin cookie", cookie("admin-token"), http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, calls := newGuardedRouter()
			req := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
			tt.setup(req)
			w := httptest.NewRecorder()

			r.ServeHTTP(w, req)

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusUnauthorized {
				assert.Equal(t, 0, *calls, "handler must not run")
				assert.JSONEq(t, `{"error":"unauthorized"}`, w.Body.String())
			} else {
				assert.Equal(t, 1, *calls)
				assert.NotContains(t, w.Body.String(), `"id":""`)
			}
		})
	}
}

func TestPublicRoutesStayOpen(t *testing.T) {
	r, calls := newGuardedRouter()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/books", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, *calls)
}

func TestTokenFromRequest_PrefersCookie(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Bearer header-token")
	c.Request.AddCookie(&http.Cookie{Name: SessionCookie, Value: "cookie-token"})

	assert.Equal(t, "cookie-token", TokenFromRequest(c))

	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, TokenFromRequest(c))
}

func TestRateLimit(t *testing.T) {
	limiter := NewIPRateLimiter(1, 2)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	limiter.now = func() time.Time { return base }

	r := gin.New()
	r.POST("/auth/sign-in", RateLimit(limiter), func(c *gin.Context) { c.Status(http.StatusOK) })

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	assert.Equal(t, []int{200, 200, 429}, codes)

	// another client has its own bucket
	req := httptest.NewRequest(http.MethodPost, "/auth/sign-in", nil)
	req.RemoteAddr = "10.0.0.2:1234"
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// tokens refill over time
	limiter.now = func() time.Time { return base.Add(2 * time.Second) }
	assert.True(t, limiter.Allow("10.0.0.1"))
}

func TestRateLimiter_DropsIdleVisitors(t *testing.T) {
	limiter := NewIPRateLimiter(1, 1)
	base := time.Now()
	limiter.now = func() time.Time { return base }
	limiter.Allow("10.0.0.1")

	limiter.now = func() time.Time { return base.Add(limiterIdleTTL + time.Second) }
	limiter.Allow("10.0.0.2")

	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	assert.NotContains(t, limiter.visitors, "10.0.0.1")
	assert.Contains(t, limiter.visitors, "10.0.0.2")
}

func TestRequestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := logger.NewWithWriter(&buf, "debug", "json")

	r := gin.New()
	r.Use(RequestLogger(log))
	r.GET("/books/:id", func(c *gin.Context) {
		assert.NotEmpty(t, logger.RequestID(c.Request.Context()))
		c.Status(http.StatusNotFound)
	})

	req := httptest.NewRequest(http.MethodGet, "/books/42", nil)
	req.Header.Set(RequestIDHeader, "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "req-123", w.Header().Get(RequestIDHeader))
	out := buf.String()
	assert.Contains(t, out, `"msg":"http_request"`)
	assert.Contains(t, out, `"path":"/books/:id"`)
	assert.Contains(t, out, `"request_id":"req-123"`)
	assert.Contains(t, out, `"level":"WARN"`)
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) }
}

func cookie(token string) func(*http.Request) {
	return func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) }
}
