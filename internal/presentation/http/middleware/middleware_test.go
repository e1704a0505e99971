package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/ledger-api/internal/config"
	"github.com/sangkips/ledger-api/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func withTenant(id uuid.UUID) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("tenant_id", id)
		c.Next()
	}
}

func TestRateLimiterConfigFrom(t *testing.T) {
	cfg := RateLimiterConfigFrom(config.RateLimitConfig{Requests: 120, Duration: 60})
	assert.Equal(t, 2.0, cfg.RequestsPerSecond)
	assert.Equal(t, 120, cfg.BurstSize)

	fallback := RateLimiterConfigFrom(config.RateLimitConfig{})
	assert.Equal(t, 20, fallback.BurstSize)
}

func TestTenantRateLimiter_PerTenantBuckets(t *testing.T) {
	rl := NewTenantRateLimiter(RateLimiterConfig{RequestsPerSecond: 0.001, BurstSize: 2})
	t.Cleanup(rl.Stop)

	busy, quiet := uuid.New(), uuid.New()
	hit := func(tenantID uuid.UUID) int {
		r := gin.New()
		r.Use(withTenant(tenantID), rl.Middleware())
		r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		return w.Code
	}

	assert.Equal(t, http.StatusOK, hit(busy))
	assert.Equal(t, http.StatusOK, hit(busy))
	assert.Equal(t, http.StatusTooManyRequests, hit(busy))
	assert.Equal(t, http.StatusOK, hit(quiet), "other tenants keep their own budget")

	rl.cleanup(time.Now().Add(time.Minute))
	assert.Equal(t, http.StatusOK, hit(busy), "evicted entries start with a full bucket")
}

func TestRequireRole(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_roles", []string{c.GetHeader("X-Role")})
		c.Next()
	})
	r.GET("/", RequireRole("admin", "accountant"), func(c *gin.Context) { c.Status(http.StatusOK) })

	for role, want := range map[string]int{"admin": 200, "accountant": 200, "viewer": 403} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Role", role)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, want, w.Code, role)
	}
}

func TestLoggerMiddleware_RequestScopedLogger(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)

	r := gin.New()
	r.Use(LoggerMiddleware(zap.New(core)))
	r.GET("/boom", func(c *gin.Context) {
		logger.FromContext(c.Request.Context()).Info("inside handler")
		c.Status(http.StatusBadGateway)
	})

	req := httptest.NewRequest(http.MethodGet, "/boom?x=1", nil)
	req.Header.Set("X-Request-ID", "req-123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-123", w.Header().Get("X-Request-ID"))
	require.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		assert.Equal(t, "req-123", entry.ContextMap()["request_id"])
	}
	access := logs.All()[1]
	assert.Equal(t, zap.ErrorLevel, access.Level)
	assert.Equal(t, "/boom?x=1", access.ContextMap()["path"])
}

func TestCORSMiddleware_AllowsIdempotencyKey(t *testing.T) {
	r := gin.New()
	r.Use(CORSMiddleware(&config.CORSConfig{AllowedOrigins: []string{"https://books.example.com"}}))
	r.POST("/api/v1/imports/apply", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/imports/apply", nil)
	req.Header.Set("Origin", "https://books.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	req.Header.Set("Access-Control-Request-Headers", "Idempotency-Key")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://books.example.com", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, strings.ToLower(w.Header().Get("Access-Control-Allow-Headers")), "idempotency-key")
}
