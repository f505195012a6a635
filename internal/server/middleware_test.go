package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"gymhub/internal/auth"
	"gymhub/internal/config"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serve(router *gin.Engine, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestMetricsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(MetricsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", "").Code)
	assert.Equal(t, http.StatusNotFound, serve(router, http.MethodGet, "/nope", "").Code)
}

func TestRequestLoggingMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(RequestLoggingMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/boom", func(c *gin.Context) {
		c.Status(http.StatusInternalServerError)
	})

	assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test?x=1", "").Code)
	assert.Equal(t, http.StatusInternalServerError, serve(router, http.MethodGet, "/boom", "").Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	router := gin.New()
	router.Use(RateLimitMiddleware(ctx, 0.001, 3))
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, serve(router, http.MethodGet, "/test", "").Code)
	}

	w := serve(router, http.MethodGet, "/test", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
	assert.JSONEq(t, `{"status":"error","message":"Too many requests, please slow down"}`, w.Body.String())
}

func TestRateLimiter_SweepForgetsIdleVisitors(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rl := NewRateLimiter(ctx, 1, 1, time.Minute)
	now := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("10.0.0.1")
	now = now.Add(30 * time.Second)
	rl.Allow("10.0.0.2")
	now = now.Add(45 * time.Second)

	rl.sweep()
	assert.Equal(t, 1, rl.size())
}

func TestCorsMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	w := serve(router, http.MethodGet, "/test", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Headers"), "Idempotency-Key")
}

func TestCorsMiddleware_OPTIONS(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(corsMiddleware())
	router.GET("/test", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	assert.Equal(t, http.StatusNoContent, serve(router, http.MethodOptions, "/test", "").Code)
}

func TestRecovery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(Recovery())
	router.GET("/panic", func(c *gin.Context) {
		panic("nil map write")
	})

	w := serve(router, http.MethodGet, "/panic", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"status":"error","message":"Something went wrong"}`, w.Body.String())
}

func TestHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/health", Health(map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
	}))
	router.GET("/health-down", Health(map[string]HealthCheck{
		"database": func(ctx context.Context) error { return nil },
		"redis":    func(ctx context.Context) error { return errors.New("connection refused") },
	}))

	w := serve(router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok","checks":{"database":"up"}}`, w.Body.String())

	w = serve(router, http.MethodGet, "/health-down", "")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.JSONEq(t, `{"status":"degraded","checks":{"database":"up","redis":"down"}}`, w.Body.String())
}

func TestRegisterValidationUsesJSONNames(t *testing.T) {
	gin.SetMode(gin.TestMode)
	RegisterValidation()

	type form struct {
		StartDate string `json:"startDate" binding:"required"`
	}

	router := gin.New()
	router.POST("/form", func(c *gin.Context) {
		var f form
		err := c.ShouldBindJSON(&f)
		require.Error(t, err)
		c.String(http.StatusBadRequest, err.Error())
	})

	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), "form.startDate")
}

func testServer(t *testing.T) *Server {
	t.Helper()
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	cfg := &config.Config{Port: "0", JWTSecret: "test-secret", RateLimitRPS: 1000, RateLimitBurst: 1000}
	return New(ctx, cfg, Handlers{}, nil)
}

func token(t *testing.T, role string) string {
	t.Helper()
	tok, err := auth.GenerateToken(1, role+"@example.com", role, "test-secret")
	require.NoError(t, err)
	return tok
}

// Protected routes are rejected by auth and role middleware before any handler
// runs, so an empty handler set is enough to exercise the guards.
func TestRoutesGuards(t *testing.T) {
	srv := testServer(t)
	router := srv.router

	tests := []struct {
		name   string
		method string
		path   string
		role   string
		want   int
	}{
		{"me without token", http.MethodGet, "/api/auth/me", "", http.StatusUnauthorized},
		{"bookings without token", http.MethodGet, "/api/bookings", "", http.StatusUnauthorized},
		{"enroll without token", http.MethodPost, "/api/classes/1/enroll", "", http.StatusUnauthorized},
		{"user creating gym", http.MethodPost, "/api/gyms", auth.RoleUser, http.StatusForbidden},
		{"user updating slot", http.MethodPatch, "/api/slots/1", auth.RoleUser, http.StatusForbidden},
		{"user deleting class", http.MethodDelete, "/api/classes/1", auth.RoleUser, http.StatusForbidden},
		{"user listing gym bookings", http.MethodGet, "/api/bookings/gym/1", auth.RoleUser, http.StatusForbidden},
		{"owner reading admin users", http.MethodGet, "/api/admin/users", auth.RoleOwner, http.StatusForbidden},
		{"owner reading analytics", http.MethodGet, "/api/admin/analytics/bookings", auth.RoleOwner, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := ""
			if tt.role != "" {
				tok = token(t, tt.role)
			}
			assert.Equal(t, tt.want, serve(router, tt.method, tt.path, tok).Code)
		})
	}
}

func TestRoutesRegistered(t *testing.T) {
	srv := testServer(t)

	registered := map[string]bool{}
	for _, r := range srv.router.Routes() {
		registered[r.Method+" "+r.Path] = true
	}

	for _, route := range []string{
		"POST /api/auth/register",
		"PATCH /api/auth/change-password",
		"GET /api/gyms/search",
		"GET /api/slots/available/:gymId",
		"POST /api/bookings/:slotId",
		"POST /api/bookings/create-payment-intent/:slotId",
		"POST /api/bookings/confirm-payment/:bookingId",
		"PATCH /api/bookings/cancel/:id",
		"DELETE /api/classes/:id/enroll",
		"GET /health",
		"GET /metrics",
		"GET /swagger/*any",
	} {
		assert.True(t, registered[route], route)
	}
}

func TestHealthRoute(t *testing.T) {
	srv := testServer(t)

	w := serve(srv.router, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
