package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/abhishek622/interviewflow/internal/auth"
	"github.com/abhishek622/interviewflow/internal/config"
	"github.com/abhishek622/interviewflow/pkg/model"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func testConfig() *config.Config {
	return &config.Config{
		Env:         "test",
		Port:        8080,
		StoreDriver: config.DriverMemory,
		Notify:      config.NotifyConfig{Channel: "interview_events"},
		Limiter:     config.RateLimiterConfig{Enabled: true, RPS: 1, Burst: 3},
		CORS:        config.CORSConfig{TrustedOrigins: []string{"http://localhost:5173"}},
		JWT:         config.JWTConfig{Secret: testSecret, Issuer: "interviewflow"},
		Scheduling: config.SchedulingConfig{
			Timezone:     "UTC",
			Open:         "09:00",
			Close:        "18:00",
			Workdays:     []string{"mon", "tue", "wed", "thu", "fri"},
			MinDuration:  15,
			MaxDuration:  240,
			StepMinutes:  30,
			MaxRangeDays: 31,
		},
	}
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)
	app, err := newApplication(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(app.close)
	return app.routes()
}

func get(h http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndMetrics(t *testing.T) {
	h := newTestServer(t)

	w := get(h, http.MethodGet, "/healthz", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"store":"memory"`)

	w = get(h, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "interviewflow_http_requests_total"))
}

func TestAuthMiddleware(t *testing.T) {
	h := newTestServer(t)

	w := get(h, http.MethodPost, "/api/v1/interviews/search", "")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = get(h, http.MethodPost, "/api/v1/interviews/search", "not-a-jwt")
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, err := auth.GenerateToken(testSecret, "interviewflow",
		model.ActorContext{UserID: uuid.New(), Roles: []model.UserRole{model.RoleAdmin}}, time.Minute)
	require.NoError(t, err)
	w = get(h, http.MethodPost, "/api/v1/interviews/search", token)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimitMiddleware(t *testing.T) {
	h := newTestServer(t)

	codes := make([]int, 0, 4)
	for i := 0; i < 4; i++ {
		codes = append(codes, get(h, http.MethodPost, "/api/v1/interviews/search", "").Code)
	}
	assert.Equal(t, []int{401, 401, 401, 429}, codes)
}

func TestCORSOnlyTrustedOrigins(t *testing.T) {
	h := newTestServer(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/v1/interviews", nil)
	req.Header.Set("Origin", "http://localhost:5173")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/api/v1/interviews", nil)
	req.Header.Set("Origin", "https://evil.example")
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
