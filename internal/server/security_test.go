package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp, err := env.app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
	assert.Equal(t, "cross-origin", resp.Header.Get("Cross-Origin-Resource-Policy"))
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}

func TestHealthChecks(t *testing.T) {
	env := newTestEnv(t)

	status, body := env.do(http.MethodGet, "/health/live", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "up", decode[map[string]any](t, body)["status"])

	// No Redis configured: the portal still serves, uncached.
	status, body = env.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusOK, status)
	ready := decode[struct {
		Status string            `json:"status"`
		Checks map[string]string `json:"checks"`
	}](t, body)
	assert.Equal(t, "degraded", ready.Status)
	assert.Equal(t, "healthy", ready.Checks["database"])
	assert.Equal(t, "unavailable", ready.Checks["redis"])
}

func TestReadinessFailsWithoutDatabase(t *testing.T) {
	env := newTestEnv(t)
	sqlDB, err := env.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	status, body := env.do(http.MethodGet, "/health/ready", "", nil)
	assert.Equal(t, fiber.StatusServiceUnavailable, status)
	assert.Equal(t, "unhealthy", decode[map[string]any](t, body)["status"])
}

func TestAuthRequiredRoutes(t *testing.T) {
	env := newTestEnv(t)

	for _, path := range []string{"/api/users/me", "/api/news/mine", "/api/notifications", "/api/admin/news/pending"} {
		status, _ := env.do(http.MethodGet, path, "", nil)
		assert.Equal(t, fiber.StatusUnauthorized, status, path)
	}
	status, _ := env.do(http.MethodGet, "/api/users/me", "not-a-token", nil)
	assert.Equal(t, fiber.StatusUnauthorized, status)
}
