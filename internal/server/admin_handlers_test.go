package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdminRoutesRequireAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, reader := env.user("reader", models.RoleUser)

	for _, path := range []string{"/api/admin/feature-flags", "/api/admin/users", "/api/admin/properties/pending"} {
		status, _ := env.do(http.MethodGet, path, reader, nil)
		assert.Equal(t, fiber.StatusForbidden, status, path)
	}
}

func TestSetUserRole(t *testing.T) {
	env := newTestEnv(t)
	admin, adminToken := env.user("editor", models.RoleAdmin)
	reader, _ := env.user("reader", models.RoleUser)

	status, body := env.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", reader.ID), adminToken, map[string]string{"role": "reporter"})
	require.Equal(t, fiber.StatusOK, status, string(body))
	assert.Equal(t, models.RoleReporter, decode[models.User](t, body).Role)

	status, _ = env.do(http.MethodPut, fmt.Sprintf("/api/admin/users/%d/role", admin.ID), adminToken, map[string]string{"role": "USER"})
	assert.Equal(t, fiber.StatusBadRequest, status)

	status, body = env.do(http.MethodGet, "/api/admin/users?role=REPORTER", adminToken, nil)
	require.Equal(t, fiber.StatusOK, status)
	users := decode[[]models.User](t, body)
	require.Len(t, users, 1)
	assert.Equal(t, "reader", users[0].Username)

	status, _ = env.do(http.MethodGet, "/api/admin/users?role=OWNER", adminToken, nil)
	assert.Equal(t, fiber.StatusBadRequest, status)
}

func TestFeatureFlags(t *testing.T) {
	env := newTestEnv(t)
	_, admin := env.user("editor", models.RoleAdmin)

	status, body := env.do(http.MethodPut, "/api/admin/feature-flags/search_cache", admin, map[string]string{"value": "on"})
	require.Equal(t, fiber.StatusOK, status, string(body))

	status, body = env.do(http.MethodGet, "/api/admin/feature-flags", admin, nil)
	require.Equal(t, fiber.StatusOK, status)
	flags := decode[struct {
		Flags    map[string]string `json:"flags"`
		Resolved map[string]bool   `json:"resolved"`
	}](t, body)
	assert.Equal(t, "on", flags.Flags["search_cache"])
	assert.True(t, flags.Resolved["search_cache"])

	status, _ = env.do(http.MethodPut, "/api/admin/feature-flags/search_cache", admin, map[string]string{"value": "sometimes"})
	assert.Equal(t, fiber.StatusBadRequest, status)
}
