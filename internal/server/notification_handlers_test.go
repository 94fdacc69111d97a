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

func TestNotificationInbox(t *testing.T) {
	env := newTestEnv(t)
	reader, token := env.user("reader", models.RoleUser)
	_, other := env.user("other", models.RoleUser)

	var ids []uint
	for _, msg := range []string{"Your news was approved", "Your job was approved"} {
		n := models.NotificationMessage{UserID: reader.ID, Title: "Approved", Message: msg}.Record()
		require.NoError(t, env.db.Create(n).Error)
		ids = append(ids, n.ID)
	}

	status, body := env.do(http.MethodGet, "/api/notifications/unread-count", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, decode[map[string]int64](t, body)["unread"])

	status, _ = env.do(http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", ids[0]), other, nil)
	assert.Equal(t, fiber.StatusNotFound, status)

	status, _ = env.do(http.MethodPost, fmt.Sprintf("/api/notifications/%d/read", ids[0]), token, nil)
	assert.Equal(t, fiber.StatusNoContent, status)

	status, body = env.do(http.MethodGet, "/api/notifications?unread=true", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, decode[listPage](t, body).TotalElements)

	status, body = env.do(http.MethodPost, "/api/notifications/read-all", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 1, decode[map[string]int64](t, body)["updated"])

	status, body = env.do(http.MethodGet, "/api/notifications", token, nil)
	require.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 2, decode[listPage](t, body).TotalElements)
}
