package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return NewLimiter(rdb, "production"), mr
}

func hit(t *testing.T, app *fiber.App, method, path string) *http.Response {
	t.Helper()
	resp, err := app.Test(httptest.NewRequest(method, path, nil))
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestNewLimiterDisabledOutsideDeployedEnvs(t *testing.T) {
	for _, env := range []string{"", "test", "development", "stress"} {
		assert.False(t, NewLimiter(nil, env).Enabled(), env)
	}
	assert.True(t, NewLimiter(nil, "production").Enabled())
	assert.True(t, NewLimiter(nil, "staging").Enabled())
}

func TestLimiterDisabledBypassesWithoutStore(t *testing.T) {
	l := NewLimiter(nil, "test")
	allowed, _, err := l.Allow(context.Background(), SignupQuota, "rl:signup:ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)

	app := fiber.New()
	app.Post("/signup", l.Handle(Quota{Name: "signup", Max: 0, Window: time.Minute}), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})
	assert.Equal(t, fiber.StatusCreated, hit(t, app, http.MethodPost, "/signup").StatusCode)
}

func TestLimiterFailsOpenWithoutStore(t *testing.T) {
	l := NewLimiter(nil, "production")
	_, _, err := l.Allow(context.Background(), LoginQuota, "rl:login:ip:1")
	assert.ErrorIs(t, err, errNoRateStore)

	app := fiber.New()
	app.Post("/login", l.Handle(LoginQuota), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})
	assert.Equal(t, fiber.StatusOK, hit(t, app, http.MethodPost, "/login").StatusCode)
}

func TestLimiterRejectsWithRetryAfter(t *testing.T) {
	l, mr := newTestLimiter(t)
	quota := Quota{Name: "inquiry", Max: 2, Window: time.Minute}

	app := fiber.New()
	app.Post("/api/properties/1/inquiries", l.Handle(quota), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	statuses := make([]int, 0, 3)
	var last *http.Response
	for i := 0; i < 3; i++ {
		last = hit(t, app, http.MethodPost, "/api/properties/1/inquiries")
		statuses = append(statuses, last.StatusCode)
	}
	assert.Equal(t, []int{http.StatusCreated, http.StatusCreated, http.StatusTooManyRequests}, statuses)
	assert.Equal(t, "60", last.Header.Get(fiber.HeaderRetryAfter))

	var body models.ErrorResponse
	require.NoError(t, json.NewDecoder(last.Body).Decode(&body))
	assert.Equal(t, models.CodeRateLimited, body.Code)

	keys := mr.Keys()
	require.Len(t, keys, 1)
	assert.Contains(t, keys[0], "rl:inquiry:ip:")
	assert.Greater(t, mr.TTL(keys[0]), time.Duration(0))
}

func TestLimiterCountsPerKindQuotasSeparately(t *testing.T) {
	l, mr := newTestLimiter(t)
	quota := Quota{Name: "search", Max: 1, Window: time.Minute, PerKind: true}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	app := fiber.New()
	app.Get("/news/search", TagContentKind(models.KindNews), l.Handle(quota), ok)
	app.Get("/jobs/search", TagContentKind(models.KindJob), l.Handle(quota), ok)

	assert.Equal(t, fiber.StatusOK, hit(t, app, http.MethodGet, "/news/search").StatusCode)
	assert.Equal(t, fiber.StatusOK, hit(t, app, http.MethodGet, "/jobs/search").StatusCode)
	assert.Equal(t, fiber.StatusTooManyRequests, hit(t, app, http.MethodGet, "/news/search").StatusCode)

	keys := mr.Keys()
	require.Len(t, keys, 2)
	assert.Contains(t, keys[0], "rl:search:"+string(models.KindJob)+":ip:")
	assert.Contains(t, keys[1], "rl:search:"+string(models.KindNews)+":ip:")
}

func TestLimiterKeysAuthenticatedUsers(t *testing.T) {
	l, mr := newTestLimiter(t)
	app := fiber.New()
	app.Post("/comments", func(c *fiber.Ctx) error {
		c.Locals("userID", uint(42))
		return c.Next()
	}, TagContentKind(models.KindNews), l.Handle(CommentQuota), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusCreated)
	})

	assert.Equal(t, fiber.StatusCreated, hit(t, app, http.MethodPost, "/comments").StatusCode)
	// CommentQuota is shared across kinds.
	assert.True(t, mr.Exists("rl:comment:user:42"))
}

func TestLimiterRepairsCounterWithoutExpiry(t *testing.T) {
	l, mr := newTestLimiter(t)
	require.NoError(t, mr.Set("rl:login:ip:1", "1"))

	allowed, _, err := l.Allow(context.Background(), LoginQuota, "rl:login:ip:1")
	require.NoError(t, err)
	assert.True(t, allowed)
	assert.Equal(t, LoginQuota.Window, mr.TTL("rl:login:ip:1"))
}
