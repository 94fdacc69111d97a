package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/config"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/media"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/middleware"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "test-secret-key-12345678901234567890123456789012"

type fakeMedia struct {
	mu      sync.Mutex
	seq     int
	deleted []string
}

func (m *fakeMedia) UploadMany(_ context.Context, folder string, files []media.File) ([]media.Object, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	objs := make([]media.Object, 0, len(files))
	for _, f := range files {
		m.seq++
		id := fmt.Sprintf("%s/%d-%s", folder, m.seq, f.Filename)
		objs = append(objs, media.Object{URL: "https://cdn.example.com/" + id, PublicID: id})
	}
	return objs, nil
}

func (m *fakeMedia) Delete(_ context.Context, publicID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleted = append(m.deleted, publicID)
	return nil
}

type fakeNotifier struct {
	mu   sync.Mutex
	msgs []models.NotificationMessage
}

func (n *fakeNotifier) Notify(_ context.Context, msg models.NotificationMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *fakeNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.msgs)
}

type testEnv struct {
	t        *testing.T
	db       *gorm.DB
	app      *fiber.App
	media    *fakeMedia
	notifier *fakeNotifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	cache.SetClient(nil)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))

	env := &testEnv{t: t, db: db, media: &fakeMedia{}, notifier: &fakeNotifier{}}
	srv := NewServerWithDeps(&config.Config{
		JWTSecret:      testSecret,
		JWTTTLHours:    1,
		AllowedOrigins: "http://localhost:5173",
	}, db, nil, Deps{Media: env.media, Notifier: env.notifier})
	env.app = srv.App()
	return env
}

// user creates an account and returns it with a bearer token.
func (e *testEnv) user(name string, role models.Role) (*models.User, string) {
	e.t.Helper()
	u := &models.User{Username: name, Email: name + "@example.com", Password: "x", Role: role, Phone: "9876543210"}
	require.NoError(e.t, e.db.Create(u).Error)
	token, _, err := middleware.IssueToken(testSecret, u.ID, time.Hour)
	require.NoError(e.t, err)
	return u, token
}

func (e *testEnv) do(method, path, token string, body any) (int, []byte) {
	e.t.Helper()
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(e.t, err)
		reader = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}
	return e.send(req, token)
}

func (e *testEnv) multipart(path, token string, data any, images ...string) (int, []byte) {
	e.t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	raw, err := json.Marshal(data)
	require.NoError(e.t, err)
	require.NoError(e.t, w.WriteField(formData, string(raw)))
	for _, name := range images {
		part, err := w.CreateFormFile(formImages, name)
		require.NoError(e.t, err)
		_, err = part.Write([]byte("image bytes of " + name))
		require.NoError(e.t, err)
	}
	require.NoError(e.t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return e.send(req, token)
}

func (e *testEnv) send(req *http.Request, token string) (int, []byte) {
	e.t.Helper()
	if token != "" {
		req.Header.Set(fiber.HeaderAuthorization, "Bearer "+token)
	}
	resp, err := e.app.Test(req, -1)
	require.NoError(e.t, err)
	defer func() { _ = resp.Body.Close() }()
	out, err := io.ReadAll(resp.Body)
	require.NoError(e.t, err)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, raw []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v), string(raw))
	return v
}

type listPage struct {
	Items []struct {
		ID     uint   `json:"id"`
		Title  string `json:"title"`
		Status string `json:"status"`
	} `json:"items"`
	TotalElements int64 `json:"total_elements"`
}
