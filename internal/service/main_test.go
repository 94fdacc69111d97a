package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/database"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/media"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	cache.SetClient(nil)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	return db
}

func seedUser(t *testing.T, db *gorm.DB, username string, role models.Role) models.Actor {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", Password: "x", Role: role}
	require.NoError(t, db.Create(u).Error)
	return u.Actor()
}

// stubMedia records uploads and deletions in call order.
type stubMedia struct {
	mu        sync.Mutex
	uploaded  []string
	deleted   []string
	uploadErr error
	deleteErr error
	seq       int
}

func (s *stubMedia) UploadMany(_ context.Context, folder string, files []media.File) ([]media.Object, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.uploadErr != nil {
		return nil, s.uploadErr
	}
	objs := make([]media.Object, 0, len(files))
	for _, f := range files {
		s.seq++
		id := fmt.Sprintf("%s/%d-%s", folder, s.seq, f.Filename)
		s.uploaded = append(s.uploaded, id)
		objs = append(objs, media.Object{URL: "https://cdn.example.com/" + id, PublicID: id})
	}
	return objs, nil
}

func (s *stubMedia) Delete(_ context.Context, publicID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deleted = append(s.deleted, publicID)
	return s.deleteErr
}

func (s *stubMedia) deletions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.deleted...)
}

// recordingNotifier collects notifications synchronously.
type recordingNotifier struct {
	mu   sync.Mutex
	msgs []models.NotificationMessage
}

func (n *recordingNotifier) Notify(_ context.Context, msg models.NotificationMessage) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.msgs = append(n.msgs, msg)
}

func (n *recordingNotifier) sent() []models.NotificationMessage {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]models.NotificationMessage(nil), n.msgs...)
}

func images(names ...string) []Upload {
	files := make([]media.File, 0, len(names))
	for _, n := range names {
		files = append(files, media.File{Filename: n, ContentType: "image/webp", Content: []byte(n)})
	}
	return []Upload{{Role: models.MediaRoleImage, Files: files}}
}

func newNews(title string) *models.News {
	return &models.News{
		ListingBase: models.ListingBase{Title: title, District: "Ranchi"},
		Content:     "Heavy rain expected across the district this week.",
		Category:    "weather",
	}
}

func newRental(title string, area float64) *models.Property {
	return &models.Property{
		ListingBase:    models.ListingBase{Title: title, District: "Ranchi"},
		Description:    "Spacious flat close to the main road",
		PropertyType:   models.PropertyTypeApartment,
		PropertyStatus: models.PropertyForRent,
		Price:          15000,
		Area:           area,
	}
}

func assertCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var appErr *models.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %T: %v", err, err)
	assert.Equal(t, code, appErr.Code)
}

func assertValidationError(t *testing.T, err error) {
	t.Helper()
	assertCode(t, err, models.CodeValidation)
}
