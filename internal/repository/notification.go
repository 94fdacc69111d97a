package repository

import (
	"context"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"gorm.io/gorm"
)

// NotificationRepository persists in-app notifications.
type NotificationRepository interface {
	Create(ctx context.Context, n *models.Notification) error
	ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error)
	CountUnread(ctx context.Context, userID uint) (int64, error)
	MarkRead(ctx context.Context, userID, id uint) error
	MarkAllRead(ctx context.Context, userID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, n *models.Notification) error {
	if err := r.db.WithContext(ctx).Create(n).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *notificationRepository) ListByUser(ctx context.Context, userID uint, unreadOnly bool, limit, offset int) ([]*models.Notification, int64, error) {
	scope := func() *gorm.DB {
		db := r.db.WithContext(ctx).Model(&models.Notification{}).Where("user_id = ?", userID)
		if unreadOnly {
			db = db.Where("is_read = ?", false)
		}
		return db
	}

	var total int64
	if err := scope().Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var items []*models.Notification
	if err := scope().Order("created_at desc").Order("id desc").Limit(limit).Offset(offset).Find(&items).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return items, total, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, userID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

// MarkRead marks one of the user's notifications read. Notifications of
// other users are reported as not found.
func (r *notificationRepository) MarkRead(ctx context.Context, userID, id uint) error {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, userID uint) (int64, error) {
	now := time.Now()
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Updates(map[string]interface{}{"is_read": true, "read_at": now})
	if res.Error != nil {
		return 0, models.NewInternalError(res.Error)
	}
	return res.RowsAffected, nil
}
