package service

import (
	"context"
	"time"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/filter"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/repository"
)

// unreadTTL bounds how stale a cached unread badge may be.
const unreadTTL = 30 * time.Second

// NotificationService serves a user's notification inbox.
type NotificationService struct {
	repo repository.NotificationRepository
}

func NewNotificationService(repo repository.NotificationRepository) *NotificationService {
	return &NotificationService{repo: repo}
}

func (s *NotificationService) List(ctx context.Context, actor models.Actor, unreadOnly bool, page, size int) (filter.Page[*models.Notification], error) {
	q := filter.NewQuery(page, size)
	items, total, err := s.repo.ListByUser(ctx, actor.ID, unreadOnly, q.Size, q.Offset())
	if err != nil {
		return filter.Page[*models.Notification]{}, err
	}
	return filter.NewPage(items, total, q), nil
}

// UnreadCount returns the number of unread notifications of actor.
func (s *NotificationService) UnreadCount(ctx context.Context, actor models.Actor) (int64, error) {
	var count int64
	err := cache.Aside(ctx, cache.UnreadKey(actor.ID), &count, unreadTTL, func() error {
		var err error
		count, err = s.repo.CountUnread(ctx, actor.ID)
		return err
	})
	return count, err
}

func (s *NotificationService) MarkRead(ctx context.Context, actor models.Actor, id uint) error {
	if err := s.repo.MarkRead(ctx, actor.ID, id); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.UnreadKey(actor.ID))
	return nil
}

// MarkAllRead marks every notification of actor read and returns how many changed.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor models.Actor) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, actor.ID)
	if err != nil {
		return 0, err
	}
	cache.Invalidate(ctx, cache.UnreadKey(actor.ID))
	return n, nil
}
