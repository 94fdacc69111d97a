// Package notifications delivers user notifications asynchronously through a
// bounded queue drained by a fixed worker pool.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"github.com/redis/go-redis/v9"
)

// UserChannel is the Redis pub/sub channel of a user's live notifications.
func UserChannel(userID uint) string {
	return fmt.Sprintf("notifications:user:%d", userID)
}

// Notifier provides helpers to publish notifications into Redis channels
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// PublishUser sends a notification payload to a user's channel.
func (n *Notifier) PublishUser(
	ctx context.Context, userID uint, payload string,
) error {
	if n.rdb == nil {
		return nil
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// RedisSink publishes notifications on the user's pub/sub channel so
// connected clients can refresh their inbox.
type RedisSink struct {
	notifier *Notifier
}

// NewRedisSink returns a sink publishing through notifier.
func NewRedisSink(notifier *Notifier) *RedisSink {
	return &RedisSink{notifier: notifier}
}

func (s *RedisSink) Name() string { return "redis" }

func (s *RedisSink) Deliver(ctx context.Context, msg models.NotificationMessage) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return s.notifier.PublishUser(ctx, msg.UserID, string(payload))
}
