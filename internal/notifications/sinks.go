package notifications

import (
	"context"
	"fmt"
	"strconv"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/cache"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/featureflags"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"google.golang.org/api/option"
)

// NotificationStore persists notifications for the in-app inbox.
type NotificationStore interface {
	Create(ctx context.Context, n *models.Notification) error
}

// StoreSink writes notifications to the inbox table.
type StoreSink struct {
	store NotificationStore
}

// NewStoreSink returns a sink persisting into store.
func NewStoreSink(store NotificationStore) *StoreSink {
	return &StoreSink{store: store}
}

func (s *StoreSink) Name() string { return "store" }

func (s *StoreSink) Deliver(ctx context.Context, msg models.NotificationMessage) error {
	if err := s.store.Create(ctx, msg.Record()); err != nil {
		return err
	}
	cache.Invalidate(ctx, cache.UnreadKey(msg.UserID))
	return nil
}

// Messenger sends a push message; *messaging.Client satisfies it.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// TokenSource resolves a user's device token.
type TokenSource interface {
	FCMToken(ctx context.Context, userID uint) (string, error)
}

// PushSink sends notifications to the user's device through Firebase Cloud
// Messaging for users inside the push_notifications rollout.
type PushSink struct {
	client Messenger
	tokens TokenSource
	flags  *featureflags.Manager
}

// NewPushSink returns a sink sending through client.
func NewPushSink(client Messenger, tokens TokenSource, flags *featureflags.Manager) *PushSink {
	return &PushSink{client: client, tokens: tokens, flags: flags}
}

// NewFCMClient builds a messaging client from a service account file.
func NewFCMClient(ctx context.Context, credentialsFile string) (*messaging.Client, error) {
	app, err := firebase.NewApp(ctx, nil, option.WithCredentialsFile(credentialsFile))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Messaging(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase messaging: %w", err)
	}
	return client, nil
}

func (s *PushSink) Name() string { return "fcm" }

func (s *PushSink) Deliver(ctx context.Context, msg models.NotificationMessage) error {
	if !s.flags.Enabled(featureflags.PushNotifications, msg.UserID) {
		return nil
	}
	token, err := s.tokens.FCMToken(ctx, msg.UserID)
	if err != nil {
		return err
	}
	if token == "" {
		return nil
	}

	data := map[string]string{"reference_type": msg.ReferenceType}
	if msg.ReferenceID != nil {
		data["reference_id"] = strconv.FormatUint(uint64(*msg.ReferenceID), 10)
	}
	title := msg.Title
	if title == "" {
		title = "Jharkhand Portal"
	}
	_, err = s.client.Send(ctx, &messaging.Message{
		Token: token,
		Notification: &messaging.Notification{
			Title: title,
			Body:  msg.Message,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{"apns-priority": "10"},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("fcm send: %w", err)
	}
	return nil
}
