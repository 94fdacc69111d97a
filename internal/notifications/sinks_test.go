package notifications

import (
	"context"
	"errors"
	"testing"

	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/featureflags"
	"github.com/leo-soumyajit/Jharkhand-News-sub000/internal/models"

	"firebase.google.com/go/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubNotificationStore struct {
	created []*models.Notification
	err     error
}

func (s *stubNotificationStore) Create(_ context.Context, n *models.Notification) error {
	if s.err != nil {
		return s.err
	}
	s.created = append(s.created, n)
	return nil
}

type stubMessenger struct {
	sent []*messaging.Message
}

func (s *stubMessenger) Send(_ context.Context, m *messaging.Message) (string, error) {
	s.sent = append(s.sent, m)
	return "projects/test/messages/1", nil
}

type stubTokens map[uint]string

func (s stubTokens) FCMToken(_ context.Context, userID uint) (string, error) {
	token, ok := s[userID]
	if !ok {
		return "", models.NewNotFoundError("User", userID)
	}
	return token, nil
}

func TestStoreSinkPersistsRecord(t *testing.T) {
	store := &stubNotificationStore{}
	ref := uint(4)
	sink := NewStoreSink(store)

	require.NoError(t, sink.Deliver(context.Background(), models.NotificationMessage{
		UserID: 2, Title: "Approved", Message: "Your event is live", ReferenceID: &ref, ReferenceType: "event",
	}))
	require.Len(t, store.created, 1)
	assert.Equal(t, uint(2), store.created[0].UserID)
	assert.Equal(t, "event", store.created[0].ReferenceType)
	assert.False(t, store.created[0].IsRead)

	store.err = errors.New("db down")
	assert.Error(t, sink.Deliver(context.Background(), models.NotificationMessage{UserID: 2}))
}

func TestPushSinkHonorsRolloutAndToken(t *testing.T) {
	ref := uint(12)
	tests := []struct {
		name     string
		flags    string
		tokens   stubTokens
		wantSent bool
		wantErr  bool
	}{
		{name: "flag off", flags: "push_notifications=off", tokens: stubTokens{1: "tok"}},
		{name: "no token", flags: "push_notifications=on", tokens: stubTokens{1: ""}},
		{name: "unknown user", flags: "push_notifications=on", tokens: stubTokens{}, wantErr: true},
		{name: "sent", flags: "push_notifications=100%", tokens: stubTokens{1: "tok"}, wantSent: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &stubMessenger{}
			sink := NewPushSink(client, tt.tokens, featureflags.NewManager(tt.flags))

			err := sink.Deliver(context.Background(), models.NotificationMessage{
				UserID: 1, Message: "New inquiry on your property", ReferenceID: &ref, ReferenceType: "property",
			})
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			if !tt.wantSent {
				assert.Empty(t, client.sent)
				return
			}
			require.Len(t, client.sent, 1)
			assert.Equal(t, "tok", client.sent[0].Token)
			assert.Equal(t, "12", client.sent[0].Data["reference_id"])
			assert.Equal(t, "New inquiry on your property", client.sent[0].Notification.Body)
		})
	}
}
