package mirror

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMirror struct {
	got []uint
	err error
}

func (m *recordingMirror) Forward(_ context.Context, n *models.Notification) error {
	m.got = append(m.got, n.ID)
	return m.err
}

type fakeSender struct {
	sent []*messaging.Message
}

func (s *fakeSender) Send(_ context.Context, msg *messaging.Message) (string, error) {
	s.sent = append(s.sent, msg)
	return "projects/test/messages/1", nil
}

func sampleNotification() *models.Notification {
	postID := uint(7)
	return &models.Notification{
		ID:          42,
		RecipientID: 2,
		SenderID:    1,
		Sender:      &models.User{ID: 1, Username: "alice", FirstName: "Alice", LastName: "Liddell"},
		Type:        models.NotificationLike,
		PostID:      &postID,
		Message:     "alice liked your post",
		CreatedAt:   time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestFanoutForwardsToAllAndJoinsErrors(t *testing.T) {
	ok := &recordingMirror{}
	broken := &recordingMirror{err: errors.New("unreachable")}
	last := &recordingMirror{}

	err := Fanout{ok, broken, last}.Forward(context.Background(), sampleNotification())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unreachable")
	assert.Equal(t, []uint{42}, ok.got)
	assert.Equal(t, []uint{42}, last.got)
}

func TestEmptyFanoutIsNil(t *testing.T) {
	assert.NoError(t, Fanout{}.Forward(context.Background(), sampleNotification()))
	assert.NoError(t, Noop{}.Forward(context.Background(), sampleNotification()))
}

func TestRecordWireShape(t *testing.T) {
	raw, err := json.Marshal(NewRecord(sampleNotification()))
	require.NoError(t, err)

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &got))
	assert.Equal(t, "like", got["notification_type"])
	assert.Equal(t, "alice", got["sender_username"])
	assert.Equal(t, "Alice Liddell", got["sender_name"])
	assert.EqualValues(t, 7, got["post_id"])
	assert.Equal(t, "2026-01-02T03:04:05.000000Z", got["created_at"])
}

func TestFCMMirrorTargetsRecipientTopic(t *testing.T) {
	sender := &fakeSender{}
	require.NoError(t, NewFCMMirror(sender).Forward(context.Background(), sampleNotification()))

	require.Len(t, sender.sent, 1)
	msg := sender.sent[0]
	assert.Equal(t, "user-2", msg.Topic)
	assert.Equal(t, "New like", msg.Notification.Title)
	assert.Equal(t, "alice liked your post", msg.Notification.Body)
	assert.Equal(t, "7", msg.Data["post_id"])
}

func TestNATSSubject(t *testing.T) {
	assert.Equal(t, "notifications.9", NewNATSMirror(nil, "notifications").Subject(9))
}
