package mirror

import (
	"context"
	"fmt"
	"strconv"

	"firebase.google.com/go/v4/messaging"
	"github.com/anonto42/nano-social/backend/internal/models"
)

// Sender is the part of the FCM client the mirror needs.
type Sender interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// FCMMirror pushes notifications to the recipient's topic "user-<id>".
type FCMMirror struct {
	client Sender
}

func NewFCMMirror(client Sender) *FCMMirror {
	return &FCMMirror{client: client}
}

func Topic(recipientID uint) string {
	return fmt.Sprintf("user-%d", recipientID)
}

func (m *FCMMirror) Forward(ctx context.Context, n *models.Notification) error {
	data := map[string]string{
		"notification_id":   strconv.FormatUint(uint64(n.ID), 10),
		"notification_type": n.Type,
		"sender_id":         strconv.FormatUint(uint64(n.SenderID), 10),
	}
	if n.PostID != nil {
		data["post_id"] = strconv.FormatUint(uint64(*n.PostID), 10)
	}
	_, err := m.client.Send(ctx, &messaging.Message{
		Topic: Topic(n.RecipientID),
		Notification: &messaging.Notification{
			Title: title(n.Type),
			Body:  n.Message,
		},
		Data: data,
	})
	return err
}

func title(kind string) string {
	switch kind {
	case models.NotificationFollow:
		return "New follower"
	case models.NotificationLike:
		return "New like"
	case models.NotificationComment:
		return "New comment"
	default:
		return "Notification"
	}
}
