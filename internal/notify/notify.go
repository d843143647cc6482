// Package notify records activity notifications inside the action's transaction
// and forwards them to the mirror once the transaction has committed.
package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/nano-social/backend/internal/mirror"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

const forwardTimeout = 5 * time.Second

// Event is one social action that may notify another account.
type Event struct {
	Type        string
	Sender      *models.User
	RecipientID uint
	PostID      *uint
}

type Notifier struct {
	mirror mirror.Mirror
	log    *zap.Logger
}

func New(m mirror.Mirror, log *zap.Logger) *Notifier {
	if m == nil {
		m = mirror.Noop{}
	}
	return &Notifier{mirror: m, log: log}
}

// Record writes the notification through tx. Self-notifications are skipped and return nil.
func (n *Notifier) Record(ctx context.Context, tx *repositories.Repositories, ev Event) (*models.Notification, error) {
	if ev.Sender == nil || ev.Sender.ID == ev.RecipientID {
		return nil, nil
	}
	notification := &models.Notification{
		RecipientID: ev.RecipientID,
		SenderID:    ev.Sender.ID,
		Type:        ev.Type,
		PostID:      ev.PostID,
		Message:     Message(ev.Type, ev.Sender.Username),
	}
	if err := tx.Notifications.CreateNotification(ctx, notification); err != nil {
		return nil, fmt.Errorf("create %s notification: %w", ev.Type, err)
	}
	notification.Sender = ev.Sender
	return notification, nil
}

// Deliver forwards committed notifications to the mirror. Failures are logged, never returned.
func (n *Notifier) Deliver(ctx context.Context, notifications ...*models.Notification) {
	for _, notification := range notifications {
		if notification == nil {
			continue
		}
		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), forwardTimeout)
		err := n.mirror.Forward(fctx, notification)
		cancel()
		if err != nil {
			n.log.Warn("notification mirror failed",
				zap.Uint("notification_id", notification.ID),
				zap.Uint("recipient_id", notification.RecipientID),
				zap.Error(err))
		}
	}
}

func Message(kind, username string) string {
	switch kind {
	case models.NotificationFollow:
		return username + " started following you"
	case models.NotificationLike:
		return username + " liked your post"
	case models.NotificationComment:
		return username + " commented on your post"
	default:
		return username + " interacted with you"
	}
}
