// Package mirror forwards committed notifications to real-time collaborators.
package mirror

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
)

// Mirror receives a copy of every committed notification.
type Mirror interface {
	Forward(ctx context.Context, n *models.Notification) error
}

// Record is the wire shape shared by every mirror.
type Record struct {
	ID               uint   `json:"id" bson:"_id"`
	RecipientID      uint   `json:"recipient_id" bson:"recipient_id"`
	SenderID         uint   `json:"sender_id" bson:"sender_id"`
	SenderUsername   string `json:"sender_username,omitempty" bson:"sender_username,omitempty"`
	SenderName       string `json:"sender_name,omitempty" bson:"sender_name,omitempty"`
	NotificationType string `json:"notification_type" bson:"notification_type"`
	PostID           *uint  `json:"post_id" bson:"post_id"`
	Message          string `json:"message" bson:"message"`
	IsRead           bool   `json:"is_read" bson:"is_read"`
	CreatedAt        string `json:"created_at" bson:"created_at"`
}

func NewRecord(n *models.Notification) Record {
	r := Record{
		ID:               n.ID,
		RecipientID:      n.RecipientID,
		SenderID:         n.SenderID,
		NotificationType: n.Type,
		PostID:           n.PostID,
		Message:          n.Message,
		IsRead:           n.IsRead,
		CreatedAt:        n.CreatedAt.UTC().Format("2006-01-02T15:04:05.000000Z07:00"),
	}
	if n.Sender != nil {
		r.SenderUsername = n.Sender.Username
		r.SenderName = n.Sender.FullName()
	}
	return r
}

// Fanout forwards to every mirror and joins their errors.
type Fanout []Mirror

func (f Fanout) Forward(ctx context.Context, n *models.Notification) error {
	var errs []error
	for _, m := range f {
		if err := m.Forward(ctx, n); err != nil {
			errs = append(errs, fmt.Errorf("%T: %w", m, err))
		}
	}
	return errors.Join(errs...)
}

// Noop drops every notification.
type Noop struct{}

func (Noop) Forward(context.Context, *models.Notification) error { return nil }
