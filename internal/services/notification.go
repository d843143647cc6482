package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
)

type NotificationService struct {
	repos *repositories.Repositories
}

func NewNotificationService(repos *repositories.Repositories) *NotificationService {
	return &NotificationService{repos: repos}
}

// List returns recipient's notifications, newest first.
func (s *NotificationService) List(ctx context.Context, recipient *models.User, page models.PageRequest) (models.Page[models.Notification], error) {
	items, total, err := s.repos.Notifications.GetByRecipientID(ctx, recipient.ID, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.Notification]{}, err
	}
	return models.NewPage(items, page, total), nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipient *models.User) (int64, error) {
	return s.repos.Notifications.GetUnreadCount(ctx, recipient.ID)
}

// MarkRead flips one notification to read. Another account's notification is reported as missing.
func (s *NotificationService) MarkRead(ctx context.Context, recipient *models.User, id uint) error {
	if err := s.repos.Notifications.MarkAsRead(ctx, id, recipient.ID); err != nil {
		return notFound(err, "Notification not found")
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipient *models.User) (int64, error) {
	n, err := s.repos.Notifications.MarkAllAsRead(ctx, recipient.ID)
	if err != nil {
		return 0, fmt.Errorf("mark all read: %w", err)
	}
	return n, nil
}
