package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// NotificationRepository defines the interface for notification operations
type NotificationRepository interface {
	CreateNotification(ctx context.Context, notification *models.Notification) error
	GetByRecipientID(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, int64, error)
	GetUnreadCount(ctx context.Context, recipientID uint) (int64, error)
	// MarkAsRead flips the read flag of one notification owned by recipientID.
	// It returns gorm.ErrRecordNotFound when no such notification exists for that recipient.
	MarkAsRead(ctx context.Context, notificationID, recipientID uint) error
	MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error)
	DeleteByPost(ctx context.Context, postID uint) error
	DeleteByUser(ctx context.Context, userID uint) error
}

type postgresNotificationRepository struct {
	db *gorm.DB
}

func NewPostgresNotificationRepository(db *gorm.DB) NotificationRepository {
	return &postgresNotificationRepository{db: db}
}

func (r *postgresNotificationRepository) CreateNotification(ctx context.Context, notification *models.Notification) error {
	return r.db.WithContext(ctx).Omit("Sender").Create(notification).Error
}

func (r *postgresNotificationRepository) GetByRecipientID(ctx context.Context, recipientID uint, offset, limit int) ([]models.Notification, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ?", recipientID).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var notifications []models.Notification
	err := q.Preload("Sender").
		Order("created_at DESC, id DESC").
		Offset(offset).Limit(limit).
		Find(&notifications).Error
	return notifications, total, err
}

func (r *postgresNotificationRepository) GetUnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&count).Error
	return count, err
}

func (r *postgresNotificationRepository) MarkAsRead(ctx context.Context, notificationID, recipientID uint) error {
	var notification models.Notification
	db := r.db.WithContext(ctx)
	if err := db.Where("id = ? AND recipient_id = ?", notificationID, recipientID).First(&notification).Error; err != nil {
		return err
	}
	if notification.IsRead {
		return nil
	}
	return db.Model(&models.Notification{}).Where("id = ?", notificationID).UpdateColumn("is_read", true).Error
}

func (r *postgresNotificationRepository) MarkAllAsRead(ctx context.Context, recipientID uint) (int64, error) {
	res := r.db.WithContext(ctx).Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		UpdateColumn("is_read", true)
	return res.RowsAffected, res.Error
}

func (r *postgresNotificationRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Notification{}).Error
}

// DeleteByUser removes notifications the user sent or received.
func (r *postgresNotificationRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("sender_id = ? OR recipient_id = ?", userID, userID).
		Delete(&models.Notification{}).Error
}
