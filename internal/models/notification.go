package models

import "time"

const (
	NotificationFollow  = "follow"
	NotificationLike    = "like"
	NotificationComment = "comment"
)

// Notification represents a user notification (PostgreSQL)
type Notification struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	RecipientID uint      `json:"recipient_id" gorm:"index;not null"`
	SenderID    uint      `json:"sender_id" gorm:"index;not null"`
	Sender      *User     `json:"sender,omitempty" gorm:"foreignKey:SenderID"`
	Type        string    `json:"notification_type" gorm:"column:notification_type;size:20;index;not null"`
	PostID      *uint     `json:"post_id" gorm:"index"`
	Message     string    `json:"message" gorm:"size:200"`
	IsRead      bool      `json:"is_read" gorm:"not null;index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (n *Notification) OwnerID() uint { return n.RecipientID }
