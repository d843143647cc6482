package models

import "time"

// Like represents a like on a post
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_like_user_post"`
	PostID    uint      `json:"post_id" gorm:"not null;index;uniqueIndex:idx_like_user_post"`
	CreatedAt time.Time `json:"created_at"`
}
