package models

import "time"

// Comment on a post. Deletion only clears IsActive.
type Comment struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	AuthorID  uint      `json:"author_id" gorm:"index;not null"`
	Author    *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	PostID    uint      `json:"post_id" gorm:"index;not null"`
	IsActive  bool      `json:"is_active" gorm:"not null;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (c *Comment) OwnerID() uint { return c.AuthorID }

type CreateCommentRequest struct {
	Content string `json:"content" form:"content" validate:"required,max=200"`
}
