package models

import "time"

const (
	CategoryGeneral      = "general"
	CategoryAnnouncement = "announcement"
	CategoryQuestion     = "question"
)

// Post is a short text post with an optional hosted image.
type Post struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Content      string    `json:"content" gorm:"type:text;not null"`
	AuthorID     uint      `json:"author_id" gorm:"index;not null"`
	Author       *User     `json:"author,omitempty" gorm:"foreignKey:AuthorID"`
	ImageURL     string    `json:"image_url"`
	Category     string    `json:"category" gorm:"size:20;not null"`
	IsActive     bool      `json:"is_active" gorm:"not null;index"`
	LikeCount    int64     `json:"like_count" gorm:"not null"`
	CommentCount int64     `json:"comment_count" gorm:"not null"`
	IsLiked      bool      `json:"is_liked" gorm:"-"`
	CreatedAt    time.Time `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func (p *Post) OwnerID() uint { return p.AuthorID }

type CreatePostRequest struct {
	Content  string `json:"content" form:"content" validate:"required,max=280"`
	Category string `json:"category" form:"category" validate:"omitempty,oneof=general announcement question"`
}

// UpdatePostRequest is shared by PUT and PATCH; nil fields are left untouched.
type UpdatePostRequest struct {
	Content     *string `json:"content" form:"content" validate:"omitempty,min=1,max=280"`
	Category    *string `json:"category" form:"category" validate:"omitempty,oneof=general announcement question"`
	IsActive    *bool   `json:"is_active" form:"is_active"`
	RemoveImage bool    `json:"remove_image" form:"remove_image"`
}
