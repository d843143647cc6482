package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is an account. The three counters are denormalized from follows and active posts.
type User struct {
	ID             uint       `json:"id" gorm:"primaryKey"`
	Username       string     `json:"username" gorm:"size:150;uniqueIndex;not null"`
	Email          string     `json:"email" gorm:"size:254;uniqueIndex;not null"`
	FirstName      string     `json:"first_name" gorm:"size:150"`
	LastName       string     `json:"last_name" gorm:"size:150"`
	Password       string     `json:"-"`
	Role           string     `json:"role" gorm:"size:10;not null"`
	AvatarURL      string     `json:"avatar_url"`
	Website        string     `json:"website"`
	Location       string     `json:"location" gorm:"size:100"`
	Bio            string     `json:"bio" gorm:"type:text"`
	FollowersCount int64      `json:"followers_count" gorm:"not null"`
	FollowingCount int64      `json:"following_count" gorm:"not null"`
	PostsCount     int64      `json:"posts_count" gorm:"not null"`
	IsActive       bool       `json:"is_active" gorm:"not null;index"`
	FirebaseUID    *string    `json:"-" gorm:"uniqueIndex"`
	LastLogin      *time.Time `json:"last_login"`
	CreatedAt      time.Time  `json:"date_joined" gorm:"index"`
	UpdatedAt      time.Time  `json:"-"`
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	default:
		return u.LastName
	}
}

// UserProfile is a user as seen by another user.
type UserProfile struct {
	User
	IsFollowing bool `json:"is_following"`
}

type RegisterRequest struct {
	Username  string `json:"username" validate:"required,min=3,max=150"`
	Email     string `json:"email" validate:"required,email,max=254"`
	FirstName string `json:"first_name" validate:"max=150"`
	LastName  string `json:"last_name" validate:"max=150"`
	Password  string `json:"password" validate:"required,min=8,max=128"`
	Role      string `json:"role" validate:"omitempty,oneof=admin user"`
}

type LoginRequest struct {
	UsernameOrEmail string `json:"username_or_email" validate:"required"`
	Password        string `json:"password" validate:"required"`
}

type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest carries a partial profile update; nil fields are left untouched.
type UpdateProfileRequest struct {
	Username  *string `json:"username" form:"username" validate:"omitempty,min=3,max=150"`
	Email     *string `json:"email" form:"email" validate:"omitempty,email,max=254"`
	FirstName *string `json:"first_name" form:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" form:"last_name" validate:"omitempty,max=150"`
	Website   *string `json:"website" form:"website" validate:"omitempty,url,max=200"`
	Location  *string `json:"location" form:"location" validate:"omitempty,max=100"`
	Bio       *string `json:"bio" form:"bio" validate:"omitempty,max=160"`
	Password  *string `json:"password" form:"password" validate:"omitempty,min=8,max=128"`
}
