package models

import "time"

// Follow is a directed edge from FollowerID to FollowingID.
type Follow struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	FollowerID  uint      `json:"follower_id" gorm:"not null;uniqueIndex:idx_follower_following"`
	FollowingID uint      `json:"following_id" gorm:"not null;index;uniqueIndex:idx_follower_following"`
	CreatedAt   time.Time `json:"created_at"`
}
