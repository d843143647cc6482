package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// FollowRepository defines the interface for follow data operations
type FollowRepository interface {
	// CreateFollowIfAbsent inserts the edge and reports whether a new row was written.
	CreateFollowIfAbsent(ctx context.Context, followerID, followingID uint) (bool, error)
	// DeleteFollow removes the edge and reports whether a row existed.
	DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error)
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	GetFollowers(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error)
	GetFollowing(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error)
	GetFollowersCount(ctx context.Context, userID uint) (int64, error)
	GetFollowingCount(ctx context.Context, userID uint) (int64, error)
	GetFollowerIDs(ctx context.Context, userID uint) ([]uint, error)
	GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error)
	DeleteAllForUser(ctx context.Context, userID uint) error
	CountFollows(ctx context.Context) (int64, error)
}

// PostgresFollowRepository implements FollowRepository for PostgreSQL
type PostgresFollowRepository struct {
	db *gorm.DB
}

// NewPostgresFollowRepository creates a new PostgresFollowRepository
func NewPostgresFollowRepository(db *gorm.DB) *PostgresFollowRepository {
	return &PostgresFollowRepository{db: db}
}

func (r *PostgresFollowRepository) CreateFollowIfAbsent(ctx context.Context, followerID, followingID uint) (bool, error) {
	follow := &models.Follow{FollowerID: followerID, FollowingID: followingID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "follower_id"}, {Name: "following_id"}},
			DoNothing: true,
		}).
		Create(follow)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) DeleteFollow(ctx context.Context, followerID, followingID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Delete(&models.Follow{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresFollowRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PostgresFollowRepository) GetFollowers(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	db := r.db.WithContext(ctx)
	return r.listUsers(db, db.Table("follows").Select("follower_id").Where("following_id = ?", userID), offset, limit)
}

func (r *PostgresFollowRepository) GetFollowing(ctx context.Context, userID uint, offset, limit int) ([]models.User, int64, error) {
	db := r.db.WithContext(ctx)
	return r.listUsers(db, db.Table("follows").Select("following_id").Where("follower_id = ?", userID), offset, limit)
}

func (r *PostgresFollowRepository) listUsers(db *gorm.DB, ids *gorm.DB, offset, limit int) ([]models.User, int64, error) {
	q := db.Model(&models.User{}).Where("id IN (?) AND is_active = ?", ids, true).Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("username").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *PostgresFollowRepository) GetFollowersCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowingCount(ctx context.Context, userID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&count).Error
	return count, err
}

func (r *PostgresFollowRepository) GetFollowerIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("following_id = ?", userID).Pluck("follower_id", &ids).Error
	return ids, err
}

func (r *PostgresFollowRepository) GetFollowingIDs(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Where("follower_id = ?", userID).Pluck("following_id", &ids).Error
	return ids, err
}

// DeleteAllForUser drops every edge that touches userID in either direction.
func (r *PostgresFollowRepository) DeleteAllForUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).
		Where("follower_id = ? OR following_id = ?", userID, userID).
		Delete(&models.Follow{}).Error
}

func (r *PostgresFollowRepository) CountFollows(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).Count(&count).Error
	return count, err
}
