package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines the interface for like data operations
type LikeRepository interface {
	// CreateLikeIfAbsent inserts the like and reports whether a new row was written.
	CreateLikeIfAbsent(ctx context.Context, userID, postID uint) (bool, error)
	// DeleteLike removes the like and reports whether a row existed.
	DeleteLike(ctx context.Context, userID, postID uint) (bool, error)
	HasUserLikedPost(ctx context.Context, userID, postID uint) (bool, error)
	// LikedPostIDs returns the subset of postIDs the user has liked.
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error)
	GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error)
	PostIDsByUser(ctx context.Context, userID uint) ([]uint, error)
	DeleteByPost(ctx context.Context, postID uint) error
	DeleteByUser(ctx context.Context, userID uint) error
	CountLikes(ctx context.Context) (int64, error)
}

// PostgresLikeRepository implements LikeRepository for PostgreSQL
type PostgresLikeRepository struct {
	db *gorm.DB
}

// NewPostgresLikeRepository creates a new PostgresLikeRepository
func NewPostgresLikeRepository(db *gorm.DB) *PostgresLikeRepository {
	return &PostgresLikeRepository{db: db}
}

func (r *PostgresLikeRepository) CreateLikeIfAbsent(ctx context.Context, userID, postID uint) (bool, error) {
	like := &models.Like{UserID: userID, PostID: postID}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "post_id"}},
			DoNothing: true,
		}).
		Create(like)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) DeleteLike(ctx context.Context, userID, postID uint) (bool, error) {
	res := r.db.WithContext(ctx).Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresLikeRepository) HasUserLikedPost(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresLikeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uint) (map[uint]bool, error) {
	liked := make(map[uint]bool, len(postIDs))
	if len(postIDs) == 0 {
		return liked, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		liked[id] = true
	}
	return liked, nil
}

func (r *PostgresLikeRepository) GetLikesCountByPostID(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&count).Error
	return count, err
}

func (r *PostgresLikeRepository) PostIDsByUser(ctx context.Context, userID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Like{}).Where("user_id = ?", userID).Pluck("post_id", &ids).Error
	return ids, err
}

func (r *PostgresLikeRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) DeleteByUser(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Where("user_id = ?", userID).Delete(&models.Like{}).Error
}

func (r *PostgresLikeRepository) CountLikes(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).Count(&count).Error
	return count, err
}
