package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// CommentRepository defines the interface for comment data operations
type CommentRepository interface {
	CreateComment(ctx context.Context, comment *models.Comment) error
	// GetCommentByID returns the row whatever its active flag.
	GetCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	GetActiveCommentByID(ctx context.Context, id uint) (*models.Comment, error)
	ListActiveByPost(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, int64, error)
	// SoftDelete clears the active flag and reports whether this call changed it.
	SoftDelete(ctx context.Context, id uint) (bool, error)
	CountActiveByPost(ctx context.Context, postID uint) (int64, error)
	ActivePostIDsByAuthor(ctx context.Context, authorID uint) ([]uint, error)
	DeleteByPost(ctx context.Context, postID uint) error
	DeleteByAuthor(ctx context.Context, authorID uint) error
	CountComments(ctx context.Context) (int64, error)
}

// PostgresCommentRepository implements CommentRepository for PostgreSQL
type PostgresCommentRepository struct {
	db *gorm.DB
}

// NewPostgresCommentRepository creates a new PostgresCommentRepository
func NewPostgresCommentRepository(db *gorm.DB) *PostgresCommentRepository {
	return &PostgresCommentRepository{db: db}
}

func (r *PostgresCommentRepository) CreateComment(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Omit("Author").Create(comment).Error
}

func (r *PostgresCommentRepository) GetCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").First(&comment, id).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *PostgresCommentRepository) GetActiveCommentByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND is_active = ?", id, true).
		First(&comment).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

// ListActiveByPost returns a post's visible comments, oldest first.
func (r *PostgresCommentRepository) ListActiveByPost(ctx context.Context, postID uint, offset, limit int) ([]models.Comment, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_active = ?", postID, true).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := q.Preload("Author").Order("created_at ASC, id ASC").Offset(offset).Limit(limit).Find(&comments).Error
	return comments, total, err
}

func (r *PostgresCommentRepository) SoftDelete(ctx context.Context, id uint) (bool, error) {
	res := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("id = ? AND is_active = ?", id, true).
		UpdateColumn("is_active", false)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *PostgresCommentRepository) CountActiveByPost(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("post_id = ? AND is_active = ?", postID, true).
		Count(&count).Error
	return count, err
}

func (r *PostgresCommentRepository) ActivePostIDsByAuthor(ctx context.Context, authorID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("author_id = ? AND is_active = ?", authorID, true).
		Distinct().
		Pluck("post_id", &ids).Error
	return ids, err
}

func (r *PostgresCommentRepository) DeleteByPost(ctx context.Context, postID uint) error {
	return r.db.WithContext(ctx).Where("post_id = ?", postID).Delete(&models.Comment{}).Error
}

func (r *PostgresCommentRepository) DeleteByAuthor(ctx context.Context, authorID uint) error {
	return r.db.WithContext(ctx).Where("author_id = ?", authorID).Delete(&models.Comment{}).Error
}

func (r *PostgresCommentRepository) CountComments(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}
