package repositories

import (
	"context"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

const newestFirst = "created_at DESC, id DESC"

// PostRepository defines the interface for post data operations
type PostRepository interface {
	CreatePost(ctx context.Context, post *models.Post) error
	GetPostByID(ctx context.Context, id uint) (*models.Post, error)
	GetActivePostByID(ctx context.Context, id uint) (*models.Post, error)
	GetPostsByAuthor(ctx context.Context, authorID uint) ([]models.Post, error)
	ListActivePosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error)
	ListAllPosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error)
	ListActivePostsByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Post, int64, error)
	ListPostIDs(ctx context.Context) ([]uint, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	DeletePost(ctx context.Context, id uint) error

	IncrementLikeCount(ctx context.Context, id uint) error
	DecrementLikeCount(ctx context.Context, id uint) error
	IncrementCommentCount(ctx context.Context, id uint) error
	DecrementCommentCount(ctx context.Context, id uint) error
	SetCounters(ctx context.Context, id uint, likes, comments int64) error

	CountActiveByAuthor(ctx context.Context, authorID uint) (int64, error)
	CountPosts(ctx context.Context) (int64, error)
	CountActivePosts(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
}

// PostgresPostRepository implements PostRepository for PostgreSQL
type PostgresPostRepository struct {
	db *gorm.DB
}

// NewPostgresPostRepository creates a new PostgresPostRepository
func NewPostgresPostRepository(db *gorm.DB) *PostgresPostRepository {
	return &PostgresPostRepository{db: db}
}

func (r *PostgresPostRepository) CreatePost(ctx context.Context, post *models.Post) error {
	return r.db.WithContext(ctx).Omit("Author").Create(post).Error
}

func (r *PostgresPostRepository) GetPostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").First(&post, id).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetActivePostByID(ctx context.Context, id uint) (*models.Post, error) {
	var post models.Post
	if err := r.db.WithContext(ctx).Preload("Author").
		Where("id = ? AND is_active = ?", id, true).
		First(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *PostgresPostRepository) GetPostsByAuthor(ctx context.Context, authorID uint) ([]models.Post, error) {
	var posts []models.Post
	err := r.db.WithContext(ctx).Where("author_id = ?", authorID).Find(&posts).Error
	return posts, err
}

func (r *PostgresPostRepository) ListActivePosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&models.Post{}).Where("is_active = ?", true), offset, limit)
}

func (r *PostgresPostRepository) ListAllPosts(ctx context.Context, offset, limit int) ([]models.Post, int64, error) {
	return r.page(r.db.WithContext(ctx).Model(&models.Post{}), offset, limit)
}

func (r *PostgresPostRepository) ListActivePostsByAuthors(ctx context.Context, authorIDs []uint, offset, limit int) ([]models.Post, int64, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, 0, nil
	}
	q := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("is_active = ? AND author_id IN ?", true, authorIDs)
	return r.page(q, offset, limit)
}

func (r *PostgresPostRepository) page(q *gorm.DB, offset, limit int) ([]models.Post, int64, error) {
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := q.Preload("Author").Order(newestFirst).Offset(offset).Limit(limit).Find(&posts).Error
	return posts, total, err
}

func (r *PostgresPostRepository) ListPostIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Post{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

func (r *PostgresPostRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresPostRepository) DeletePost(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.Post{}, id).Error
}

func (r *PostgresPostRepository) IncrementLikeCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Post{}, id, "like_count", 1)
}

func (r *PostgresPostRepository) DecrementLikeCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Post{}, id, "like_count", -1)
}

func (r *PostgresPostRepository) IncrementCommentCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Post{}, id, "comment_count", 1)
}

func (r *PostgresPostRepository) DecrementCommentCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.Post{}, id, "comment_count", -1)
}

func (r *PostgresPostRepository) SetCounters(ctx context.Context, id uint, likes, comments int64) error {
	return r.db.WithContext(ctx).Model(&models.Post{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"like_count":    likes,
		"comment_count": comments,
	}).Error
}

func (r *PostgresPostRepository) CountActiveByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).
		Where("author_id = ? AND is_active = ?", authorID, true).
		Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) CountActivePosts(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("is_active = ?", true).Count(&count).Error
	return count, err
}

func (r *PostgresPostRepository) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Post{}).Where("created_at >= ?", since).Count(&count).Error
	return count, err
}
