package repositories

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
	GetActiveUserByID(ctx context.Context, id uint) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error)
	ExistsByUsername(ctx context.Context, username string, exceptID uint) (bool, error)
	ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error)
	ListUsers(ctx context.Context, activeOnly bool, offset, limit int) ([]models.User, int64, error)
	SearchUsers(ctx context.Context, query string, offset, limit int) ([]models.User, int64, error)
	ListUserIDs(ctx context.Context) ([]uint, error)
	UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error
	SetActive(ctx context.Context, id uint, active bool) error
	TouchLastLogin(ctx context.Context, id uint, at time.Time) error
	DeleteUser(ctx context.Context, id uint) error

	IncrementFollowersCount(ctx context.Context, id uint) error
	DecrementFollowersCount(ctx context.Context, id uint) error
	IncrementFollowingCount(ctx context.Context, id uint) error
	DecrementFollowingCount(ctx context.Context, id uint) error
	SetPostsCount(ctx context.Context, id uint, n int64) error
	SetCounters(ctx context.Context, id uint, followers, following, posts int64) error

	CountUsers(ctx context.Context) (int64, error)
	CountLoggedInSince(ctx context.Context, since time.Time) (int64, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) CreateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

func (r *PostgresUserRepository) GetUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetActiveUserByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) GetUserByFirebaseUID(ctx context.Context, firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *PostgresUserRepository) ExistsByUsername(ctx context.Context, username string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("username = ? AND id <> ?", username, exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresUserRepository) ExistsByEmail(ctx context.Context, email string, exceptID uint) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), exceptID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostgresUserRepository) ListUsers(ctx context.Context, activeOnly bool, offset, limit int) ([]models.User, int64, error) {
	q := r.db.WithContext(ctx).Model(&models.User{})
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}
	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("created_at DESC, id DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// likeEscaper makes LIKE wildcards in user input match literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// SearchUsers matches active accounts on username, first/last name or email, newest first.
func (r *PostgresUserRepository) SearchUsers(ctx context.Context, query string, offset, limit int) ([]models.User, int64, error) {
	like := "%" + likeEscaper.Replace(strings.ToLower(query)) + "%"
	q := r.db.WithContext(ctx).Model(&models.User{}).
		Where("is_active = ?", true).
		Where("(LOWER(username) LIKE ? ESCAPE '\\' OR LOWER(first_name) LIKE ? ESCAPE '\\' OR "+
			"LOWER(last_name) LIKE ? ESCAPE '\\' OR LOWER(email) LIKE ? ESCAPE '\\')",
			like, like, like, like).
		Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

func (r *PostgresUserRepository) ListUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}

// UpdateFields writes only the named columns so cached counters are never overwritten from a stale read.
func (r *PostgresUserRepository) UpdateFields(ctx context.Context, id uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PostgresUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return r.UpdateFields(ctx, id, map[string]interface{}{"is_active": active})
}

func (r *PostgresUserRepository) TouchLastLogin(ctx context.Context, id uint, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("last_login", at).Error
}

func (r *PostgresUserRepository) DeleteUser(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Delete(&models.User{}, id).Error
}

func (r *PostgresUserRepository) IncrementFollowersCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.User{}, id, "followers_count", 1)
}

func (r *PostgresUserRepository) DecrementFollowersCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.User{}, id, "followers_count", -1)
}

func (r *PostgresUserRepository) IncrementFollowingCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.User{}, id, "following_count", 1)
}

func (r *PostgresUserRepository) DecrementFollowingCount(ctx context.Context, id uint) error {
	return adjustCounter(r.db.WithContext(ctx), &models.User{}, id, "following_count", -1)
}

func (r *PostgresUserRepository) SetPostsCount(ctx context.Context, id uint, n int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumn("posts_count", n).Error
}

func (r *PostgresUserRepository) SetCounters(ctx context.Context, id uint, followers, following, posts int64) error {
	return r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).UpdateColumns(map[string]interface{}{
		"followers_count": followers,
		"following_count": following,
		"posts_count":     posts,
	}).Error
}

func (r *PostgresUserRepository) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Count(&count).Error
	return count, err
}

func (r *PostgresUserRepository) CountLoggedInSince(ctx context.Context, since time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.User{}).Where("last_login >= ?", since).Count(&count).Error
	return count, err
}
