package repositories

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/models"
	"gorm.io/gorm"
)

// Repositories bundles every store over one gorm handle so a social action can
// mutate rows, counters and notifications inside a single transaction.
type Repositories struct {
	db *gorm.DB

	Users         UserRepository
	Follows       FollowRepository
	Posts         PostRepository
	Comments      CommentRepository
	Likes         LikeRepository
	Notifications NotificationRepository
}

func New(db *gorm.DB) *Repositories {
	return &Repositories{
		db:            db,
		Users:         NewPostgresUserRepository(db),
		Follows:       NewPostgresFollowRepository(db),
		Posts:         NewPostgresPostRepository(db),
		Comments:      NewPostgresCommentRepository(db),
		Likes:         NewPostgresLikeRepository(db),
		Notifications: NewPostgresNotificationRepository(db),
	}
}

// Transaction runs fn with repositories bound to one database transaction.
// Any error returned by fn rolls the whole unit back.
func (r *Repositories) Transaction(ctx context.Context, fn func(tx *Repositories) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(New(tx))
	})
}

func (r *Repositories) DB() *gorm.DB { return r.db }

// AutoMigrate creates or updates every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Follow{},
		&models.Post{},
		&models.Comment{},
		&models.Like{},
		&models.Notification{},
	)
}

// adjustCounter applies delta to an integer column in one statement. Decrements floor at zero.
func adjustCounter(db *gorm.DB, model interface{}, id uint, column string, delta int) error {
	if delta == 0 {
		return nil
	}
	expr := gorm.Expr(column+" + ?", delta)
	if delta < 0 {
		expr = gorm.Expr("CASE WHEN "+column+" >= ? THEN "+column+" - ? ELSE 0 END", -delta, -delta)
	}
	res := db.Model(model).Where("id = ?", id).UpdateColumn(column, expr)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
