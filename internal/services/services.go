// Package services implements the social actions. Each action validates and
// authorizes first, then mutates rows, counters and notifications in one
// transaction, and runs external side effects only after commit.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/anonto42/nano-social/backend/pkg/media"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const mediaTimeout = 15 * time.Second

// ActionResult describes an idempotent action. Applied is false when the action had already been done.
type ActionResult struct {
	Applied bool   `json:"applied"`
	Message string `json:"message"`
}

// IdentityVerifier checks third-party ID tokens.
type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*firebase.Identity, error)
}

type Deps struct {
	Repos    *repositories.Repositories
	Notifier *notify.Notifier
	Media    media.Host
	Tokens   *auth.TokenManager
	Identity IdentityVerifier
	Log      *zap.Logger
}

type Services struct {
	Users         *UserService
	Follows       *FollowService
	Posts         *PostService
	Comments      *CommentService
	Likes         *LikeService
	Notifications *NotificationService
	Admin         *AdminService
	Reconciler    *Reconciler
}

func New(d Deps) *Services {
	if d.Media == nil {
		d.Media = media.Disabled{}
	}
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Notifier == nil {
		d.Notifier = notify.New(nil, d.Log)
	}
	assets := &assetCleaner{host: d.Media, log: d.Log}
	reconciler := NewReconciler(d.Repos, d.Log)
	return &Services{
		Users:         NewUserService(d.Repos, d.Media, assets, d.Tokens, d.Identity, d.Log),
		Follows:       NewFollowService(d.Repos, d.Notifier, d.Log),
		Posts:         NewPostService(d.Repos, d.Media, assets, d.Log),
		Comments:      NewCommentService(d.Repos, d.Notifier, d.Log),
		Likes:         NewLikeService(d.Repos, d.Notifier, d.Log),
		Notifications: NewNotificationService(d.Repos),
		Admin:         NewAdminService(d.Repos, assets, reconciler, d.Log),
		Reconciler:    reconciler,
	}
}

// notFound maps a missing row to a NotFound error and passes anything else through.
func notFound(err error, message string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperr.NotFound(message)
	}
	return err
}

// checkImage validates an upload and phrases failures as a field error.
func checkImage(field string, img *media.Image) error {
	err := media.Validate(img)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, media.ErrTooLarge):
		return apperr.Field(field, "Image file too large ( > 2MB ).")
	case errors.Is(err, media.ErrUnsupportedType):
		return apperr.Field(field, "Only JPEG, PNG and GIF images are allowed.")
	default:
		return apperr.Field(field, err.Error())
	}
}

func upload(ctx context.Context, host media.Host, folder string, img *media.Image) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, mediaTimeout)
	defer cancel()
	url, err := host.Upload(ctx, folder, img)
	if err != nil {
		return "", apperr.Upstream("Image upload failed", err)
	}
	return url, nil
}

// assetCleaner deletes hosted images once the rows referencing them are gone.
type assetCleaner struct {
	host media.Host
	log  *zap.Logger
}

func (a *assetCleaner) Discard(ctx context.Context, urls ...string) {
	for _, url := range urls {
		if url == "" {
			continue
		}
		dctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), mediaTimeout)
		err := a.host.Delete(dctx, url)
		cancel()
		if err != nil && !errors.Is(err, media.ErrForeignURL) {
			a.log.Warn("failed to delete hosted image", zap.String("url", url), zap.Error(err))
		}
	}
}
