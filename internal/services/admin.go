package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Stats is the platform overview shown to admins.
type Stats struct {
	TotalUsers       int64 `json:"total_users"`
	ActiveUsersToday int64 `json:"active_users_today"`
	TotalPosts       int64 `json:"total_posts"`
	ActivePosts      int64 `json:"active_posts"`
	PostsThisWeek    int64 `json:"posts_this_week"`
	TotalFollows     int64 `json:"total_follows"`
	TotalLikes       int64 `json:"total_likes"`
	TotalComments    int64 `json:"total_comments"`
}

type PostStats struct {
	Total    int64 `json:"total"`
	Active   int64 `json:"active"`
	Inactive int64 `json:"inactive"`
}

type AdminService struct {
	repos      *repositories.Repositories
	assets     *assetCleaner
	reconciler *Reconciler
	log        *zap.Logger
	now        func() time.Time
}

func NewAdminService(repos *repositories.Repositories, assets *assetCleaner, reconciler *Reconciler, log *zap.Logger) *AdminService {
	return &AdminService{repos: repos, assets: assets, reconciler: reconciler, log: log, now: time.Now}
}

func requireAdmin(actor *models.User) error {
	return policy.Check(actor, nil, "Admin access required.", policy.AdminOnly...)
}

// ListUsers returns every account, inactive ones included.
func (s *AdminService) ListUsers(ctx context.Context, actor *models.User, page models.PageRequest) (models.Page[models.User], error) {
	if err := requireAdmin(actor); err != nil {
		return models.Page[models.User]{}, err
	}
	users, total, err := s.repos.Users.ListUsers(ctx, false, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, page, total), nil
}

func (s *AdminService) Deactivate(ctx context.Context, actor *models.User, userID uint) (*models.User, error) {
	return s.setActive(ctx, actor, userID, false)
}

func (s *AdminService) Activate(ctx context.Context, actor *models.User, userID uint) (*models.User, error) {
	return s.setActive(ctx, actor, userID, true)
}

func (s *AdminService) setActive(ctx context.Context, actor *models.User, userID uint, active bool) (*models.User, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	user, err := s.repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	if !active && user.IsAdmin() {
		return nil, apperr.Validation("Cannot deactivate admin users", nil)
	}
	if err := s.repos.Users.SetActive(ctx, user.ID, active); err != nil {
		return nil, fmt.Errorf("set user %d active=%t: %w", user.ID, active, err)
	}
	user.IsActive = active
	s.log.Info("account activity changed",
		zap.Uint("admin_id", actor.ID), zap.Uint("user_id", user.ID), zap.Bool("active", active))
	return user, nil
}

// DeleteUser removes a non-admin account with everything it owns and repairs
// the counters of every account and post it touched.
func (s *AdminService) DeleteUser(ctx context.Context, actor *models.User, userID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	user, err := s.repos.Users.GetUserByID(ctx, userID)
	if err != nil {
		return notFound(err, "User not found")
	}
	if user.IsAdmin() {
		return apperr.Validation("Cannot delete admin users", nil)
	}

	images := []string{user.AvatarURL}
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		followers, err := tx.Follows.GetFollowerIDs(ctx, user.ID)
		if err != nil {
			return err
		}
		following, err := tx.Follows.GetFollowingIDs(ctx, user.ID)
		if err != nil {
			return err
		}
		liked, err := tx.Likes.PostIDsByUser(ctx, user.ID)
		if err != nil {
			return err
		}
		commented, err := tx.Comments.ActivePostIDsByAuthor(ctx, user.ID)
		if err != nil {
			return err
		}

		own, err := tx.Posts.GetPostsByAuthor(ctx, user.ID)
		if err != nil {
			return err
		}
		deleted := make(map[uint]bool, len(own))
		for _, p := range own {
			if err := cascadeDeletePost(ctx, tx, p.ID); err != nil {
				return err
			}
			deleted[p.ID] = true
			images = append(images, p.ImageURL)
		}

		if err := tx.Likes.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Comments.DeleteByAuthor(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Notifications.DeleteByUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Follows.DeleteAllForUser(ctx, user.ID); err != nil {
			return err
		}
		if err := tx.Users.DeleteUser(ctx, user.ID); err != nil {
			return err
		}

		for _, id := range uniqueIDs(followers, following) {
			if _, err := recountAccount(ctx, tx, id, ReconcileOptions{}); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		for _, id := range uniqueIDs(liked, commented) {
			if deleted[id] {
				continue
			}
			if _, err := recountPost(ctx, tx, id, false); err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("delete user %d: %w", user.ID, err)
	}

	s.log.Info("account deleted", zap.Uint("admin_id", actor.ID), zap.Uint("user_id", user.ID))
	s.assets.Discard(ctx, images...)
	return nil
}

// ListPosts returns every post, inactive ones included, with totals.
func (s *AdminService) ListPosts(ctx context.Context, actor *models.User, page models.PageRequest) (models.Page[models.Post], *PostStats, error) {
	if err := requireAdmin(actor); err != nil {
		return models.Page[models.Post]{}, nil, err
	}
	posts, total, err := s.repos.Posts.ListAllPosts(ctx, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.Post]{}, nil, err
	}
	active, err := s.repos.Posts.CountActivePosts(ctx)
	if err != nil {
		return models.Page[models.Post]{}, nil, err
	}
	stats := &PostStats{Total: total, Active: active, Inactive: total - active}
	return models.NewPage(posts, page, total), stats, nil
}

// ModeratePost hides a post from everyone but its author and admins.
func (s *AdminService) ModeratePost(ctx context.Context, actor *models.User, postID uint) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	post, err := s.repos.Posts.GetPostByID(ctx, postID)
	if err != nil {
		return notFound(err, "Post not found")
	}
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := tx.Posts.UpdateFields(ctx, post.ID, map[string]interface{}{"is_active": false}); err != nil {
			return err
		}
		return recountPosts(ctx, tx, post.AuthorID)
	})
	if err != nil {
		return fmt.Errorf("moderate post %d: %w", post.ID, err)
	}
	s.log.Info("post moderated", zap.Uint("admin_id", actor.ID), zap.Uint("post_id", post.ID))
	return nil
}

func (s *AdminService) Stats(ctx context.Context, actor *models.User) (*Stats, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	now := s.now()
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	weekAgo := now.AddDate(0, 0, -7)

	var (
		stats Stats
		err   error
	)
	counts := []struct {
		dst *int64
		fn  func() (int64, error)
	}{
		{&stats.TotalUsers, func() (int64, error) { return s.repos.Users.CountUsers(ctx) }},
		{&stats.ActiveUsersToday, func() (int64, error) { return s.repos.Users.CountLoggedInSince(ctx, today) }},
		{&stats.TotalPosts, func() (int64, error) { return s.repos.Posts.CountPosts(ctx) }},
		{&stats.ActivePosts, func() (int64, error) { return s.repos.Posts.CountActivePosts(ctx) }},
		{&stats.PostsThisWeek, func() (int64, error) { return s.repos.Posts.CountCreatedSince(ctx, weekAgo) }},
		{&stats.TotalFollows, func() (int64, error) { return s.repos.Follows.CountFollows(ctx) }},
		{&stats.TotalLikes, func() (int64, error) { return s.repos.Likes.CountLikes(ctx) }},
		{&stats.TotalComments, func() (int64, error) { return s.repos.Comments.CountComments(ctx) }},
	}
	for _, c := range counts {
		if *c.dst, err = c.fn(); err != nil {
			return nil, fmt.Errorf("collect stats: %w", err)
		}
	}
	return &stats, nil
}

func (s *AdminService) Reconcile(ctx context.Context, actor *models.User, opts ReconcileOptions) (*Report, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.reconciler.Run(ctx, opts)
}

func uniqueIDs(lists ...[]uint) []uint {
	seen := map[uint]bool{}
	var out []uint
	for _, list := range lists {
		for _, id := range list {
			if !seen[id] {
				seen[id] = true
				out = append(out, id)
			}
		}
	}
	return out
}
