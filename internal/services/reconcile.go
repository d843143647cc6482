package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ReconcileOptions narrows a reconciliation run.
type ReconcileOptions struct {
	// DryRun reports drift without writing.
	DryRun bool
	// PostsCountOnly recounts posts_count on accounts and skips every other counter.
	PostsCountOnly bool
}

// Fix is one counter that disagreed with its rows.
type Fix struct {
	Kind  string `json:"kind"`
	ID    uint   `json:"id"`
	Field string `json:"field"`
	Was   int64  `json:"was"`
	Now   int64  `json:"now"`
}

type Report struct {
	AccountsChecked int   `json:"accounts_checked"`
	PostsChecked    int   `json:"posts_checked"`
	DryRun          bool  `json:"dry_run"`
	Fixes           []Fix `json:"fixes"`
}

// Reconciler recomputes cached counters from the relationship rows.
type Reconciler struct {
	repos *repositories.Repositories
	log   *zap.Logger
}

func NewReconciler(repos *repositories.Repositories, log *zap.Logger) *Reconciler {
	return &Reconciler{repos: repos, log: log}
}

// Run recounts every account and, unless PostsCountOnly is set, every post.
// Each entity is repaired in its own transaction; rows deleted mid-run are skipped.
func (r *Reconciler) Run(ctx context.Context, opts ReconcileOptions) (*Report, error) {
	report := &Report{DryRun: opts.DryRun, Fixes: []Fix{}}

	userIDs, err := r.repos.Users.ListUserIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("list accounts: %w", err)
	}
	for _, id := range userIDs {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		var fixes []Fix
		err := r.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
			var err error
			fixes, err = recountAccount(ctx, tx, id, opts)
			return err
		})
		if errors.Is(err, gorm.ErrRecordNotFound) {
			continue
		}
		if err != nil {
			return report, fmt.Errorf("reconcile account %d: %w", id, err)
		}
		report.AccountsChecked++
		report.Fixes = append(report.Fixes, fixes...)
	}

	if !opts.PostsCountOnly {
		postIDs, err := r.repos.Posts.ListPostIDs(ctx)
		if err != nil {
			return report, fmt.Errorf("list posts: %w", err)
		}
		for _, id := range postIDs {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			var fixes []Fix
			err := r.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
				var err error
				fixes, err = recountPost(ctx, tx, id, opts.DryRun)
				return err
			})
			if errors.Is(err, gorm.ErrRecordNotFound) {
				continue
			}
			if err != nil {
				return report, fmt.Errorf("reconcile post %d: %w", id, err)
			}
			report.PostsChecked++
			report.Fixes = append(report.Fixes, fixes...)
		}
	}

	r.log.Info("counter reconciliation finished",
		zap.Bool("dry_run", opts.DryRun),
		zap.Int("accounts", report.AccountsChecked),
		zap.Int("posts", report.PostsChecked),
		zap.Int("fixes", len(report.Fixes)))
	return report, nil
}

func recountAccount(ctx context.Context, tx *repositories.Repositories, id uint, opts ReconcileOptions) ([]Fix, error) {
	user, err := tx.Users.GetUserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	posts, err := tx.Posts.CountActiveByAuthor(ctx, id)
	if err != nil {
		return nil, err
	}
	followers, following := user.FollowersCount, user.FollowingCount
	if !opts.PostsCountOnly {
		if followers, err = tx.Follows.GetFollowersCount(ctx, id); err != nil {
			return nil, err
		}
		if following, err = tx.Follows.GetFollowingCount(ctx, id); err != nil {
			return nil, err
		}
	}

	var fixes []Fix
	fixes = appendFix(fixes, "account", id, "followers_count", user.FollowersCount, followers)
	fixes = appendFix(fixes, "account", id, "following_count", user.FollowingCount, following)
	fixes = appendFix(fixes, "account", id, "posts_count", user.PostsCount, posts)
	if len(fixes) == 0 || opts.DryRun {
		return fixes, nil
	}
	return fixes, tx.Users.SetCounters(ctx, id, followers, following, posts)
}

func recountPost(ctx context.Context, tx *repositories.Repositories, id uint, dryRun bool) ([]Fix, error) {
	post, err := tx.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, err
	}
	likes, err := tx.Likes.GetLikesCountByPostID(ctx, id)
	if err != nil {
		return nil, err
	}
	comments, err := tx.Comments.CountActiveByPost(ctx, id)
	if err != nil {
		return nil, err
	}

	var fixes []Fix
	fixes = appendFix(fixes, "post", id, "like_count", post.LikeCount, likes)
	fixes = appendFix(fixes, "post", id, "comment_count", post.CommentCount, comments)
	if len(fixes) == 0 || dryRun {
		return fixes, nil
	}
	return fixes, tx.Posts.SetCounters(ctx, id, likes, comments)
}

func appendFix(fixes []Fix, kind string, id uint, field string, was, now int64) []Fix {
	if was == now {
		return fixes
	}
	return append(fixes, Fix{Kind: kind, ID: id, Field: field, Was: was, Now: now})
}
