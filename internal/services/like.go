package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

type LikeService struct {
	repos    *repositories.Repositories
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewLikeService(repos *repositories.Repositories, notifier *notify.Notifier, log *zap.Logger) *LikeService {
	return &LikeService{repos: repos, notifier: notifier, log: log}
}

// Like records actor's like on an active post, bumps like_count and notifies the author unless actor is the author.
func (s *LikeService) Like(ctx context.Context, actor *models.User, postID uint) (ActionResult, error) {
	post, err := s.repos.Posts.GetActivePostByID(ctx, postID)
	if err != nil {
		return ActionResult{}, notFound(err, "Post not found")
	}

	var (
		created      bool
		notification *models.Notification
	)
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		created, err = tx.Likes.CreateLikeIfAbsent(ctx, actor.ID, post.ID)
		if err != nil || !created {
			return err
		}
		if err := tx.Posts.IncrementLikeCount(ctx, post.ID); err != nil {
			return err
		}
		notification, err = s.notifier.Record(ctx, tx, notify.Event{
			Type:        models.NotificationLike,
			Sender:      actor,
			RecipientID: post.AuthorID,
			PostID:      &post.ID,
		})
		return err
	})
	if err != nil {
		return ActionResult{}, fmt.Errorf("like post %d: %w", post.ID, err)
	}

	if !created {
		return ActionResult{Applied: false, Message: "Post already liked"}, nil
	}
	s.notifier.Deliver(ctx, notification)
	return ActionResult{Applied: true, Message: "Post liked successfully"}, nil
}

func (s *LikeService) Unlike(ctx context.Context, actor *models.User, postID uint) (ActionResult, error) {
	post, err := s.repos.Posts.GetActivePostByID(ctx, postID)
	if err != nil {
		return ActionResult{}, notFound(err, "Post not found")
	}

	var deleted bool
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		deleted, err = tx.Likes.DeleteLike(ctx, actor.ID, post.ID)
		if err != nil || !deleted {
			return err
		}
		return tx.Posts.DecrementLikeCount(ctx, post.ID)
	})
	if err != nil {
		return ActionResult{}, fmt.Errorf("unlike post %d: %w", post.ID, err)
	}

	if !deleted {
		return ActionResult{Applied: false, Message: "Post not liked"}, nil
	}
	return ActionResult{Applied: true, Message: "Post unliked successfully"}, nil
}

func (s *LikeService) IsLiked(ctx context.Context, actor *models.User, postID uint) (bool, error) {
	if _, err := s.repos.Posts.GetActivePostByID(ctx, postID); err != nil {
		return false, notFound(err, "Post not found")
	}
	return s.repos.Likes.HasUserLikedPost(ctx, actor.ID, postID)
}
