package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/validators"
	"go.uber.org/zap"
)

type CommentService struct {
	repos    *repositories.Repositories
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewCommentService(repos *repositories.Repositories, notifier *notify.Notifier, log *zap.Logger) *CommentService {
	return &CommentService{repos: repos, notifier: notifier, log: log}
}

// Create adds a comment to an active post, bumps comment_count and notifies the author unless actor is the author.
func (s *CommentService) Create(ctx context.Context, actor *models.User, postID uint, req models.CreateCommentRequest) (*models.Comment, error) {
	post, err := s.repos.Posts.GetActivePostByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	content := cleanText(req.Content)
	if content == "" {
		return nil, apperr.Field("content", "This field may not be blank.")
	}

	comment := &models.Comment{
		Content:  content,
		AuthorID: actor.ID,
		PostID:   post.ID,
		IsActive: true,
	}
	var notification *models.Notification
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := tx.Comments.CreateComment(ctx, comment); err != nil {
			return err
		}
		if err := tx.Posts.IncrementCommentCount(ctx, post.ID); err != nil {
			return err
		}
		var err error
		notification, err = s.notifier.Record(ctx, tx, notify.Event{
			Type:        models.NotificationComment,
			Sender:      actor,
			RecipientID: post.AuthorID,
			PostID:      &post.ID,
		})
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("comment on post %d: %w", post.ID, err)
	}

	s.notifier.Deliver(ctx, notification)
	comment.Author = actor
	return comment, nil
}

// Delete soft-deletes a comment. Only its author may do so.
func (s *CommentService) Delete(ctx context.Context, actor *models.User, commentID uint) error {
	comment, err := s.repos.Comments.GetActiveCommentByID(ctx, commentID)
	if err != nil {
		return notFound(err, "Comment not found")
	}
	if err := policy.Check(actor, comment, "You can only delete your own comments.", policy.OwnerOnly...); err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		changed, err := tx.Comments.SoftDelete(ctx, comment.ID)
		if err != nil || !changed {
			return err
		}
		return tx.Posts.DecrementCommentCount(ctx, comment.PostID)
	})
	if err != nil {
		return fmt.Errorf("delete comment %d: %w", comment.ID, err)
	}
	return nil
}

func (s *CommentService) Get(ctx context.Context, commentID uint) (*models.Comment, error) {
	comment, err := s.repos.Comments.GetActiveCommentByID(ctx, commentID)
	if err != nil {
		return nil, notFound(err, "Comment not found")
	}
	return comment, nil
}

// List returns the active comments of an active post, oldest first.
func (s *CommentService) List(ctx context.Context, postID uint, page models.PageRequest) (models.Page[models.Comment], error) {
	if _, err := s.repos.Posts.GetActivePostByID(ctx, postID); err != nil {
		return models.Page[models.Comment]{}, notFound(err, "Post not found")
	}
	comments, total, err := s.repos.Comments.ListActiveByPost(ctx, postID, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.Comment]{}, err
	}
	return models.NewPage(comments, page, total), nil
}
