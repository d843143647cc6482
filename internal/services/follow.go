package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/notify"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"go.uber.org/zap"
)

type FollowService struct {
	repos    *repositories.Repositories
	notifier *notify.Notifier
	log      *zap.Logger
}

func NewFollowService(repos *repositories.Repositories, notifier *notify.Notifier, log *zap.Logger) *FollowService {
	return &FollowService{repos: repos, notifier: notifier, log: log}
}

// Follow creates the edge actor→target, bumps both counters and notifies the target.
// Following twice is reported through ActionResult, not as an error.
func (s *FollowService) Follow(ctx context.Context, actor *models.User, targetID uint) (ActionResult, error) {
	if actor.ID == targetID {
		return ActionResult{}, apperr.SelfAction("You cannot follow yourself")
	}
	target, err := s.repos.Users.GetActiveUserByID(ctx, targetID)
	if err != nil {
		return ActionResult{}, notFound(err, "User not found")
	}

	var (
		created      bool
		notification *models.Notification
	)
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		created, err = tx.Follows.CreateFollowIfAbsent(ctx, actor.ID, target.ID)
		if err != nil || !created {
			return err
		}
		if err := tx.Users.IncrementFollowingCount(ctx, actor.ID); err != nil {
			return err
		}
		if err := tx.Users.IncrementFollowersCount(ctx, target.ID); err != nil {
			return err
		}
		notification, err = s.notifier.Record(ctx, tx, notify.Event{
			Type:        models.NotificationFollow,
			Sender:      actor,
			RecipientID: target.ID,
		})
		return err
	})
	if err != nil {
		return ActionResult{}, fmt.Errorf("follow user %d: %w", target.ID, err)
	}

	if !created {
		return ActionResult{Applied: false, Message: "Already following " + target.Username}, nil
	}
	s.notifier.Deliver(ctx, notification)
	return ActionResult{Applied: true, Message: "Now following " + target.Username}, nil
}

// Unfollow removes the edge actor→target and decrements both counters.
func (s *FollowService) Unfollow(ctx context.Context, actor *models.User, targetID uint) (ActionResult, error) {
	if actor.ID == targetID {
		return ActionResult{}, apperr.SelfAction("You cannot unfollow yourself")
	}
	target, err := s.repos.Users.GetActiveUserByID(ctx, targetID)
	if err != nil {
		return ActionResult{}, notFound(err, "User not found")
	}

	var deleted bool
	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		var err error
		deleted, err = tx.Follows.DeleteFollow(ctx, actor.ID, target.ID)
		if err != nil || !deleted {
			return err
		}
		if err := tx.Users.DecrementFollowingCount(ctx, actor.ID); err != nil {
			return err
		}
		return tx.Users.DecrementFollowersCount(ctx, target.ID)
	})
	if err != nil {
		return ActionResult{}, fmt.Errorf("unfollow user %d: %w", target.ID, err)
	}

	if !deleted {
		return ActionResult{Applied: false, Message: "Not following " + target.Username}, nil
	}
	return ActionResult{Applied: true, Message: "Unfollowed " + target.Username}, nil
}

func (s *FollowService) IsFollowing(ctx context.Context, actor *models.User, targetID uint) (bool, error) {
	if _, err := s.repos.Users.GetActiveUserByID(ctx, targetID); err != nil {
		return false, notFound(err, "User not found")
	}
	return s.repos.Follows.IsFollowing(ctx, actor.ID, targetID)
}

func (s *FollowService) Followers(ctx context.Context, userID uint, page models.PageRequest) (models.Page[models.User], error) {
	if _, err := s.repos.Users.GetActiveUserByID(ctx, userID); err != nil {
		return models.Page[models.User]{}, notFound(err, "User not found")
	}
	users, total, err := s.repos.Follows.GetFollowers(ctx, userID, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, page, total), nil
}

func (s *FollowService) Following(ctx context.Context, userID uint, page models.PageRequest) (models.Page[models.User], error) {
	if _, err := s.repos.Users.GetActiveUserByID(ctx, userID); err != nil {
		return models.Page[models.User]{}, notFound(err, "User not found")
	}
	users, total, err := s.repos.Follows.GetFollowing(ctx, userID, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, page, total), nil
}
