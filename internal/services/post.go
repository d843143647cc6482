package services

import (
	"context"
	"fmt"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/media"
	"github.com/anonto42/nano-social/backend/validators"
	"go.uber.org/zap"
)

const postImageFolder = "posts"

type PostService struct {
	repos  *repositories.Repositories
	media  media.Host
	assets *assetCleaner
	log    *zap.Logger
}

func NewPostService(repos *repositories.Repositories, host media.Host, assets *assetCleaner, log *zap.Logger) *PostService {
	return &PostService{repos: repos, media: host, assets: assets, log: log}
}

// Create stores a new active post for actor, uploading img first when present.
func (s *PostService) Create(ctx context.Context, actor *models.User, req models.CreatePostRequest, img *media.Image) (*models.Post, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	content := cleanText(req.Content)
	if content == "" {
		return nil, apperr.Field("content", "This field may not be blank.")
	}
	category := req.Category
	if category == "" {
		category = models.CategoryGeneral
	}

	post := &models.Post{
		Content:  content,
		AuthorID: actor.ID,
		Category: category,
		IsActive: true,
	}
	if img != nil {
		if err := checkImage("image", img); err != nil {
			return nil, err
		}
		url, err := upload(ctx, s.media, postImageFolder, img)
		if err != nil {
			return nil, err
		}
		post.ImageURL = url
	}

	err := s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := tx.Posts.CreatePost(ctx, post); err != nil {
			return err
		}
		return recountPosts(ctx, tx, actor.ID)
	})
	if err != nil {
		s.assets.Discard(ctx, post.ImageURL)
		return nil, fmt.Errorf("create post: %w", err)
	}

	post.Author = actor
	return post, nil
}

// Get returns a post. Inactive posts are visible only to their author and admins.
func (s *PostService) Get(ctx context.Context, viewer *models.User, id uint) (*models.Post, error) {
	post, err := s.repos.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if !post.IsActive && !policy.Allows(viewer, post, policy.OwnerOrAdmin...) {
		return nil, apperr.NotFound("Post not found")
	}
	if err := s.enrichLiked(ctx, viewer, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

// Update applies a partial edit. The author or an admin may edit; a new image replaces the old one.
func (s *PostService) Update(ctx context.Context, actor *models.User, id uint, req models.UpdatePostRequest, img *media.Image) (*models.Post, error) {
	post, err := s.repos.Posts.GetPostByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "Post not found")
	}
	if err := policy.Check(actor, post, "You can only edit your own posts.", policy.OwnerOrAdmin...); err != nil {
		return nil, err
	}
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	if req.Content != nil {
		content := cleanText(*req.Content)
		if content == "" {
			return nil, apperr.Field("content", "This field may not be blank.")
		}
		fields["content"] = content
	}
	if req.Category != nil {
		fields["category"] = *req.Category
	}
	activeChanged := req.IsActive != nil && *req.IsActive != post.IsActive
	if activeChanged {
		fields["is_active"] = *req.IsActive
	}

	var newImage, staleImage string
	switch {
	case img != nil:
		if err := checkImage("image", img); err != nil {
			return nil, err
		}
		newImage, err = upload(ctx, s.media, postImageFolder, img)
		if err != nil {
			return nil, err
		}
		fields["image_url"] = newImage
		staleImage = post.ImageURL
	case req.RemoveImage && post.ImageURL != "":
		fields["image_url"] = ""
		staleImage = post.ImageURL
	}

	if len(fields) > 0 {
		err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
			if err := tx.Posts.UpdateFields(ctx, post.ID, fields); err != nil {
				return err
			}
			if activeChanged {
				return recountPosts(ctx, tx, post.AuthorID)
			}
			return nil
		})
		if err != nil {
			s.assets.Discard(ctx, newImage)
			return nil, fmt.Errorf("update post %d: %w", post.ID, err)
		}
		s.assets.Discard(ctx, staleImage)
	}

	return s.Get(ctx, actor, post.ID)
}

// Delete removes a post with its likes, comments and notifications.
func (s *PostService) Delete(ctx context.Context, actor *models.User, id uint) error {
	post, err := s.repos.Posts.GetPostByID(ctx, id)
	if err != nil {
		return notFound(err, "Post not found")
	}
	if err := policy.Check(actor, post, "You can only delete your own posts.", policy.OwnerOrAdmin...); err != nil {
		return err
	}

	err = s.repos.Transaction(ctx, func(tx *repositories.Repositories) error {
		if err := cascadeDeletePost(ctx, tx, post.ID); err != nil {
			return err
		}
		return recountPosts(ctx, tx, post.AuthorID)
	})
	if err != nil {
		return fmt.Errorf("delete post %d: %w", post.ID, err)
	}
	s.assets.Discard(ctx, post.ImageURL)
	return nil
}

// List returns active posts, newest first.
func (s *PostService) List(ctx context.Context, viewer *models.User, page models.PageRequest) (models.Page[models.Post], error) {
	posts, total, err := s.repos.Posts.ListActivePosts(ctx, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return s.page(ctx, viewer, posts, page, total)
}

func (s *PostService) ListByAuthor(ctx context.Context, viewer *models.User, authorID uint, page models.PageRequest) (models.Page[models.Post], error) {
	if _, err := s.repos.Users.GetActiveUserByID(ctx, authorID); err != nil {
		return models.Page[models.Post]{}, notFound(err, "User not found")
	}
	posts, total, err := s.repos.Posts.ListActivePostsByAuthors(ctx, []uint{authorID}, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return s.page(ctx, viewer, posts, page, total)
}

// Feed returns active posts by the accounts viewer follows plus viewer's own.
// A viewer who follows nobody gets the global list instead.
func (s *PostService) Feed(ctx context.Context, viewer *models.User, page models.PageRequest) (models.Page[models.Post], error) {
	following, err := s.repos.Follows.GetFollowingIDs(ctx, viewer.ID)
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	if len(following) == 0 {
		return s.List(ctx, viewer, page)
	}
	authors := append(following, viewer.ID)
	posts, total, err := s.repos.Posts.ListActivePostsByAuthors(ctx, authors, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.Post]{}, err
	}
	return s.page(ctx, viewer, posts, page, total)
}

func (s *PostService) page(ctx context.Context, viewer *models.User, posts []models.Post, page models.PageRequest, total int64) (models.Page[models.Post], error) {
	refs := make([]*models.Post, len(posts))
	for i := range posts {
		refs[i] = &posts[i]
	}
	if err := s.enrichLiked(ctx, viewer, refs); err != nil {
		return models.Page[models.Post]{}, err
	}
	return models.NewPage(posts, page, total), nil
}

// enrichLiked sets IsLiked for viewer. Anonymous viewers see false everywhere.
func (s *PostService) enrichLiked(ctx context.Context, viewer *models.User, posts []*models.Post) error {
	if viewer == nil || len(posts) == 0 {
		return nil
	}
	ids := make([]uint, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
	}
	liked, err := s.repos.Likes.LikedPostIDs(ctx, viewer.ID, ids)
	if err != nil {
		return err
	}
	for _, p := range posts {
		p.IsLiked = liked[p.ID]
	}
	return nil
}

// recountPosts sets posts_count from the number of active posts the author has.
func recountPosts(ctx context.Context, tx *repositories.Repositories, authorID uint) error {
	n, err := tx.Posts.CountActiveByAuthor(ctx, authorID)
	if err != nil {
		return err
	}
	return tx.Users.SetPostsCount(ctx, authorID, n)
}

func cascadeDeletePost(ctx context.Context, tx *repositories.Repositories, postID uint) error {
	if err := tx.Likes.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if err := tx.Comments.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	if err := tx.Notifications.DeleteByPost(ctx, postID); err != nil {
		return err
	}
	return tx.Posts.DeletePost(ctx, postID)
}
