package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts and the feed
type PostHandler struct {
	posts *services.PostService
}

func NewPostHandler(posts *services.PostService) *PostHandler {
	return &PostHandler{posts: posts}
}

// RegisterPostRoutes registers post-related routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.GET("/posts", h.GetPosts)
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:id", h.GetPost)
	g.PUT("/posts/:id", h.UpdatePost)
	g.PATCH("/posts/:id", h.UpdatePost)
	g.DELETE("/posts/:id", h.DeletePost)
	g.GET("/feed", h.GetFeed)
}

// CreatePost accepts JSON or multipart with an optional image file.
func (h *PostHandler) CreatePost(c echo.Context) error {
	var req models.CreatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}
	img, err := readImage(c, "image")
	if err != nil {
		return err
	}

	post, err := h.posts.Create(c.Request().Context(), currentUser(c), req, img)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, post)
}

func (h *PostHandler) GetPost(c echo.Context) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	post, err := h.posts.Get(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, post)
}

// GetPosts lists active posts, newest first.
func (h *PostHandler) GetPosts(c echo.Context) error {
	page, err := h.posts.List(c.Request().Context(), currentUser(c), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

// UpdatePost serves both PUT and PATCH; omitted fields are left as they are.
func (h *PostHandler) UpdatePost(c echo.Context) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	var req models.UpdatePostRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}
	img, err := readImage(c, "image")
	if err != nil {
		return err
	}

	post, err := h.posts.Update(c.Request().Context(), currentUser(c), id, req, img)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, post)
}

func (h *PostHandler) DeletePost(c echo.Context) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	if err := h.posts.Delete(c.Request().Context(), currentUser(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetFeed returns posts from followed accounts plus the caller's own.
func (h *PostHandler) GetFeed(c echo.Context) error {
	page, err := h.posts.Feed(c.Request().Context(), currentUser(c), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}
