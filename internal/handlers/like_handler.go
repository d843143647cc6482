package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// LikeHandler handles like-related HTTP requests
type LikeHandler struct {
	likes *services.LikeService
}

func NewLikeHandler(likes *services.LikeService) *LikeHandler {
	return &LikeHandler{likes: likes}
}

// RegisterLikeRoutes registers like-related routes
func (h *LikeHandler) RegisterLikeRoutes(g *echo.Group) {
	g.POST("/posts/:id/like", h.LikePost)
	g.DELETE("/posts/:id/unlike", h.UnlikePost)
	g.GET("/posts/:id/like-status", h.GetUserLikeStatusForPost)
}

// LikePost answers 201 for a new like and 200 when the post was already liked.
func (h *LikeHandler) LikePost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	res, err := h.likes.Like(c.Request().Context(), currentUser(c), postID)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if res.Applied {
		status = http.StatusCreated
	}
	return respond(c, status, res)
}

func (h *LikeHandler) UnlikePost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	res, err := h.likes.Unlike(c.Request().Context(), currentUser(c), postID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, res)
}

func (h *LikeHandler) GetUserLikeStatusForPost(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	liked, err := h.likes.IsLiked(c.Request().Context(), currentUser(c), postID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{
		"post_id":   postID,
		"user_id":   getUserIDFromContext(c),
		"has_liked": liked,
	})
}
