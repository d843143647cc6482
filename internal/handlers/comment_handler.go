package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles comment-related HTTP requests
type CommentHandler struct {
	comments *services.CommentService
}

func NewCommentHandler(comments *services.CommentService) *CommentHandler {
	return &CommentHandler{comments: comments}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.GET("/posts/:id/comments", h.GetComments)
	g.POST("/posts/:id/comments", h.CreateComment)
	g.GET("/comments/:id", h.GetComment)
	g.DELETE("/comments/:id", h.DeleteComment)
}

func (h *CommentHandler) CreateComment(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	comment, err := h.comments.Create(c.Request().Context(), currentUser(c), postID, req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusCreated, comment)
}

// GetComments lists a post's comments, oldest first.
func (h *CommentHandler) GetComments(c echo.Context) error {
	postID, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	page, err := h.comments.List(c.Request().Context(), postID, pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseID(c, "id", "comment")
	if err != nil {
		return err
	}
	comment, err := h.comments.Get(c.Request().Context(), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, comment)
}

func (h *CommentHandler) DeleteComment(c echo.Context) error {
	id, err := parseID(c, "id", "comment")
	if err != nil {
		return err
	}
	if err := h.comments.Delete(c.Request().Context(), currentUser(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
