package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	users *services.UserService
	posts *services.PostService
}

func NewUserHandler(users *services.UserService, posts *services.PostService) *UserHandler {
	return &UserHandler{users: users, posts: posts}
}

// RegisterUserRoutes registers profile, listing and search routes
func (h *UserHandler) RegisterUserRoutes(g *echo.Group) {
	g.GET("/users/me", h.GetMe)
	g.PATCH("/users/me", h.UpdateMe)
	g.PUT("/users/me", h.UpdateMe)
	g.GET("/users", h.ListUsers)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/:id/posts", h.GetUserPosts)
}

func (h *UserHandler) GetMe(c echo.Context) error {
	user, err := h.users.Me(c.Request().Context(), currentUser(c))
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, user)
}

// UpdateMe accepts JSON or multipart with an optional avatar file.
func (h *UserHandler) UpdateMe(c echo.Context) error {
	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}
	avatar, err := readImage(c, "avatar")
	if err != nil {
		return err
	}

	user, err := h.users.UpdateMe(c.Request().Context(), currentUser(c), req, avatar)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, user)
}

func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	profile, err := h.users.Profile(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, profile)
}

func (h *UserHandler) ListUsers(c echo.Context) error {
	page, err := h.users.List(c.Request().Context(), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

// SearchUsers matches ?q= against usernames, names and emails.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	page, err := h.users.Search(c.Request().Context(), c.QueryParam("q"), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

func (h *UserHandler) GetUserPosts(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	page, err := h.posts.ListByAuthor(c.Request().Context(), currentUser(c), id, pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}
