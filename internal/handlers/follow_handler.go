package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	follows *services.FollowService
}

func NewFollowHandler(follows *services.FollowService) *FollowHandler {
	return &FollowHandler{follows: follows}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/unfollow", h.UnfollowUser)
	g.GET("/users/:id/follow-status", h.FollowStatus)
	g.GET("/users/:id/followers", h.GetFollowers)
	g.GET("/users/:id/following", h.GetFollowing)
}

// FollowUser answers 201 for a new follow and 200 when already following.
func (h *FollowHandler) FollowUser(c echo.Context) error {
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	res, err := h.follows.Follow(c.Request().Context(), currentUser(c), targetID)
	if err != nil {
		return httpError(err)
	}
	status := http.StatusOK
	if res.Applied {
		status = http.StatusCreated
	}
	return respond(c, status, res)
}

func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	res, err := h.follows.Unfollow(c.Request().Context(), currentUser(c), targetID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, res)
}

func (h *FollowHandler) FollowStatus(c echo.Context) error {
	targetID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	following, err := h.follows.IsFollowing(c.Request().Context(), currentUser(c), targetID)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"user_id": targetID, "is_following": following})
}

func (h *FollowHandler) GetFollowers(c echo.Context) error {
	userID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	page, err := h.follows.Followers(c.Request().Context(), userID, pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

func (h *FollowHandler) GetFollowing(c echo.Context) error {
	userID, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	page, err := h.follows.Following(c.Request().Context(), userID, pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}
