package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AdminHandler serves moderation and maintenance routes. The group it is registered on must require the admin role.
type AdminHandler struct {
	admin *services.AdminService
}

func NewAdminHandler(admin *services.AdminService) *AdminHandler {
	return &AdminHandler{admin: admin}
}

func (h *AdminHandler) RegisterAdminRoutes(g *echo.Group) {
	g.GET("/users", h.ListUsers)
	g.POST("/users/:id/deactivate", h.DeactivateUser)
	g.POST("/users/:id/activate", h.ActivateUser)
	g.DELETE("/users/:id", h.DeleteUser)
	g.GET("/posts", h.ListPosts)
	g.DELETE("/posts/:id", h.ModeratePost)
	g.GET("/stats", h.Stats)
	g.POST("/reconcile", h.Reconcile)
}

func (h *AdminHandler) ListUsers(c echo.Context) error {
	page, err := h.admin.ListUsers(c.Request().Context(), currentUser(c), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

func (h *AdminHandler) DeactivateUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.admin.Deactivate(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User " + user.Username + " has been deactivated",
		"data":    user,
	})
}

func (h *AdminHandler) ActivateUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	user, err := h.admin.Activate(c.Request().Context(), currentUser(c), id)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "User " + user.Username + " has been activated",
		"data":    user,
	})
}

func (h *AdminHandler) DeleteUser(c echo.Context) error {
	id, err := parseID(c, "id", "user")
	if err != nil {
		return err
	}
	if err := h.admin.DeleteUser(c.Request().Context(), currentUser(c), id); err != nil {
		return httpError(err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *AdminHandler) ListPosts(c echo.Context) error {
	page, stats, err := h.admin.ListPosts(c.Request().Context(), currentUser(c), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data":    page.Items,
		"meta":    page.Meta,
		"stats":   stats,
	})
}

// ModeratePost deactivates the post rather than deleting it.
func (h *AdminHandler) ModeratePost(c echo.Context) error {
	id, err := parseID(c, "id", "post")
	if err != nil {
		return err
	}
	if err := h.admin.ModeratePost(c.Request().Context(), currentUser(c), id); err != nil {
		return httpError(err)
	}
	return respondMessage(c, http.StatusOK, "Post has been deactivated")
}

func (h *AdminHandler) Stats(c echo.Context) error {
	stats, err := h.admin.Stats(c.Request().Context(), currentUser(c))
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, stats)
}

// Reconcile recounts cached counters. ?dry_run=true reports without writing; ?posts_only=true limits it to posts_count.
func (h *AdminHandler) Reconcile(c echo.Context) error {
	dryRun, _ := strconv.ParseBool(c.QueryParam("dry_run"))
	postsOnly, _ := strconv.ParseBool(c.QueryParam("posts_only"))

	report, err := h.admin.Reconcile(c.Request().Context(), currentUser(c), services.ReconcileOptions{
		DryRun:         dryRun,
		PostsCountOnly: postsOnly,
	})
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, report)
}
