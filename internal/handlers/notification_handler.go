package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notifications *services.NotificationService
}

func NewNotificationHandler(notifications *services.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.POST("/notifications/:id/read", h.MarkAsRead)
	g.POST("/notifications/mark-all-read", h.MarkAllAsRead)
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	page, err := h.notifications.List(c.Request().Context(), currentUser(c), pageFromQuery(c))
	if err != nil {
		return httpError(err)
	}
	return respondPage(c, page)
}

func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	n, err := h.notifications.UnreadCount(c.Request().Context(), currentUser(c))
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"unread_count": n})
}

func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	id, err := parseID(c, "id", "notification")
	if err != nil {
		return err
	}
	if err := h.notifications.MarkRead(c.Request().Context(), currentUser(c), id); err != nil {
		return httpError(err)
	}
	return respondMessage(c, http.StatusOK, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	n, err := h.notifications.MarkAllRead(c.Request().Context(), currentUser(c))
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, echo.Map{"marked": n})
}
