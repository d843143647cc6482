package router

import (
	"context"

	"github.com/anonto42/nano-social/backend/internal/handlers"
	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// Deps is what the HTTP surface needs from the rest of the application.
type Deps struct {
	Services *services.Services
	Users    repositories.UserRepository
	Tokens   middleware.TokenParser
	Ping     func(ctx context.Context) error
	Log      *zap.Logger
}

// SetupRoutes configures all application routes under /api/v1
func SetupRoutes(e *echo.Echo, d Deps) {
	svc := d.Services
	requireAuth := middleware.JWTAuthMiddleware(d.Tokens, d.Users)

	api := e.Group("/api/v1")
	api.GET("/health", handlers.HealthCheck(d.Ping))

	// --- Unprotected routes for authentication ---
	handlers.NewAuthHandler(svc.Users).RegisterAuthRoutes(api.Group("/auth"), requireAuth)

	// --- Protected routes (require JWT authentication) ---
	protected := api.Group("", requireAuth)
	handlers.NewUserHandler(svc.Users, svc.Posts).RegisterUserRoutes(protected)
	handlers.NewFollowHandler(svc.Follows).RegisterFollowRoutes(protected)
	handlers.NewPostHandler(svc.Posts).RegisterPostRoutes(protected)
	handlers.NewCommentHandler(svc.Comments).RegisterCommentRoutes(protected)
	handlers.NewLikeHandler(svc.Likes).RegisterLikeRoutes(protected)
	handlers.NewNotificationHandler(svc.Notifications).RegisterNotificationRoutes(protected)

	admin := api.Group("/admin", requireAuth, middleware.RequireAdmin())
	handlers.NewAdminHandler(svc.Admin).RegisterAdminRoutes(admin)

	if d.Log != nil {
		d.Log.Info("routes configured", zap.Int("count", len(e.Routes())))
	}
}
