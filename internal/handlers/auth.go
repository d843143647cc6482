package handlers

import (
	"net/http"

	"github.com/anonto42/nano-social/backend/internal/middleware"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{users: users}
}

// RegisterAuthRoutes registers authentication routes. Only logout needs a token.
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group, requireAuth echo.MiddlewareFunc) {
	g.POST("/register", h.Register)
	g.POST("/login", h.Login)
	g.POST("/firebase-login", h.FirebaseLogin)
	g.POST("/logout", h.Logout, requireAuth)
}

func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	res, err := h.users.Register(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}

	message := "User registered successfully"
	if !res.User.IsActive {
		message = "Registration received. Admin accounts must be activated before login."
	}
	return c.JSON(http.StatusCreated, echo.Map{
		"success": true,
		"message": message,
		"data":    res,
	})
}

func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	res, err := h.users.Login(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, res)
}

// FirebaseLogin exchanges a Firebase ID token for an access token.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("Invalid request payload")
	}

	res, err := h.users.FirebaseLogin(c.Request().Context(), req)
	if err != nil {
		return httpError(err)
	}
	return respond(c, http.StatusOK, res)
}

func (h *AuthHandler) Logout(c echo.Context) error {
	claims := middleware.CurrentClaims(c)
	if claims == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	if err := h.users.Logout(c.Request().Context(), claims); err != nil {
		return httpError(err)
	}
	return respondMessage(c, http.StatusOK, "Successfully logged out")
}
