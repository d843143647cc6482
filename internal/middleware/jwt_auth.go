package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/policy"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

const (
	userKey   = "user"
	claimsKey = "claims"
)

// TokenParser validates access tokens.
type TokenParser interface {
	Parse(ctx context.Context, token string) (*auth.Claims, error)
}

// JWTAuthMiddleware checks the bearer token and loads the active account it names.
func JWTAuthMiddleware(tokens TokenParser, users repositories.UserRepository) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenString, err := bearerToken(c.Request())
			if err != nil {
				return err
			}

			ctx := c.Request().Context()
			claims, err := tokens.Parse(ctx, tokenString)
			if err != nil {
				if errors.Is(err, auth.ErrRevokedToken) {
					return unauthorized("Token has been revoked")
				}
				return unauthorized("Invalid or expired token")
			}

			user, err := users.GetActiveUserByID(ctx, claims.UserID)
			if err != nil {
				return unauthorized("User not found or inactive")
			}

			c.Set(userKey, user)
			c.Set(claimsKey, claims)
			return next(c)
		}
	}
}

// RequireAdmin rejects authenticated non-admins. It must run after JWTAuthMiddleware.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !policy.Allows(CurrentUser(c), nil, policy.AdminOnly...) {
				return echo.NewHTTPError(http.StatusForbidden, echo.Map{
					"success": false,
					"message": "Admin access required.",
				})
			}
			return next(c)
		}
	}
}

// CurrentUser returns the account loaded by JWTAuthMiddleware, or nil.
func CurrentUser(c echo.Context) *models.User {
	user, _ := c.Get(userKey).(*models.User)
	return user
}

func CurrentClaims(c echo.Context) *auth.Claims {
	claims, _ := c.Get(claimsKey).(*auth.Claims)
	return claims
}

func bearerToken(r *http.Request) (string, error) {
	authHeader := r.Header.Get(echo.HeaderAuthorization)
	if authHeader == "" {
		return "", unauthorized("Missing Authorization header")
	}
	parts := strings.Fields(authHeader)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", unauthorized("Authorization header must be in Bearer format")
	}
	return parts[1], nil
}

func unauthorized(message string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusUnauthorized, echo.Map{
		"success": false,
		"message": message,
	})
}
