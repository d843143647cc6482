package router_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/internal/router"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/internal/testutil"
	"github.com/anonto42/nano-social/backend/validators"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	Success bool              `json:"success"`
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Errors  map[string]string `json:"errors"`
}

type server struct {
	e *echo.Echo
}

func newServer(t *testing.T) *server {
	t.Helper()
	log := zap.NewNop()
	repos := repositories.New(testutil.NewDB(t))
	tokens := auth.NewTokenManager("router-secret", time.Hour, auth.NewBlacklist(nil, log))

	e := echo.New()
	e.Validator = validators.NewValidator()
	router.SetupRoutes(e, router.Deps{
		Services: services.New(services.Deps{Repos: repos, Tokens: tokens, Log: log}),
		Users:    repos.Users,
		Tokens:   tokens,
		Ping:     func(context.Context) error { return nil },
		Log:      log,
	})
	return &server{e: e}
}

func (s *server) do(t *testing.T, method, path, token string, body interface{}) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var env envelope
	if rec.Body.Len() > 0 {
		_ = json.Unmarshal(rec.Body.Bytes(), &env)
	}
	return rec, env
}

func (s *server) signUp(t *testing.T, username string) (uint, string) {
	t.Helper()
	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", echo.Map{
		"username": username,
		"email":    username + "@example.com",
		"password": "correct-horse",
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var res struct {
		User  models.User `json:"user"`
		Token string      `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))
	require.NotEmpty(t, res.Token)
	return res.User.ID, res.Token
}

func TestHealth(t *testing.T) {
	s := newServer(t)
	rec, _ := s.do(t, http.MethodGet, "/api/v1/health", "", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"up"`)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newServer(t)

	rec, env := s.do(t, http.MethodGet, "/api/v1/users/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, env.Success)

	rec, env = s.do(t, http.MethodGet, "/api/v1/feed", "not-a-token", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid or expired token", env.Message)
}

func TestLoginAndLogout(t *testing.T) {
	s := newServer(t)
	s.signUp(t, "alice")

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/login", "", echo.Map{
		"username_or_email": "alice",
		"password":          "wrong-password",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid credentials", env.Message)

	rec, env = s.do(t, http.MethodPost, "/api/v1/auth/login", "", echo.Map{
		"username_or_email": "alice@example.com",
		"password":          "correct-horse",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var res struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &res))

	rec, _ = s.do(t, http.MethodPost, "/api/v1/auth/logout", res.Token, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, "/api/v1/users/me", res.Token, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Token has been revoked", env.Message)
}

func TestRegisterValidationReturnsFieldErrors(t *testing.T) {
	s := newServer(t)
	s.signUp(t, "alice")

	rec, env := s.do(t, http.MethodPost, "/api/v1/auth/register", "", echo.Map{
		"username": "alice",
		"email":    "other@example.com",
		"password": "correct-horse",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, env.Errors, "username")
}

func TestPostLikeFlow(t *testing.T) {
	s := newServer(t)
	_, aliceToken := s.signUp(t, "alice")
	_, bobToken := s.signUp(t, "bob")

	rec, env := s.do(t, http.MethodPost, "/api/v1/posts", aliceToken, echo.Map{"content": "hello world"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var post models.Post
	require.NoError(t, json.Unmarshal(env.Data, &post))

	likePath := fmt.Sprintf("/api/v1/posts/%d/like", post.ID)
	rec, _ = s.do(t, http.MethodPost, likePath, bobToken, nil)
	assert.Equal(t, http.StatusCreated, rec.Code)
	rec, _ = s.do(t, http.MethodPost, likePath, bobToken, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, env = s.do(t, http.MethodGet, fmt.Sprintf("/api/v1/posts/%d", post.ID), bobToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &post))
	assert.EqualValues(t, 1, post.LikeCount)
	assert.True(t, post.IsLiked)

	rec, env = s.do(t, http.MethodGet, "/api/v1/notifications/unread-count", aliceToken, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"unread_count":1}`, string(env.Data))

	rec, _ = s.do(t, http.MethodPost, "/api/v1/posts/abc/like", bobToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = s.do(t, http.MethodPost, "/api/v1/posts/999/like", bobToken, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestFollowSelfIsRejected(t *testing.T) {
	s := newServer(t)
	aliceID, aliceToken := s.signUp(t, "alice")

	rec, env := s.do(t, http.MethodPost, fmt.Sprintf("/api/v1/users/%d/follow", aliceID), aliceToken, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "You cannot follow yourself", env.Message)
}

func TestAdminRoutesRequireAdmin(t *testing.T) {
	s := newServer(t)
	_, token := s.signUp(t, "alice")

	rec, env := s.do(t, http.MethodGet, "/api/v1/admin/stats", token, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "Admin access required.", env.Message)
}
