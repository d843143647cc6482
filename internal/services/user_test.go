package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/services"
	"github.com/anonto42/nano-social/backend/pkg/firebase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func register(t *testing.T, f *fixture, username, role string) *services.AuthResult {
	t.Helper()
	res, err := f.svc.Users.Register(f.ctx, models.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct-horse",
		Role:     role,
	})
	require.NoError(t, err)
	return res
}

func TestRegisterAndLogin(t *testing.T) {
	f := newFixture(t)
	res := register(t, f, "alice", "")
	assert.Equal(t, models.RoleUser, res.User.Role)
	assert.True(t, res.User.IsActive)
	assert.NotEmpty(t, res.Token)

	claims, err := f.tokens.Parse(f.ctx, res.Token)
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, claims.UserID)

	login, err := f.svc.Users.Login(f.ctx, models.LoginRequest{UsernameOrEmail: "ALICE@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.Equal(t, res.User.ID, login.User.ID)
	assert.NotNil(t, f.reload(t, res.User.ID).LastLogin)

	_, err = f.svc.Users.Login(f.ctx, models.LoginRequest{UsernameOrEmail: "alice", Password: "wrong-password"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
	_, err = f.svc.Users.Login(f.ctx, models.LoginRequest{UsernameOrEmail: "nobody", Password: "whatever1"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))
}

func TestRegisterAdminStartsInactive(t *testing.T) {
	f := newFixture(t)
	res := register(t, f, "boss", models.RoleAdmin)
	assert.False(t, res.User.IsActive)
	assert.Empty(t, res.Token)

	_, err := f.svc.Users.Login(f.ctx, models.LoginRequest{UsernameOrEmail: "boss", Password: "correct-horse"})
	assert.True(t, apperr.Is(err, apperr.KindPermission))
}

func TestRegisterDuplicateIsFieldError(t *testing.T) {
	f := newFixture(t)
	register(t, f, "alice", "")

	_, err := f.svc.Users.Register(f.ctx, models.RegisterRequest{
		Username: "alice", Email: "ALICE@example.com", Password: "correct-horse",
	})
	var ae *apperr.Error
	require.True(t, errors.As(err, &ae))
	assert.Equal(t, apperr.KindValidation, ae.Kind)
	assert.Contains(t, ae.Fields, "username")
	assert.Contains(t, ae.Fields, "email")
}

func TestLogoutRevokesToken(t *testing.T) {
	f := newFixture(t)
	res := register(t, f, "alice", "")
	claims, err := f.tokens.Parse(f.ctx, res.Token)
	require.NoError(t, err)

	require.NoError(t, f.svc.Users.Logout(f.ctx, claims))

	_, err = f.tokens.Parse(f.ctx, res.Token)
	assert.ErrorIs(t, err, auth.ErrRevokedToken)
}

func TestUpdateMe(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "bob")

	taken := "bob"
	_, err := f.svc.Users.UpdateMe(f.ctx, alice, models.UpdateProfileRequest{Username: &taken}, nil)
	assert.True(t, apperr.Is(err, apperr.KindValidation))

	bio := "<i>hello</i> there"
	same := "alice"
	updated, err := f.svc.Users.UpdateMe(f.ctx, alice, models.UpdateProfileRequest{Bio: &bio, Username: &same}, pngImage(t, "me.png"))
	require.NoError(t, err)
	assert.Equal(t, "hello there", updated.Bio)
	assert.Equal(t, cdnBase+"avatars/me.png", updated.AvatarURL)

	password := "new-password-1"
	_, err = f.svc.Users.UpdateMe(f.ctx, updated, models.UpdateProfileRequest{Password: &password}, pngImage(t, "me2.png"))
	require.NoError(t, err)
	assert.Equal(t, []string{cdnBase + "avatars/me.png"}, f.host.deletes)
	assert.True(t, auth.CheckPassword(f.reload(t, alice.ID).Password, "new-password-1"))
}

func TestProfileAndSearch(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	bob := f.user(t, "bob")
	_, err := f.svc.Follows.Follow(f.ctx, alice, bob.ID)
	require.NoError(t, err)

	profile, err := f.svc.Users.Profile(f.ctx, alice, bob.ID)
	require.NoError(t, err)
	assert.True(t, profile.IsFollowing)
	assert.EqualValues(t, 1, profile.FollowersCount)

	page, err := f.svc.Users.Search(f.ctx, " b ", firstPage())
	require.NoError(t, err)
	assert.NotNil(t, page.Items)
	assert.Empty(t, page.Items)

	page, err = f.svc.Users.Search(f.ctx, "bo", firstPage())
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, "bob", page.Items[0].Username)
}

type fakeVerifier struct {
	identities map[string]*firebase.Identity
}

func (v fakeVerifier) VerifyIDToken(_ context.Context, token string) (*firebase.Identity, error) {
	if id, ok := v.identities[token]; ok {
		return id, nil
	}
	return nil, errors.New("token rejected")
}

func TestFirebaseLogin(t *testing.T) {
	f := newFixture(t)
	alice := f.user(t, "alice")
	f.user(t, "newbie")

	svc := services.New(services.Deps{
		Repos:  f.repos,
		Tokens: f.tokens,
		Identity: fakeVerifier{identities: map[string]*firebase.Identity{
			"tok-alice":  {UID: "uid-alice", Email: "alice@example.com"},
			"tok-newbie": {UID: "uid-new", Email: "newbie@mail.test", Name: "New Bie"},
		}},
		Log: zap.NewNop(),
	})

	res, err := svc.Users.FirebaseLogin(f.ctx, models.FirebaseLoginRequest{IDToken: "tok-alice"})
	require.NoError(t, err)
	assert.Equal(t, alice.ID, res.User.ID)
	linked, err := f.repos.Users.GetUserByFirebaseUID(f.ctx, "uid-alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, linked.ID)

	res, err = svc.Users.FirebaseLogin(f.ctx, models.FirebaseLoginRequest{IDToken: "tok-newbie"})
	require.NoError(t, err)
	assert.Equal(t, "newbie1", res.User.Username)
	assert.Equal(t, "New", res.User.FirstName)
	assert.Equal(t, "Bie", res.User.LastName)
	assert.NotEmpty(t, res.Token)

	_, err = svc.Users.FirebaseLogin(f.ctx, models.FirebaseLoginRequest{IDToken: "forged"})
	assert.True(t, apperr.Is(err, apperr.KindUnauthenticated))

	_, err = f.svc.Users.FirebaseLogin(f.ctx, models.FirebaseLoginRequest{IDToken: "tok-alice"})
	assert.True(t, apperr.Is(err, apperr.KindUpstream))
}
