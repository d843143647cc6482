package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/anonto42/nano-social/backend/internal/apperr"
	"github.com/anonto42/nano-social/backend/internal/auth"
	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/anonto42/nano-social/backend/internal/repositories"
	"github.com/anonto42/nano-social/backend/pkg/media"
	"github.com/anonto42/nano-social/backend/validators"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	avatarFolder        = "avatars"
	minSearchLength     = 2
	maxUsernameAttempts = 50
)

// AuthResult is a signed-in account with its access token.
// Token is empty when the account was created inactive.
type AuthResult struct {
	User      *models.User `json:"user"`
	Token     string       `json:"token,omitempty"`
	ExpiresAt *time.Time   `json:"expires_at,omitempty"`
}

type UserService struct {
	repos    *repositories.Repositories
	media    media.Host
	assets   *assetCleaner
	tokens   *auth.TokenManager
	identity IdentityVerifier
	log      *zap.Logger
}

func NewUserService(repos *repositories.Repositories, host media.Host, assets *assetCleaner, tokens *auth.TokenManager, identity IdentityVerifier, log *zap.Logger) *UserService {
	return &UserService{repos: repos, media: host, assets: assets, tokens: tokens, identity: identity, log: log}
}

// Register creates an account. Self-registered admins start inactive and get no token.
func (s *UserService) Register(ctx context.Context, req models.RegisterRequest) (*AuthResult, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if err := s.checkUnique(ctx, req.Username, req.Email, 0); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	user := &models.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  hash,
		Role:      req.Role,
		IsActive:  req.Role != models.RoleAdmin,
	}
	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("A user with that username or email already exists.")
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if !user.IsActive {
		return &AuthResult{User: user}, nil
	}
	return s.issue(user)
}

// Login accepts a username or an email address.
func (s *UserService) Login(ctx context.Context, req models.LoginRequest) (*AuthResult, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	ident := strings.TrimSpace(req.UsernameOrEmail)
	user, err := s.repos.Users.GetUserByUsername(ctx, ident)
	if errors.Is(err, gorm.ErrRecordNotFound) && strings.Contains(ident, "@") {
		user, err = s.repos.Users.GetUserByEmail(ctx, ident)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.Unauthenticated("Invalid credentials")
		}
		return nil, err
	}
	if !auth.CheckPassword(user.Password, req.Password) {
		return nil, apperr.Unauthenticated("Invalid credentials")
	}
	if !user.IsActive {
		return nil, apperr.Permission("User account is disabled")
	}
	return s.signIn(ctx, user)
}

// FirebaseLogin exchanges a verified Firebase ID token for an access token,
// linking by email or creating the account on first sign-in.
func (s *UserService) FirebaseLogin(ctx context.Context, req models.FirebaseLoginRequest) (*AuthResult, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}
	if s.identity == nil {
		return nil, apperr.Upstream("Firebase sign-in is not configured", nil)
	}
	id, err := s.identity.VerifyIDToken(ctx, req.IDToken)
	if err != nil {
		s.log.Info("firebase token rejected", zap.Error(err))
		return nil, apperr.Unauthenticated("Invalid or expired Firebase ID token")
	}

	user, err := s.repos.Users.GetUserByFirebaseUID(ctx, id.UID)
	switch {
	case err == nil:
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, err
	case id.Email == "":
		return nil, apperr.Unauthenticated("Firebase account has no email address")
	default:
		user, err = s.linkOrCreate(ctx, id.UID, id.Email, id.Name)
		if err != nil {
			return nil, err
		}
	}
	if !user.IsActive {
		return nil, apperr.Permission("User account is disabled")
	}
	return s.signIn(ctx, user)
}

func (s *UserService) linkOrCreate(ctx context.Context, uid, email, name string) (*models.User, error) {
	user, err := s.repos.Users.GetUserByEmail(ctx, email)
	if err == nil {
		if err := s.repos.Users.UpdateFields(ctx, user.ID, map[string]interface{}{"firebase_uid": uid}); err != nil {
			return nil, fmt.Errorf("link firebase account: %w", err)
		}
		user.FirebaseUID = &uid
		return user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	username, err := s.freeUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	first, last, _ := strings.Cut(strings.TrimSpace(name), " ")
	user = &models.User{
		Username:    username,
		Email:       email,
		FirstName:   first,
		LastName:    strings.TrimSpace(last),
		Role:        models.RoleUser,
		IsActive:    true,
		FirebaseUID: &uid,
	}
	if err := s.repos.Users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("create firebase user: %w", err)
	}
	return user, nil
}

// freeUsername derives an unused username from the local part of email.
func (s *UserService) freeUsername(ctx context.Context, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '.' || r == '_' || r == '-' {
			return unicode.ToLower(r)
		}
		return -1
	}, local)
	if utf8.RuneCountInString(base) < 3 {
		base = "user" + base
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		taken, err := s.repos.Users.ExistsByUsername(ctx, candidate, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = base + strconv.Itoa(i)
	}
	return "", apperr.Conflict("Could not allocate a username")
}

func (s *UserService) signIn(ctx context.Context, user *models.User) (*AuthResult, error) {
	now := time.Now()
	if err := s.repos.Users.TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, fmt.Errorf("touch last login: %w", err)
	}
	user.LastLogin = &now
	return s.issue(user)
}

func (s *UserService) issue(user *models.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Generate(user)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &AuthResult{User: user, Token: token, ExpiresAt: &expiresAt}, nil
}

// Logout revokes the presented token until its expiry.
func (s *UserService) Logout(ctx context.Context, claims *auth.Claims) error {
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

func (s *UserService) Me(ctx context.Context, actor *models.User) (*models.User, error) {
	user, err := s.repos.Users.GetUserByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	return user, nil
}

// UpdateMe applies a partial profile edit and replaces the avatar when one is given.
func (s *UserService) UpdateMe(ctx context.Context, actor *models.User, req models.UpdateProfileRequest, avatar *media.Image) (*models.User, error) {
	if err := validators.Struct(req); err != nil {
		return nil, err
	}

	fields := map[string]interface{}{}
	var username, email string
	if req.Username != nil {
		username = strings.TrimSpace(*req.Username)
		if username == "" {
			return nil, apperr.Field("username", "This field may not be blank.")
		}
		fields["username"] = username
	}
	if req.Email != nil {
		email = strings.TrimSpace(*req.Email)
		if email == "" {
			return nil, apperr.Field("email", "This field may not be blank.")
		}
		fields["email"] = email
	}
	if err := s.checkUnique(ctx, username, email, actor.ID); err != nil {
		return nil, err
	}
	if req.FirstName != nil {
		fields["first_name"] = cleanText(*req.FirstName)
	}
	if req.LastName != nil {
		fields["last_name"] = cleanText(*req.LastName)
	}
	if req.Website != nil {
		fields["website"] = strings.TrimSpace(*req.Website)
	}
	if req.Location != nil {
		fields["location"] = cleanText(*req.Location)
	}
	if req.Bio != nil {
		fields["bio"] = cleanText(*req.Bio)
	}
	if req.Password != nil {
		hash, err := auth.HashPassword(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		fields["password"] = hash
	}

	var newAvatar, staleAvatar string
	if avatar != nil {
		if err := checkImage("avatar", avatar); err != nil {
			return nil, err
		}
		url, err := upload(ctx, s.media, avatarFolder, avatar)
		if err != nil {
			return nil, err
		}
		newAvatar, staleAvatar = url, actor.AvatarURL
		fields["avatar_url"] = url
	}

	if err := s.repos.Users.UpdateFields(ctx, actor.ID, fields); err != nil {
		s.assets.Discard(ctx, newAvatar)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperr.Conflict("A user with that username or email already exists.")
		}
		return nil, notFound(err, "User not found")
	}
	s.assets.Discard(ctx, staleAvatar)
	return s.Me(ctx, actor)
}

// checkUnique reports taken usernames and emails as field errors. Empty values are skipped.
func (s *UserService) checkUnique(ctx context.Context, username, email string, exceptID uint) error {
	fields := map[string]string{}
	if username != "" {
		taken, err := s.repos.Users.ExistsByUsername(ctx, username, exceptID)
		if err != nil {
			return err
		}
		if taken {
			fields["username"] = "A user with that username already exists."
		}
	}
	if email != "" {
		taken, err := s.repos.Users.ExistsByEmail(ctx, email, exceptID)
		if err != nil {
			return err
		}
		if taken {
			fields["email"] = "A user with that email already exists."
		}
	}
	if len(fields) > 0 {
		return apperr.Validation("Invalid input", fields)
	}
	return nil
}

// Profile returns an active account as seen by viewer.
func (s *UserService) Profile(ctx context.Context, viewer *models.User, id uint) (*models.UserProfile, error) {
	user, err := s.repos.Users.GetActiveUserByID(ctx, id)
	if err != nil {
		return nil, notFound(err, "User not found")
	}
	profile := &models.UserProfile{User: *user}
	if viewer != nil && viewer.ID != user.ID {
		profile.IsFollowing, err = s.repos.Follows.IsFollowing(ctx, viewer.ID, user.ID)
		if err != nil {
			return nil, err
		}
	}
	return profile, nil
}

func (s *UserService) List(ctx context.Context, page models.PageRequest) (models.Page[models.User], error) {
	users, total, err := s.repos.Users.ListUsers(ctx, true, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, page, total), nil
}

// Search matches active accounts. Queries shorter than two characters match nothing.
func (s *UserService) Search(ctx context.Context, query string, page models.PageRequest) (models.Page[models.User], error) {
	query = strings.TrimSpace(query)
	if utf8.RuneCountInString(query) < minSearchLength {
		return models.NewPage[models.User](nil, page, 0), nil
	}
	users, total, err := s.repos.Users.SearchUsers(ctx, query, page.Offset(), page.Limit())
	if err != nil {
		return models.Page[models.User]{}, err
	}
	return models.NewPage(users, page, total), nil
}
