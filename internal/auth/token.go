package auth

import (
	"context"
	"errors"
	"time"

	"github.com/anonto42/nano-social/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrRevokedToken = errors.New("token has been revoked")
)

// Claims are the custom claims carried by access tokens.
type Claims struct {
	UserID uint   `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	blacklist *Blacklist
}

func NewTokenManager(secret string, ttl time.Duration, blacklist *Blacklist) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, blacklist: blacklist}
}

// Generate signs an HS256 access token for user.
func (m *TokenManager) Generate(user *models.User) (string, time.Time, error) {
	now := time.Now()
	expiresAt := now.Add(m.ttl)
	claims := &Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.Username,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Parse validates signature, expiry and revocation.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if m.blacklist != nil && claims.ID != "" && m.blacklist.Contains(ctx, claims.ID) {
		return nil, ErrRevokedToken
	}
	return claims, nil
}

// Revoke blacklists the token until its natural expiry.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	if m.blacklist == nil || claims.ID == "" || claims.ExpiresAt == nil {
		return nil
	}
	return m.blacklist.Add(ctx, claims.ID, claims.ExpiresAt.Time)
}
