package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"carrent/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	// ErrInvalidToken covers malformed, expired and badly signed tokens.
	ErrInvalidToken = errors.New("invalid token")
	// ErrTokenRevoked means the token was blacklisted by a logout.
	ErrTokenRevoked = errors.New("token revoked")
)

// Claims carried by access tokens.
type Claims struct {
	Username string `json:"username"`
	UserID   int64  `json:"user_id"`
	IsStaff  bool   `json:"is_staff"`
	jwt.RegisteredClaims
}

// TokenManager issues and validates HMAC-signed access tokens. Logout
// blacklists the token id until its natural expiry.
type TokenManager struct {
	secret    []byte
	ttl       time.Duration
	blacklist Blacklist
}

// NewTokenManager creates a token manager.
func NewTokenManager(secret string, ttl time.Duration, blacklist Blacklist) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, blacklist: blacklist}
}

// Issue creates a signed access token for a user.
func (m *TokenManager) Issue(u *models.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: u.Username,
		UserID:   u.ID,
		IsStaff:  u.IsStaff,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Parse validates a token and checks it against the blacklist.
func (m *TokenManager) Parse(ctx context.Context, tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}

	revoked, err := m.blacklist.Contains(ctx, claims.ID)
	if err != nil {
		return nil, fmt.Errorf("check blacklist: %w", err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}

// Revoke blacklists a token until it would have expired anyway.
func (m *TokenManager) Revoke(ctx context.Context, claims *Claims) error {
	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl <= 0 {
		return nil
	}
	return m.blacklist.Add(ctx, claims.ID, ttl)
}
