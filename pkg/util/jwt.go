package util

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// DefaultSessionExpiry is the lifetime of a session token and its cookie.
const DefaultSessionExpiry = 24 * time.Hour

// SessionClaims is the signed payload of a session token.
type SessionClaims struct {
	UserID uint `json:"user_id"`
	jwt.RegisteredClaims
}

// SessionTokens issues and verifies HS256 session tokens with a fixed lifetime.
// The signing secret is bound at construction and never changes afterwards.
type SessionTokens struct {
	secret []byte
	expiry time.Duration
	now    func() time.Time
}

func NewSessionTokens(secret string, expiry time.Duration) *SessionTokens {
	if expiry <= 0 {
		expiry = DefaultSessionExpiry
	}
	return &SessionTokens{
		secret: []byte(secret),
		expiry: expiry,
		now:    time.Now,
	}
}

// WithClock returns a copy that reads the current time from now.
func (s *SessionTokens) WithClock(now func() time.Time) *SessionTokens {
	cp := *s
	cp.now = now
	return &cp
}

func (s *SessionTokens) Expiry() time.Duration {
	return s.expiry
}

// Issue signs a token for userID that expires Expiry() after now.
func (s *SessionTokens) Issue(userID uint) (string, *SessionClaims, error) {
	issuedAt := s.now()
	claims := &SessionClaims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   fmt.Sprintf("%d", userID),
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(issuedAt.Add(s.expiry)),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, claims, nil
}

// Verify checks signature, algorithm and expiry. Any failure is reported as
// ErrInvalidToken or ErrExpiredToken; callers should treat both as unauthenticated.
func (s *SessionTokens) Verify(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, ErrInvalidToken
	}

	claims := &SessionClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (interface{}, error) {
			return s.secret, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid || claims.UserID == 0 {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

// RemainingLifetime is how long claims stay valid from now; zero once expired.
func (s *SessionTokens) RemainingLifetime(claims *SessionClaims) time.Duration {
	if claims == nil || claims.ExpiresAt == nil {
		return 0
	}
	left := claims.ExpiresAt.Time.Sub(s.now())
	if left < 0 {
		return 0
	}
	return left
}
