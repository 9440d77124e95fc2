// Package auth issues and verifies the session tokens that carry a caller's
// identity.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const issuer = "chirp"

var ErrInvalidToken = errors.New("invalid session token")

// SessionClaims are the claims carried by a session token. The subject is
// the user id.
type SessionClaims struct {
	jwt.RegisteredClaims
}

// Sessions signs and verifies HS256 session tokens with a shared secret.
type Sessions struct {
	secret []byte
	now    func() time.Time
}

func NewSessions(secret string) (*Sessions, error) {
	if secret == "" {
		return nil, errors.New("session secret is empty")
	}
	return &Sessions{secret: []byte(secret), now: time.Now}, nil
}

// Issue mints a token for userID valid for ttl.
func (s *Sessions) Issue(userID string, ttl time.Duration) (string, error) {
	if userID == "" {
		return "", errors.New("user id is empty")
	}
	now := s.now()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Verify checks the signature, issuer and expiry and returns the user id.
func (s *Sessions) Verify(token string) (string, error) {
	parsed, err := jwt.ParseWithClaims(token, &SessionClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := parsed.Claims.(*SessionClaims)
	if !ok || !parsed.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}
	return claims.Subject, nil
}

type contextKey struct{}

// WithUserID returns a context carrying the authenticated user id.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, contextKey{}, userID)
}

// UserID returns the authenticated user id, or "" for anonymous callers.
func UserID(ctx context.Context) string {
	id, _ := ctx.Value(contextKey{}).(string)
	return id
}
