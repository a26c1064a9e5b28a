// Package token signs and verifies the bearer tokens that authenticate API
// requests. Tokens are HS256 JWTs over a process-wide secret; verification is
// pure computation with no store round trip.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"barberbook/internal/apperr"
)

// Claims is the verified payload of a bearer token.
type Claims struct {
	UserID int64 `json:"user_id"`
	jwt.RegisteredClaims
}

// Manager signs and verifies tokens with a single shared secret.
// The zero value is not usable; construct with New.
type Manager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// New constructs a Manager. ttl bounds the lifetime of tokens issued by Sign.
func New(secret string, ttl time.Duration) *Manager {
	return &Manager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Sign issues a token for the given user id, expiring after the configured ttl.
func (m *Manager) Sign(userID int64) (string, error) {
	now := m.now()
	claims := Claims{
		UserID: userID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("token.Manager.Sign: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning its claims.
// Failures are typed at this boundary: an expired token yields
// apperr.KindTokenExpired, any structural or signature problem yields
// apperr.KindInvalidToken. Callers never need to inspect jwt library errors.
func (m *Manager) Verify(tok string) (Claims, error) {
	var claims Claims
	_, err := jwt.ParseWithClaims(tok, &claims, func(t *jwt.Token) (any, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithTimeFunc(func() time.Time { return m.now() }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return Claims{}, apperr.Wrap(apperr.KindTokenExpired, "Token expired", err)
		}
		return Claims{}, apperr.Wrap(apperr.KindInvalidToken, "Invalid token", err)
	}
	if claims.UserID == 0 {
		return Claims{}, apperr.New(apperr.KindInvalidToken, "Invalid token")
	}
	return claims, nil
}
