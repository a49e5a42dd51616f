// Package token issues and verifies the signed session tokens carried on
// every authenticated request.
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/pedalpoint/bikerental-backend/user"
)

// DefaultTTL matches the 8-hour admin session lifetime.
const DefaultTTL = 8 * time.Hour

var ErrInvalidToken = errors.New("invalid or expired token")

// Claims are the token payload: subject id plus the role and email the
// middleware needs to build an Actor without a user lookup.
type Claims struct {
	Role  user.Role `json:"role"`
	Email string    `json:"email"`
	jwt.RegisteredClaims
}

type Manager struct {
	secret []byte
	ttl    time.Duration
}

func NewManager(secret string) *Manager {
	return &Manager{secret: []byte(secret), ttl: DefaultTTL}
}

// Issue signs a session token for the given user.
func (m *Manager) Issue(u user.User) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:  u.Role,
		Email: u.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   u.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify parses and validates a token, returning the subject id and claims.
func (m *Manager) Verify(signed string) (uuid.UUID, Claims, error) {
	var claims Claims
	tok, err := jwt.ParseWithClaims(signed, &claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidToken
		}
		return m.secret, nil
	})
	if err != nil || !tok.Valid {
		return uuid.Nil, Claims{}, ErrInvalidToken
	}
	id, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, Claims{}, ErrInvalidToken
	}
	return id, claims, nil
}
