// Package token implements the session token capability: a signed,
// time-limited JWT carrying the user's identity.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TTL is the session lifetime.
const TTL = 7 * 24 * time.Hour

// Claims is the payload carried by a session token.
type Claims struct {
	UserID   uint
	Username string
	Email    string
}

// Signer signs and verifies session tokens with an HMAC secret. It is
// injected into handlers and middleware so tests can construct their own.
type Signer struct {
	secret []byte
	now    func() time.Time
}

// NewSigner creates a Signer for the given secret.
func NewSigner(secret string) *Signer {
	return &Signer{secret: []byte(secret), now: time.Now}
}

// Sign creates a new session token for the given claims.
func (s *Signer) Sign(c Claims) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":      float64(c.UserID),
		"username": c.Username,
		"email":    c.Email,
		"exp":      now.Add(TTL).Unix(),
		"iat":      now.Unix(),
	}

	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

// Verify parses and validates a token string and returns its claims.
func (s *Signer) Verify(tokenString string) (*Claims, error) {
	t, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}

	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok || !t.Valid {
		return nil, errors.New("invalid token claims")
	}

	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, errors.New("missing sub claim")
	}

	out := &Claims{UserID: uint(sub)}
	if v, ok := claims["username"].(string); ok {
		out.Username = v
	}
	if v, ok := claims["email"].(string); ok {
		out.Email = v
	}
	return out, nil
}
