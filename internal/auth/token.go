package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidCookie is returned when a session cookie fails verification.
var ErrInvalidCookie = errors.New("invalid session cookie")

// CookieSigner wraps session ids in HS256-signed JWTs so that a tampered
// cookie is rejected before the key-value store is consulted.
type CookieSigner struct {
	secret []byte
	issuer string
	ttl    time.Duration
}

// NewCookieSigner creates a signer with the provided secret, issuer, and lifetime.
func NewCookieSigner(secret, issuer string, ttl time.Duration) *CookieSigner {
	return &CookieSigner{
		secret: []byte(secret),
		issuer: issuer,
		ttl:    ttl,
	}
}

// Sign returns the cookie value carrying sessionID.
func (c *CookieSigner) Sign(sessionID string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"iss": c.issuer,
		"sid": sessionID,
		"iat": now.Unix(),
		"exp": now.Add(c.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Parse verifies value and extracts the session id.
func (c *CookieSigner) Parse(value string) (string, error) {
	token, err := jwt.Parse(value, func(*jwt.Token) (any, error) {
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidCookie, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", ErrInvalidCookie
	}
	sid, ok := claims["sid"].(string)
	if !ok || sid == "" {
		return "", ErrInvalidCookie
	}
	return sid, nil
}
