// Package auth verifies the identity provider's session tokens and exposes
// the caller's identity to handlers through the request context.
//
// Authentication itself is delegated: users sign in with the external
// identity provider, which issues a JWT for our backend signed with a shared
// HS256 secret. This package only verifies; it never issues tokens.
package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// Verifier validates provider-issued JWTs and extracts the subject.
type Verifier struct {
	secret []byte
}

// NewVerifier creates a Verifier with the shared signing secret configured
// in the identity provider's dashboard.
func NewVerifier(secret string) (*Verifier, error) {
	if len(secret) < 16 {
		return nil, errors.New("auth: signing secret must be at least 16 characters")
	}
	return &Verifier{secret: []byte(secret)}, nil
}

// claims is the token payload. The provider puts its user id in the
// standard "sub" claim; that subject is the identity every record in the
// store is keyed by.
type claims struct {
	jwt.RegisteredClaims
}

// Verify parses and validates a JWT string and returns the subject.
//
// Checks performed by the jwt library:
//   - signature is valid for the shared secret
//   - token is not expired (an expiry claim is required)
//   - algorithm is HS256 (rejects algorithm-confusion tokens)
func (v *Verifier) Verify(tokenStr string) (string, error) {
	token, err := jwt.ParseWithClaims(
		tokenStr,
		&claims{},
		func(token *jwt.Token) (any, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fmt.Errorf("auth: unexpected signing method: %v", token.Header["alg"])
			}
			return v.secret, nil
		},
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", fmt.Errorf("auth: token expired")
		}
		return "", fmt.Errorf("auth: invalid token: %w", err)
	}

	c, ok := token.Claims.(*claims)
	if !ok || !token.Valid {
		return "", fmt.Errorf("auth: invalid token claims")
	}

	if c.Subject == "" {
		return "", fmt.Errorf("auth: token has no subject")
	}

	return c.Subject, nil
}
