// Package auth verifies bearer credentials against the identity provider
// and resolves them to a subject identifier.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var (
	// ErrInvalidToken is returned for malformed or unrecognized credentials.
	ErrInvalidToken = errors.New("invalid token")
	// ErrExpiredToken is returned for credentials that are valid but expired.
	ErrExpiredToken = errors.New("expired token")
)

// Verifier validates a bearer credential and returns the verified subject
// identifier of the caller.
type Verifier interface {
	Verify(ctx context.Context, token string) (uid string, err error)
}

// JWTVerifier verifies HS256-signed ID tokens issued by the identity
// provider. The subject claim carries the uid.
type JWTVerifier struct {
	secret []byte
	issuer string
}

// NewJWTVerifier builds a verifier for the given signing secret. issuer is
// optional; when set, tokens from any other issuer are rejected.
func NewJWTVerifier(secret, issuer string) (*JWTVerifier, error) {
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	return &JWTVerifier{secret: []byte(secret), issuer: issuer}, nil
}

func (v *JWTVerifier) Verify(ctx context.Context, tokenStr string) (string, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (any, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", ErrExpiredToken
		}
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	uid, err := token.Claims.GetSubject()
	if err != nil || uid == "" {
		return "", fmt.Errorf("%w: missing subject claim", ErrInvalidToken)
	}
	return uid, nil
}
