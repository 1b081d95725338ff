// Package auth bridges the external identity provider's token interface:
// minting bearer tokens on the client side and verifying them on the server.
package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoIdentity reports that no user identity is currently established.
var ErrNoIdentity = errors.New("no identity established")

// tokenTTL bounds how long a minted token stays valid.
const tokenTTL = time.Hour

// JWTProvider mints HS256 bearer tokens for the persistence API on behalf of
// a signed-in user.
type JWTProvider struct {
	secret []byte
	userID string
}

// NewJWTProvider builds a provider for the given user. userID may be empty;
// Token then fails with ErrNoIdentity until SetUser establishes an identity.
func NewJWTProvider(secret, userID string) *JWTProvider {
	return &JWTProvider{secret: []byte(secret), userID: userID}
}

// SetUser switches the identity the provider mints tokens for. An empty id
// signs the user out.
func (p *JWTProvider) SetUser(userID string) {
	p.userID = userID
}

// Token returns a fresh bearer token for the current user.
func (p *JWTProvider) Token(_ context.Context) (string, error) {
	if p.userID == "" {
		return "", ErrNoIdentity
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": p.userID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(p.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// VerifyToken validates a bearer token and returns the subject user id.
func VerifyToken(secret, tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return "", errors.New("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid token: missing subject")
	}
	return sub, nil
}
