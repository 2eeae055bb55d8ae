package auth

import (
	"context"
	"time"
)

// JWTService issues and validates the tokens returned by registration and
// login.
type JWTService interface {
	// GenerateToken creates a signed token identifying the given user.
	GenerateToken(ctx context.Context, userID string) (string, error)

	// ValidateToken checks the signature and time claims of tokenString and
	// returns its claims. Failures map to ErrInvalidToken, ErrExpiredToken
	// or ErrTokenNotYetValid.
	ValidateToken(ctx context.Context, tokenString string) (*Claims, error)
}

// Claims is the decoded content of a valid token.
type Claims struct {
	UserID    string    `json:"uid,omitempty"`
	Subject   string    `json:"sub,omitempty"`
	IssuedAt  time.Time `json:"iat,omitempty"`
	ExpiresAt time.Time `json:"exp,omitempty"`
	ID        string    `json:"jti,omitempty"`
}
