package ports

import (
	"errors"
	"time"
)

var ErrInvalidToken = errors.New("token is invalid or expired")

// TokenType distinguishes short-lived access tokens from refresh tokens.
type TokenType string

const (
	AccessToken  TokenType = "access"
	RefreshToken TokenType = "refresh"
)

// TokenClaims are the verified facts carried by a token.
type TokenClaims struct {
	TokenID   string
	Subject   string
	Type      TokenType
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// TokenIssuer signs and verifies bearer tokens.
type TokenIssuer interface {
	Issue(subject string, typ TokenType) (string, TokenClaims, error)
	// Verify returns ErrInvalidToken for bad signatures, expiry, or a type mismatch.
	Verify(token string, typ TokenType) (TokenClaims, error)
}
