// Package tokens issues and verifies HS256 JWT bearer tokens.
package tokens

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
)

const leeway = 5 * time.Second

var _ ports.TokenIssuer = (*Issuer)(nil)

// Issuer signs tokens with a shared secret.
type Issuer struct {
	secret     []byte
	issuer     string
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

type claims struct {
	jwt.RegisteredClaims
	TokenType ports.TokenType `json:"token_type"`
}

func NewIssuer(secret []byte, issuer string, accessTTL, refreshTTL time.Duration) (*Issuer, error) {
	if len(secret) == 0 {
		return nil, errors.New("jwt secret is required")
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, errors.New("token lifetimes must be positive")
	}
	return &Issuer{
		secret:     secret,
		issuer:     issuer,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// WithClock overrides the time source for deterministic testing.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	if now != nil {
		i.now = now
	}
	return i
}

func (i *Issuer) Issue(subject string, typ ports.TokenType) (string, ports.TokenClaims, error) {
	ttl := i.accessTTL
	if typ == ports.RefreshToken {
		ttl = i.refreshTTL
	}
	now := i.now().UTC().Truncate(time.Second)
	c := claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.NewString(),
		},
		TokenType: typ,
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, c).SignedString(i.secret)
	if err != nil {
		return "", ports.TokenClaims{}, err
	}
	return signed, c.toPort(), nil
}

func (i *Issuer) Verify(token string, typ ports.TokenType) (ports.TokenClaims, error) {
	var c claims
	_, err := jwt.ParseWithClaims(token, &c, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(leeway),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return ports.TokenClaims{}, fmt.Errorf("%w: %w", ports.ErrInvalidToken, err)
	}
	if c.TokenType != typ {
		return ports.TokenClaims{}, fmt.Errorf("%w: expected %s token", ports.ErrInvalidToken, typ)
	}
	if c.Subject == "" || c.ID == "" {
		return ports.TokenClaims{}, fmt.Errorf("%w: missing subject or id", ports.ErrInvalidToken)
	}
	return c.toPort(), nil
}

func (c claims) toPort() ports.TokenClaims {
	out := ports.TokenClaims{
		TokenID: c.ID,
		Subject: c.Subject,
		Type:    c.TokenType,
	}
	if c.IssuedAt != nil {
		out.IssuedAt = c.IssuedAt.Time
	}
	if c.ExpiresAt != nil {
		out.ExpiresAt = c.ExpiresAt.Time
	}
	return out
}
