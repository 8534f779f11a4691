package ports

import (
	"context"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/domain"
)

// TokenPair is returned on a successful login.
type TokenPair struct {
	Access  string
	Refresh string
}

// Service exposes user bounded context use cases to adapters.
type Service interface {
	Signup(ctx context.Context, username, password string) (*domain.User, error)
	Login(ctx context.Context, username, password string) (TokenPair, error)
	Refresh(ctx context.Context, refreshToken string) (string, error)
	// Authenticate resolves an access token to the username it was issued for.
	Authenticate(ctx context.Context, accessToken string) (string, error)
}
