package ports

import (
	"context"
	"errors"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrDuplicateUsername  = errors.New("a user with that username already exists")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

type Repository interface {
	// Create inserts a new user and returns ErrDuplicateUsername when the name is taken.
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
}
