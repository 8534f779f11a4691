package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory user persistence adapter keyed by username.
type Repository struct {
	mu     sync.RWMutex
	users  map[string]*domain.User
	nextID int64
}

func NewRepository() *Repository {
	return &Repository{users: map[string]*domain.User{}}
}

func (r *Repository) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if user == nil {
		return nil, errors.New("user is nil")
	}
	clone := *user
	if err := clone.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.users[clone.Username]; exists {
		return nil, ports.ErrDuplicateUsername
	}
	r.nextID++
	clone.ID = r.nextID
	r.users[clone.Username] = &clone
	saved := clone
	return &saved, nil
}

func (r *Repository) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[strings.TrimSpace(username)]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *user
	return &clone, nil
}
