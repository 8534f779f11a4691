package ports

import (
	"context"
	"errors"
	"time"
)

var ErrSessionNotFound = errors.New("session not found")

// Session registers an issued refresh token by its id.
type Session struct {
	TokenID   string
	Username  string
	ExpiresAt time.Time
}

// SessionStore abstracts refresh session persistence.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	Get(ctx context.Context, tokenID string) (*Session, error)
	Delete(ctx context.Context, tokenID string) error
	// PurgeExpired removes sessions that expired at or before now.
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}
