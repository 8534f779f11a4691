package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore implementation.
type SessionStore struct {
	sessions sync.Map
}

func NewSessionStore() *SessionStore {
	return &SessionStore{}
}

func (s *SessionStore) Save(_ context.Context, session ports.Session) error {
	s.sessions.Store(session.TokenID, session)
	return nil
}

func (s *SessionStore) Get(_ context.Context, tokenID string) (*ports.Session, error) {
	value, ok := s.sessions.Load(tokenID)
	if !ok {
		return nil, ports.ErrSessionNotFound
	}
	session := value.(ports.Session)
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, tokenID string) error {
	s.sessions.Delete(tokenID)
	return nil
}

func (s *SessionStore) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	var purged int64
	s.sessions.Range(func(key, value any) bool {
		if !value.(ports.Session).ExpiresAt.After(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}
