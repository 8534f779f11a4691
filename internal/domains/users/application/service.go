package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/Apurer/brew-ha-ha/internal/domains/users/domain"
	"github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
)

// Service exposes user bounded context use cases.
type Service struct {
	repo     ports.Repository
	sessions ports.SessionStore
	tokens   ports.TokenIssuer
	now      func() time.Time
}

func NewService(repo ports.Repository, sessions ports.SessionStore, tokens ports.TokenIssuer) *Service {
	return &Service{repo: repo, sessions: sessions, tokens: tokens, now: time.Now}
}

// WithClock overrides the time source used for session expiry checks.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

func (s *Service) Signup(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := domain.NewUser(username, password)
	if err != nil {
		return nil, mapError(err)
	}
	user.CreatedAt = s.now().UTC()
	created, err := s.repo.Create(ctx, user)
	if err != nil {
		return nil, mapError(err)
	}
	return created, nil
}

// Login checks the credentials and issues an access/refresh pair. The refresh
// token is registered as a session so it can be revoked or purged.
func (s *Service) Login(ctx context.Context, username, password string) (ports.TokenPair, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return ports.TokenPair{}, mapError(ports.ErrInvalidCredentials)
	}
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return ports.TokenPair{}, mapError(ports.ErrInvalidCredentials)
		}
		return ports.TokenPair{}, err
	}
	if !user.CheckPassword(password) {
		return ports.TokenPair{}, mapError(ports.ErrInvalidCredentials)
	}

	access, _, err := s.tokens.Issue(user.Username, ports.AccessToken)
	if err != nil {
		return ports.TokenPair{}, err
	}
	refresh, claims, err := s.tokens.Issue(user.Username, ports.RefreshToken)
	if err != nil {
		return ports.TokenPair{}, err
	}
	err = s.sessions.Save(ctx, ports.Session{
		TokenID:   claims.TokenID,
		Username:  user.Username,
		ExpiresAt: claims.ExpiresAt,
	})
	if err != nil {
		return ports.TokenPair{}, err
	}
	return ports.TokenPair{Access: access, Refresh: refresh}, nil
}

// Refresh exchanges a registered, unexpired refresh token for a new access token.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	claims, err := s.tokens.Verify(refreshToken, ports.RefreshToken)
	if err != nil {
		return "", mapError(err)
	}
	session, err := s.sessions.Get(ctx, claims.TokenID)
	if err != nil {
		if errors.Is(err, ports.ErrSessionNotFound) {
			return "", mapError(ports.ErrInvalidToken)
		}
		return "", err
	}
	if session.Username != claims.Subject || !s.now().Before(session.ExpiresAt) {
		return "", mapError(ports.ErrInvalidToken)
	}
	if err := s.ensureUser(ctx, claims.Subject); err != nil {
		return "", err
	}
	access, _, err := s.tokens.Issue(claims.Subject, ports.AccessToken)
	if err != nil {
		return "", err
	}
	return access, nil
}

func (s *Service) Authenticate(ctx context.Context, accessToken string) (string, error) {
	claims, err := s.tokens.Verify(accessToken, ports.AccessToken)
	if err != nil {
		return "", mapError(err)
	}
	if err := s.ensureUser(ctx, claims.Subject); err != nil {
		return "", err
	}
	return claims.Subject, nil
}

func (s *Service) ensureUser(ctx context.Context, username string) error {
	_, err := s.repo.GetByUsername(ctx, username)
	if errors.Is(err, ports.ErrNotFound) {
		return mapError(ports.ErrInvalidToken)
	}
	return err
}

var _ ports.Service = (*Service)(nil)
