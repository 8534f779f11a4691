package postgres

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	userports "github.com/Apurer/brew-ha-ha/internal/domains/users/ports"
)

// SessionStore persists refresh sessions in PostgreSQL.
type SessionStore struct {
	db *gorm.DB
}

// NewSessionStore wires a PostgreSQL-backed session store. Caller owns DB lifecycle.
func NewSessionStore(db *gorm.DB) *SessionStore {
	return &SessionStore{db: db}
}

type sessionRecord struct {
	TokenID   string    `gorm:"primaryKey;column:token_id"`
	Username  string    `gorm:"column:username"`
	ExpiresAt time.Time `gorm:"column:expires_at"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Save upserts a session keyed by token id.
func (s *SessionStore) Save(ctx context.Context, session userports.Session) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	if strings.TrimSpace(session.TokenID) == "" || strings.TrimSpace(session.Username) == "" {
		return errors.New("token id and username are required")
	}
	rec := sessionRecord{
		TokenID:   session.TokenID,
		Username:  session.Username,
		ExpiresAt: session.ExpiresAt,
	}
	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "token_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"username", "expires_at"}),
		}).
		Create(&rec).Error
}

func (s *SessionStore) Get(ctx context.Context, tokenID string) (*userports.Session, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var rec sessionRecord
	if err := s.db.WithContext(ctx).First(&rec, "token_id = ?", tokenID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, userports.ErrSessionNotFound
		}
		return nil, err
	}
	return &userports.Session{TokenID: rec.TokenID, Username: rec.Username, ExpiresAt: rec.ExpiresAt}, nil
}

func (s *SessionStore) Delete(ctx context.Context, tokenID string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Delete(&sessionRecord{}, "token_id = ?", tokenID).Error
}

// PurgeExpired removes all expired sessions. Run by the session purger.
func (s *SessionStore) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	if err := s.ensureDB(); err != nil {
		return 0, err
	}
	result := s.db.WithContext(ctx).Where("expires_at <= ?", now).Delete(&sessionRecord{})
	return result.RowsAffected, result.Error
}

func (s *SessionStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres session store not configured")
	}
	return nil
}

var _ userports.SessionStore = (*SessionStore)(nil)
