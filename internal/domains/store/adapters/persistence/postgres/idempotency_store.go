package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// claimAttempts bounds the retries when a claim row disappears between statements.
const claimAttempts = 3

// IdempotencyStore persists idempotency keys in PostgreSQL.
type IdempotencyStore struct {
	db  *gorm.DB
	now func() time.Time
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db, now: time.Now}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := s.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// Claim inserts a pending row for the key. The primary key makes the insert
// the single point of arbitration between concurrent requests.
func (s *IdempotencyStore) Claim(ctx context.Context, key, requestHash string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	for attempt := 0; attempt < claimAttempts; attempt++ {
		now := s.now().UTC()
		row := idempotencyRecord{Key: key, RequestHash: requestHash, CreatedAt: now}
		res := s.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return nil, nil
		}

		res = s.db.WithContext(ctx).Model(&idempotencyRecord{}).
			Where("key = ? AND order_id = 0 AND created_at < ?", key, now.Add(-ports.ClaimLease)).
			Updates(map[string]any{"request_hash": requestHash, "created_at": now})
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 1 {
			return nil, nil
		}

		existing, err := s.Get(ctx, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
	}
	return nil, errors.New("idempotency key claim did not settle")
}

// Save completes the pending claim, or inserts the record when no claim exists.
// A duplicate key is resolved against the stored row.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureDB(); err != nil {
		return nil, err
	}
	res := s.db.WithContext(ctx).Model(&idempotencyRecord{}).
		Where("key = ? AND request_hash = ? AND order_id = 0", record.Key, record.RequestHash).
		Update("order_id", record.OrderID)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 1 {
		return s.Get(ctx, record.Key)
	}

	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	row := idempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
	}
	err := s.db.WithContext(ctx).Create(&row).Error
	if err == nil {
		return row.toPort(), nil
	}
	if !errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, err
	}
	existing, getErr := s.Get(ctx, record.Key)
	if getErr != nil {
		return nil, getErr
	}
	if existing == nil {
		return nil, err
	}
	if existing.RequestHash != record.RequestHash || existing.OrderID != record.OrderID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

// Release deletes the pending claim. Finished records are never removed.
func (s *IdempotencyStore) Release(ctx context.Context, key, requestHash string) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).
		Where("key = ? AND request_hash = ? AND order_id = 0", key, requestHash).
		Delete(&idempotencyRecord{}).Error
}

func (s *IdempotencyStore) ensureDB() error {
	if s == nil || s.db == nil {
		return errors.New("postgres idempotency store not configured")
	}
	return nil
}

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key"`
	RequestHash string    `gorm:"column:request_hash"`
	OrderID     int64     `gorm:"column:order_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (idempotencyRecord) TableName() string { return "order_idempotency_keys" }

func (r idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		RequestHash: r.RequestHash,
		OrderID:     r.OrderID,
		CreatedAt:   r.CreatedAt,
	}
}
