package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore keeps idempotency keys in process memory.
type IdempotencyStore struct {
	mu      sync.RWMutex
	records map[string]ports.IdempotencyRecord
	now     func() time.Time
}

func NewIdempotencyStore() *IdempotencyStore {
	return &IdempotencyStore{
		records: map[string]ports.IdempotencyRecord{},
		now:     time.Now,
	}
}

// WithClock overrides the time source for deterministic testing.
func (s *IdempotencyStore) WithClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.records[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (s *IdempotencyStore) Claim(_ context.Context, key, requestHash string) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now().UTC()
	if existing, ok := s.records[key]; ok {
		abandoned := existing.Pending() && now.Sub(existing.CreatedAt) > ports.ClaimLease
		if !abandoned {
			return &existing, nil
		}
	}
	s.records[key] = ports.IdempotencyRecord{Key: key, RequestHash: requestHash, CreatedAt: now}
	return nil, nil
}

func (s *IdempotencyStore) Save(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[record.Key]; ok {
		if existing.RequestHash != record.RequestHash {
			return &existing, ports.ErrIdempotencyConflict
		}
		if !existing.Pending() {
			if existing.OrderID != record.OrderID {
				return &existing, ports.ErrIdempotencyConflict
			}
			return &existing, nil
		}
	}
	record.CreatedAt = s.now().UTC()
	s.records[record.Key] = record
	return &record, nil
}

func (s *IdempotencyStore) Release(_ context.Context, key, requestHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.records[key]; ok && existing.Pending() && existing.RequestHash == requestHash {
		delete(s.records, key)
	}
	return nil
}
