// Package redis keeps order idempotency keys in Redis with a TTL.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Apurer/brew-ha-ha/internal/domains/store/ports"
)

const (
	keyPrefix     = "idemp:orders:"
	claimAttempts = 3
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

type IdempotencyStore struct {
	rdb *goredis.Client
	ttl time.Duration
	now func() time.Time
}

func NewIdempotencyStore(rdb *goredis.Client, ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{rdb: rdb, ttl: ttl, now: time.Now}
}

type entry struct {
	RequestHash string    `json:"request_hash"`
	OrderID     int64     `json:"order_id"`
	CreatedAt   time.Time `json:"created_at"`
}

func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	return load(ctx, s.rdb, key)
}

// Claim writes a pending entry with SET NX. The entry expires after
// ports.ClaimLease so a crashed placement cannot block the key for the full TTL.
func (s *IdempotencyStore) Claim(ctx context.Context, key, requestHash string) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	payload, err := json.Marshal(entry{RequestHash: requestHash, CreatedAt: s.now().UTC()})
	if err != nil {
		return nil, err
	}
	for attempt := 0; attempt < claimAttempts; attempt++ {
		claimed, err := s.rdb.SetNX(ctx, keyPrefix+key, payload, ports.ClaimLease).Result()
		if err != nil {
			return nil, err
		}
		if claimed {
			return nil, nil
		}
		existing, err := load(ctx, s.rdb, key)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return existing, nil
		}
		// expired between SETNX and GET
	}
	return nil, errors.New("idempotency key claim did not settle")
}

// Save replaces the pending claim with the finished record under WATCH, so a
// claim taken over after its lease is never overwritten.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := s.ensureClient(); err != nil {
		return nil, err
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = s.now().UTC()
	}
	payload, err := json.Marshal(entry{
		RequestHash: record.RequestHash,
		OrderID:     record.OrderID,
		CreatedAt:   record.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	var result *ports.IdempotencyRecord
	err = s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		existing, err := load(ctx, tx, record.Key)
		if err != nil {
			return err
		}
		if existing != nil {
			if existing.RequestHash != record.RequestHash ||
				(!existing.Pending() && existing.OrderID != record.OrderID) {
				result = existing
				return ports.ErrIdempotencyConflict
			}
			if !existing.Pending() {
				result = existing
				return nil
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Set(ctx, keyPrefix+record.Key, payload, s.ttl)
			return nil
		})
		result = &record
		return err
	}, keyPrefix+record.Key)
	return result, err
}

// Release deletes the key only while it still holds this request's pending claim.
func (s *IdempotencyStore) Release(ctx context.Context, key, requestHash string) error {
	if err := s.ensureClient(); err != nil {
		return err
	}
	return s.rdb.Watch(ctx, func(tx *goredis.Tx) error {
		existing, err := load(ctx, tx, key)
		if err != nil || existing == nil {
			return err
		}
		if !existing.Pending() || existing.RequestHash != requestHash {
			return nil
		}
		_, err = tx.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
			pipe.Del(ctx, keyPrefix+key)
			return nil
		})
		return err
	}, keyPrefix+key)
}

// getter is satisfied by both *goredis.Client and *goredis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
}

func load(ctx context.Context, c getter, key string) (*ports.IdempotencyRecord, error) {
	raw, err := c.Get(ctx, keyPrefix+key).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stored entry
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, err
	}
	return &ports.IdempotencyRecord{
		Key:         key,
		RequestHash: stored.RequestHash,
		OrderID:     stored.OrderID,
		CreatedAt:   stored.CreatedAt,
	}, nil
}

func (s *IdempotencyStore) ensureClient() error {
	if s == nil || s.rdb == nil {
		return errors.New("redis idempotency store not configured")
	}
	return nil
}
