package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyConflict indicates the same key was used with a different payload.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	// ErrIdempotencyInProgress indicates another request holding the key has not finished yet.
	ErrIdempotencyInProgress = errors.New("idempotency key is held by a request still in progress")
)

// ClaimLease bounds how long an unfinished claim blocks its key. A claim older
// than the lease is treated as abandoned and may be taken over.
const ClaimLease = 30 * time.Second

// IdempotencyRecord ties a client-supplied key to the order it produced.
// OrderID is zero while the claim is pending.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// Pending reports whether the record is a claim whose placement has not finished.
func (r IdempotencyRecord) Pending() bool { return r.OrderID == 0 }

// IdempotencyStore persists idempotency keys so retries replay the original order.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Claim atomically reserves the key before a placement. It returns nil when
	// the caller now holds the key, or the record already stored for it.
	Claim(ctx context.Context, key, requestHash string) (*IdempotencyRecord, error)
	// Save completes a claim with the order it produced. A key finished with a
	// different hash or order returns ErrIdempotencyConflict with the stored record.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
	// Release drops a pending claim for the hash so the key can be retried.
	Release(ctx context.Context, key, requestHash string) error
}
