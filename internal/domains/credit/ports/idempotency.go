package ports

import (
	"context"
	"errors"
	"time"
)

// ErrIdempotencyConflict indicates the same key was used with a different submission.
var ErrIdempotencyConflict = errors.New("idempotency conflict")

// IdempotencyRecord ties a client-supplied key to the application it created.
type IdempotencyRecord struct {
	Key           string
	RequestHash   string
	ApplicationID int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IdempotencyStore persists submission keys so retried creates replay the first result.
type IdempotencyStore interface {
	// Get returns the stored record for the key, or nil when unknown.
	Get(ctx context.Context, key string) (*IdempotencyRecord, error)
	// Save persists the record. An existing key with the same hash and application returns the
	// stored record; any other existing record is returned with ErrIdempotencyConflict.
	Save(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
