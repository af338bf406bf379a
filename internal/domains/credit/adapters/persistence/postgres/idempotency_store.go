package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

var _ ports.IdempotencyStore = (*IdempotencyStore)(nil)

// IdempotencyStore persists submission keys in PostgreSQL. The primary key on the key column
// arbitrates concurrent submissions.
type IdempotencyStore struct {
	db *gorm.DB
}

func NewIdempotencyStore(db *gorm.DB) *IdempotencyStore {
	return &IdempotencyStore{db: db}
}

// Get loads a record by key, returning nil when absent.
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
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

// Save inserts the record. On a duplicate key the stored record is returned, with
// ErrIdempotencyConflict when it points elsewhere.
func (s *IdempotencyStore) Save(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("postgres idempotency store not configured")
	}
	row := idempotencyRecord{
		Key:           record.Key,
		RequestHash:   record.RequestHash,
		ApplicationID: record.ApplicationID,
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
	if existing.RequestHash != record.RequestHash || existing.ApplicationID != record.ApplicationID {
		return existing, ports.ErrIdempotencyConflict
	}
	return existing, nil
}

type idempotencyRecord struct {
	Key           string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash   string    `gorm:"column:request_hash;size:128;not null"`
	ApplicationID int64     `gorm:"column:credit_application_id;not null"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (idempotencyRecord) TableName() string { return "credit_idempotency_keys" }

func (r idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:           r.Key,
		RequestHash:   r.RequestHash,
		ApplicationID: r.ApplicationID,
		CreatedAt:     r.CreatedAt,
		UpdatedAt:     r.UpdatedAt,
	}
}
