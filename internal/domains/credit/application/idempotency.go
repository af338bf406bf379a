package application

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

type normalizedCreateInput struct {
	AffiliateID     int64  `json:"affiliateId"`
	RequestedAmount string `json:"requestedAmount"`
	TermMonths      int    `json:"termMonths"`
	Purpose         string `json:"purpose"`
}

// FingerprintCreate builds a deterministic hash of a submission, excluding the idempotency key.
// Amounts are compared by value, so 5000000 and 5000000.00 hash the same.
func FingerprintCreate(input ports.CreateApplicationInput) (string, error) {
	payload, err := json.Marshal(normalizedCreateInput{
		AffiliateID:     input.AffiliateID,
		RequestedAmount: input.RequestedAmount.String(),
		TermMonths:      input.TermMonths,
		Purpose:         strings.TrimSpace(input.Purpose),
	})
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:]), nil
}

// replay returns the application a previous submission with the same key created, or nil when
// the key is new.
func (s *Service) replay(ctx context.Context, key, hash string) (*domain.CreditApplication, error) {
	record, err := s.idempotency.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("load idempotency key: %w", err)
	}
	if record == nil {
		return nil, nil
	}
	if record.RequestHash != hash {
		return nil, fmt.Errorf("%w: key %q was used for a different submission", ports.ErrIdempotencyConflict, key)
	}
	return s.repo.GetByID(ctx, record.ApplicationID)
}

// remember stores the key for created. When a concurrent submission won the race, its
// application is returned instead.
func (s *Service) remember(ctx context.Context, key, hash string, created *domain.CreditApplication) (*domain.CreditApplication, error) {
	stored, err := s.idempotency.Save(ctx, ports.IdempotencyRecord{Key: key, RequestHash: hash, ApplicationID: created.ID})
	switch {
	case err == nil:
		return created, nil
	case errors.Is(err, ports.ErrIdempotencyConflict) && stored != nil && stored.RequestHash == hash:
		return s.repo.GetByID(ctx, stored.ApplicationID)
	default:
		return nil, err
	}
}
