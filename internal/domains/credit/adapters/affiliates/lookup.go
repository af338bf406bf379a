// Package affiliates resolves application owners through the affiliate registry.
package affiliates

import (
	"context"
	"errors"
	"fmt"

	affiliatesports "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

// Lookup implements ports.AffiliateLookup over the affiliate registry.
type Lookup struct {
	registry affiliatesports.Service
}

var _ ports.AffiliateLookup = (*Lookup)(nil)

func NewLookup(registry affiliatesports.Service) *Lookup {
	return &Lookup{registry: registry}
}

// FindByID maps a missing affiliate to ports.ErrAffiliateNotFound.
func (l *Lookup) FindByID(ctx context.Context, affiliateID int64) (*ports.Affiliate, error) {
	a, err := l.registry.GetByID(ctx, affiliateID)
	if err != nil {
		if errors.Is(err, affiliatesports.ErrNotFound) {
			return nil, fmt.Errorf("%w: %d", ports.ErrAffiliateNotFound, affiliateID)
		}
		return nil, err
	}
	return &ports.Affiliate{
		ID:             a.ID,
		DocumentNumber: a.DocumentNumber,
		FullName:       a.FullName(),
	}, nil
}
