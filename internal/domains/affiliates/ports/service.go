package ports

import (
	"context"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
)

// Service exposes affiliate registry use cases to adapters.
type Service interface {
	Register(ctx context.Context, params domain.RegistrationParams) (*domain.Affiliate, error)
	GetByID(ctx context.Context, id int64) (*domain.Affiliate, error)
	GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Affiliate, error)
	List(ctx context.Context) ([]*domain.Affiliate, error)
}
