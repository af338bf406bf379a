package ports

import (
	"context"
	"errors"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
)

var (
	ErrNotFound          = errors.New("affiliate not found")
	ErrDuplicateDocument = errors.New("an affiliate with this document number already exists")
	ErrDuplicateEmail    = errors.New("an affiliate with this email already exists")
)

// Repository persists affiliates. Create fails with ErrDuplicateDocument or
// ErrDuplicateEmail when a unique key is already taken.
type Repository interface {
	Create(ctx context.Context, affiliate *domain.Affiliate) (*domain.Affiliate, error)
	GetByID(ctx context.Context, id int64) (*domain.Affiliate, error)
	GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Affiliate, error)
	ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	List(ctx context.Context) ([]*domain.Affiliate, error)
}
