package ports

import (
	"context"
	"errors"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
)

var (
	ErrNotFound = errors.New("credit application not found")
	// ErrConcurrentUpdate is returned by Save when the stored version no longer matches.
	ErrConcurrentUpdate = errors.New("credit application was modified concurrently")
)

// Repository persists credit applications with their attached risk evaluation.
//
// Save creates the application when ID is zero. Otherwise it performs a conditional
// update that only succeeds when the stored version equals app.Version, and returns
// the stored aggregate with the new version.
type Repository interface {
	Save(ctx context.Context, app *domain.CreditApplication) (*domain.CreditApplication, error)
	GetByID(ctx context.Context, id int64) (*domain.CreditApplication, error)
	ListByAffiliate(ctx context.Context, affiliateID int64) ([]*domain.CreditApplication, error)
	List(ctx context.Context) ([]*domain.CreditApplication, error)
}
