package application

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
)

// Service exposes the affiliate registry use cases.
type Service struct {
	repo ports.Repository
	now  func() time.Time
}

func NewService(repo ports.Repository) *Service {
	return &Service{repo: repo, now: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the registration time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Register validates a new member and rejects duplicated document or email.
func (s *Service) Register(ctx context.Context, params domain.RegistrationParams) (*domain.Affiliate, error) {
	affiliate, err := domain.NewAffiliate(params, s.now())
	if err != nil {
		return nil, mapError(err)
	}
	exists, err := s.repo.ExistsByDocumentNumber(ctx, affiliate.DocumentNumber)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, mapError(fmt.Errorf("%w: %s", ports.ErrDuplicateDocument, affiliate.DocumentNumber))
	}
	exists, err = s.repo.ExistsByEmail(ctx, affiliate.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, mapError(fmt.Errorf("%w: %s", ports.ErrDuplicateEmail, affiliate.Email))
	}
	saved, err := s.repo.Create(ctx, affiliate)
	if err != nil {
		return nil, mapError(err)
	}
	return saved, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Affiliate, error) {
	affiliate, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, mapError(err)
	}
	return affiliate, nil
}

func (s *Service) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Affiliate, error) {
	affiliate, err := s.repo.GetByDocumentNumber(ctx, strings.TrimSpace(documentNumber))
	if err != nil {
		return nil, mapError(err)
	}
	return affiliate, nil
}

func (s *Service) List(ctx context.Context) ([]*domain.Affiliate, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, mapError(err)
	}
	return list, nil
}

var _ ports.Service = (*Service)(nil)
