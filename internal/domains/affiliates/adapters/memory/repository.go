package memory

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps affiliates in memory with unique document and email indexes.
type Repository struct {
	mu         sync.RWMutex
	affiliates map[int64]*domain.Affiliate
	byDocument map[string]int64
	byEmail    map[string]int64
	nextID     int64
}

func NewRepository() *Repository {
	return &Repository{
		affiliates: map[int64]*domain.Affiliate{},
		byDocument: map[string]int64{},
		byEmail:    map[string]int64{},
	}
}

func (r *Repository) Create(_ context.Context, affiliate *domain.Affiliate) (*domain.Affiliate, error) {
	if affiliate == nil {
		return nil, errors.New("affiliate is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byDocument[affiliate.DocumentNumber]; taken {
		return nil, ports.ErrDuplicateDocument
	}
	if _, taken := r.byEmail[affiliate.Email]; taken {
		return nil, ports.ErrDuplicateEmail
	}
	clone := *affiliate
	r.nextID++
	clone.ID = r.nextID
	r.affiliates[clone.ID] = &clone
	r.byDocument[clone.DocumentNumber] = clone.ID
	r.byEmail[clone.Email] = clone.ID
	out := clone
	return &out, nil
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.Affiliate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.affiliates[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	clone := *a
	return &clone, nil
}

func (r *Repository) GetByDocumentNumber(ctx context.Context, documentNumber string) (*domain.Affiliate, error) {
	r.mu.RLock()
	id, ok := r.byDocument[documentNumber]
	r.mu.RUnlock()
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.GetByID(ctx, id)
}

func (r *Repository) ExistsByDocumentNumber(_ context.Context, documentNumber string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byDocument[documentNumber]
	return ok, nil
}

func (r *Repository) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byEmail[email]
	return ok, nil
}

func (r *Repository) List(_ context.Context) ([]*domain.Affiliate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Affiliate, 0, len(r.affiliates))
	for _, a := range r.affiliates {
		clone := *a
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}
