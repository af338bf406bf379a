package memory

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory credit application store used for demos and tests.
// Saves are compare-and-swap on the application version.
type Repository struct {
	mu         sync.RWMutex
	apps       map[int64]domain.Snapshot
	nextID     int64
	nextRiskID int64
}

func NewRepository() *Repository {
	return &Repository{apps: map[int64]domain.Snapshot{}}
}

func (r *Repository) Save(_ context.Context, app *domain.CreditApplication) (*domain.CreditApplication, error) {
	if app == nil {
		return nil, errors.New("credit application is nil")
	}
	snap := app.Snapshot()

	r.mu.Lock()
	defer r.mu.Unlock()

	if snap.ID == 0 {
		r.nextID++
		snap.ID = r.nextID
		snap.Version = 0
	} else {
		stored, ok := r.apps[snap.ID]
		if !ok {
			return nil, fmt.Errorf("%w: id %d", ports.ErrNotFound, snap.ID)
		}
		if stored.Version != snap.Version {
			return nil, fmt.Errorf("%w: id %d expected version %d, stored %d", ports.ErrConcurrentUpdate, snap.ID, snap.Version, stored.Version)
		}
		snap.Version++
	}
	if snap.Risk != nil {
		risk := *snap.Risk
		risk.ApplicationID = snap.ID
		if risk.ID == 0 {
			r.nextRiskID++
			risk.ID = r.nextRiskID
		}
		snap.Risk = &risk
	}
	r.apps[snap.ID] = snap
	return domain.Restore(snap)
}

func (r *Repository) GetByID(_ context.Context, id int64) (*domain.CreditApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	snap, ok := r.apps[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return domain.Restore(snap)
}

func (r *Repository) ListByAffiliate(_ context.Context, affiliateID int64) ([]*domain.CreditApplication, error) {
	return r.list(func(s domain.Snapshot) bool { return s.AffiliateID == affiliateID })
}

func (r *Repository) List(_ context.Context) ([]*domain.CreditApplication, error) {
	return r.list(func(domain.Snapshot) bool { return true })
}

func (r *Repository) list(keep func(domain.Snapshot) bool) ([]*domain.CreditApplication, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]int64, 0, len(r.apps))
	for id, snap := range r.apps {
		if keep(snap) {
			ids = append(ids, id)
		}
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	list := make([]*domain.CreditApplication, 0, len(ids))
	for _, id := range ids {
		app, err := domain.Restore(r.apps[id])
		if err != nil {
			return nil, err
		}
		list = append(list, app)
	}
	return list, nil
}
