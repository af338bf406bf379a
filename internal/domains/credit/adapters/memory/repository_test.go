package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

func newApp(t *testing.T, affiliateID int64) *domain.CreditApplication {
	t.Helper()
	app, err := domain.NewCreditApplication(domain.NewApplicationParams{
		AffiliateID:     affiliateID,
		RequestedAmount: decimal.NewFromInt(2_000_000),
		TermMonths:      36,
		SubmittedAt:     time.Now().UTC(),
	})
	require.NoError(t, err)
	return app
}

func TestSave_AssignsIDsAndVersions(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()

	saved, err := repo.Save(ctx, newApp(t, 1))
	require.NoError(t, err)
	require.Equal(t, int64(1), saved.ID)
	require.Equal(t, int64(0), saved.Version)

	require.NoError(t, saved.AttachRiskEvaluation(domain.RiskEvaluation{Score: 710, Level: domain.RiskLevelLow}))
	require.NoError(t, saved.DecideByScore("auto", time.Now()))
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	require.Equal(t, int64(1), updated.Version)

	risk, ok := updated.RiskEvaluation()
	require.True(t, ok)
	require.Equal(t, int64(1), risk.ID)
	require.Equal(t, updated.ID, risk.ApplicationID)
}

func TestSave_RejectsStaleVersion(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	saved, err := repo.Save(ctx, newApp(t, 1))
	require.NoError(t, err)

	first, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)

	require.NoError(t, first.Approve("a", time.Now()))
	_, err = repo.Save(ctx, first)
	require.NoError(t, err)

	require.NoError(t, second.Reject("b", "late", time.Now()))
	_, err = repo.Save(ctx, second)
	require.ErrorIs(t, err, ports.ErrConcurrentUpdate)

	stored, err := repo.GetByID(ctx, saved.ID)
	require.NoError(t, err)
	require.Equal(t, domain.StatusApproved, stored.Status())
}

func TestGetByID_NotFound(t *testing.T) {
	_, err := NewRepository().GetByID(context.Background(), 42)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestListByAffiliate_FiltersAndOrders(t *testing.T) {
	repo := NewRepository()
	ctx := context.Background()
	for _, owner := range []int64{1, 2, 1} {
		_, err := repo.Save(ctx, newApp(t, owner))
		require.NoError(t, err)
	}

	mine, err := repo.ListByAffiliate(ctx, 1)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, int64(1), mine[0].ID)
	require.Equal(t, int64(3), mine[1].ID)

	all, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
}
