//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/ports"
	"github.com/Apurer/coopcredit-api-server/internal/platform/migrations"
)

func setupAffiliatesPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("coopcredit_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, migrations.Run(db))

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}
	return db, cleanup
}

func newAffiliate(t *testing.T, doc, email string) *domain.Affiliate {
	t.Helper()
	a, err := domain.NewAffiliate(domain.RegistrationParams{
		DocumentNumber: doc,
		DocumentType:   "CC",
		FirstName:      "Marta",
		LastName:       "Lucía",
		Email:          email,
		BirthDate:      time.Date(1979, 2, 3, 0, 0, 0, 0, time.UTC),
	}, time.Now().UTC())
	require.NoError(t, err)
	return a
}

func TestRepository_CreateAndLookup(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupAffiliatesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	created, err := repo.Create(ctx, newAffiliate(t, "52123456", "marta@example.com"))
	require.NoError(t, err)
	require.NotZero(t, created.ID)

	byID, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Marta Lucía", byID.FullName())

	byDoc, err := repo.GetByDocumentNumber(ctx, "52123456")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byDoc.ID)

	exists, err := repo.ExistsByEmail(ctx, "marta@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ports.ErrNotFound)
}

func TestRepository_UniqueConstraints(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	db, cleanup := setupAffiliatesPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Create(ctx, newAffiliate(t, "52123456", "marta@example.com"))
	require.NoError(t, err)

	_, err = repo.Create(ctx, newAffiliate(t, "52123456", "other@example.com"))
	assert.ErrorIs(t, err, ports.ErrDuplicateDocument)

	_, err = repo.Create(ctx, newAffiliate(t, "99999999", "marta@example.com"))
	assert.ErrorIs(t, err, ports.ErrDuplicateEmail)
}
