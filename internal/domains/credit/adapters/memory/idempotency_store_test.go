package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

func TestIdempotencyStore_SaveAndConflict(t *testing.T) {
	store := NewIdempotencyStore()
	ctx := context.Background()

	missing, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.Nil(t, missing)

	saved, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", ApplicationID: 7})
	require.NoError(t, err)
	assert.False(t, saved.CreatedAt.IsZero())

	same, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h1", ApplicationID: 7})
	require.NoError(t, err)
	assert.Equal(t, saved.CreatedAt, same.CreatedAt)

	existing, err := store.Save(ctx, ports.IdempotencyRecord{Key: "k", RequestHash: "h2", ApplicationID: 8})
	require.ErrorIs(t, err, ports.ErrIdempotencyConflict)
	assert.Equal(t, int64(7), existing.ApplicationID)
}
