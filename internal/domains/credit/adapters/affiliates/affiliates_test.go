package affiliates

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	affiliatesmemory "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/adapters/memory"
	affiliatesapp "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/application"
	affiliatesdomain "github.com/Apurer/coopcredit-api-server/internal/domains/affiliates/domain"
	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

func registeredLookup(t *testing.T) (*Lookup, int64) {
	t.Helper()
	svc := affiliatesapp.NewService(affiliatesmemory.NewRepository())
	a, err := svc.Register(context.Background(), affiliatesdomain.RegistrationParams{
		DocumentNumber: "1017234567",
		DocumentType:   "CC",
		FirstName:      "Ana",
		LastName:       "Gómez",
		Email:          "ana@example.com",
		BirthDate:      time.Date(1985, 5, 10, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	return NewLookup(svc), a.ID
}

func TestLookup_FindByID(t *testing.T) {
	lookup, id := registeredLookup(t)

	got, err := lookup.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "1017234567", got.DocumentNumber)
	assert.Equal(t, "Ana Gómez", got.FullName)

	_, err = lookup.FindByID(context.Background(), id+100)
	assert.ErrorIs(t, err, ports.ErrAffiliateNotFound)
}

type countingLookup struct {
	next  ports.AffiliateLookup
	calls int
}

func (c *countingLookup) FindByID(ctx context.Context, id int64) (*ports.Affiliate, error) {
	c.calls++
	return c.next.FindByID(ctx, id)
}

func TestCachedLookup_ServesRepeatReadsFromRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lookup, id := registeredLookup(t)
	counting := &countingLookup{next: lookup}
	cached := NewCachedLookup(counting, client, time.Minute, nil)

	for i := 0; i < 3; i++ {
		got, err := cached.FindByID(context.Background(), id)
		require.NoError(t, err)
		assert.Equal(t, "1017234567", got.DocumentNumber)
	}
	assert.Equal(t, 1, counting.calls)
	assert.True(t, mr.Exists(keyPrefix+"1"))

	mr.FastForward(2 * time.Minute)
	_, err := cached.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, 2, counting.calls)
}

func TestCachedLookup_DoesNotCacheMisses(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	lookup, _ := registeredLookup(t)
	cached := NewCachedLookup(lookup, client, 0, nil)

	_, err := cached.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, ports.ErrAffiliateNotFound)
	assert.Empty(t, mr.Keys())
}

func TestCachedLookup_FallsBackWhenRedisIsDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	mr.Close()
	lookup, id := registeredLookup(t)
	cached := NewCachedLookup(lookup, client, time.Minute, nil)

	got, err := cached.FindByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Ana Gómez", got.FullName)
}
