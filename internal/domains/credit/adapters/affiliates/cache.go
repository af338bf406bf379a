package affiliates

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/coopcredit-api-server/internal/domains/credit/ports"
)

const (
	keyPrefix  = "coopcredit:affiliate:"
	DefaultTTL = 5 * time.Minute
)

// CachedLookup keeps resolved affiliates in redis. Cache failures degrade to the wrapped lookup.
type CachedLookup struct {
	next   ports.AffiliateLookup
	client redis.Cmdable
	ttl    time.Duration
	logger *slog.Logger
}

var _ ports.AffiliateLookup = (*CachedLookup)(nil)

type cachedAffiliate struct {
	ID             int64  `json:"id"`
	DocumentNumber string `json:"documentNumber"`
	FullName       string `json:"fullName"`
}

// NewCachedLookup wraps next. A non-positive ttl uses DefaultTTL.
func NewCachedLookup(next ports.AffiliateLookup, client redis.Cmdable, ttl time.Duration, logger *slog.Logger) *CachedLookup {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &CachedLookup{next: next, client: client, ttl: ttl, logger: logger}
}

func (c *CachedLookup) FindByID(ctx context.Context, affiliateID int64) (*ports.Affiliate, error) {
	key := keyPrefix + strconv.FormatInt(affiliateID, 10)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached cachedAffiliate
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
			return &ports.Affiliate{ID: cached.ID, DocumentNumber: cached.DocumentNumber, FullName: cached.FullName}, nil
		}
		c.logger.WarnContext(ctx, "discarding unreadable affiliate cache entry", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.WarnContext(ctx, "affiliate cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	affiliate, err := c.next.FindByID(ctx, affiliateID)
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(cachedAffiliate{
		ID:             affiliate.ID,
		DocumentNumber: affiliate.DocumentNumber,
		FullName:       affiliate.FullName,
	})
	if err == nil {
		if setErr := c.client.Set(ctx, key, payload, c.ttl).Err(); setErr != nil {
			c.logger.WarnContext(ctx, "affiliate cache write failed", slog.String("key", key), slog.String("error", setErr.Error()))
		}
	}
	return affiliate, nil
}
