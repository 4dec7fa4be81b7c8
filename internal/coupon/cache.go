package coupon

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CachedCatalog layers a Redis JSON cache over an inner catalog. Validation
// errors are not cached; only successful lookups are, so a deactivated coupon
// is re-checked once the entry expires.
type CachedCatalog struct {
	Inner  Catalog
	Client *redis.Client
	TTL    time.Duration
}

func (c CachedCatalog) key(code, businessID string) string {
	return "coupon:" + businessID + ":" + NormalizeCode(code)
}

// Lookup implements Catalog.
func (c CachedCatalog) Lookup(ctx context.Context, code, businessID string) (Coupon, error) {
	if c.Client == nil || c.TTL <= 0 {
		return c.Inner.Lookup(ctx, code, businessID)
	}
	key := c.key(code, businessID)
	if data, err := c.Client.Get(ctx, key).Bytes(); err == nil {
		var cp Coupon
		if unmarshalErr := json.Unmarshal(data, &cp); unmarshalErr == nil {
			return cp, nil
		}
		// fall through on a corrupt entry
	}
	cp, err := c.Inner.Lookup(ctx, code, businessID)
	if err != nil {
		return Coupon{}, err
	}
	if data, marshalErr := json.Marshal(cp); marshalErr == nil {
		_ = c.Client.Set(ctx, key, data, c.TTL).Err()
	}
	return cp, nil
}

// Invalidate drops the cached entry, used after usage counters change.
func (c CachedCatalog) Invalidate(ctx context.Context, code, businessID string) error {
	if c.Client == nil {
		return nil
	}
	return c.Client.Del(ctx, c.key(code, businessID)).Err()
}
