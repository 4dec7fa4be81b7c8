package cart

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Record is the opaque persisted representation of a cart. The engine never
// reads pricing out of it; snapshots are always recomputed.
type Record struct {
	BusinessID string `json:"businessId"`
	Items      []Item `json:"items"`
	CouponCode string `json:"couponCode,omitempty"`
}

// Store persists cart records between requests.
type Store interface {
	Load(ctx context.Context, cartID string) (Record, bool, error)
	Save(ctx context.Context, cartID string, rec Record) error
	Delete(ctx context.Context, cartID string) error
}

// RedisStore keeps cart records as JSON values with a TTL, so abandoned carts
// age out on their own.
type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string
}

func (s RedisStore) key(cartID string) string {
	prefix := s.Prefix
	if prefix == "" {
		prefix = "cart:"
	}
	return prefix + cartID
}

func (s RedisStore) ttl() time.Duration {
	if s.TTL <= 0 {
		return 7 * 24 * time.Hour
	}
	return s.TTL
}

// Load implements Store.
func (s RedisStore) Load(ctx context.Context, cartID string) (Record, bool, error) {
	if s.Client == nil {
		return Record{}, false, errors.New("cart store not configured")
	}
	data, err := s.Client.Get(ctx, s.key(cartID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Record{}, false, nil
		}
		return Record{}, false, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, false, err
	}
	return rec, true, nil
}

// Save implements Store.
func (s RedisStore) Save(ctx context.Context, cartID string, rec Record) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, s.key(cartID), data, s.ttl()).Err()
}

// Delete implements Store.
func (s RedisStore) Delete(ctx context.Context, cartID string) error {
	if s.Client == nil {
		return errors.New("cart store not configured")
	}
	return s.Client.Del(ctx, s.key(cartID)).Err()
}
