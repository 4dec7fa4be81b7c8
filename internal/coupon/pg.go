package coupon

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const lookupSQL = `
SELECT code, business_id, kind, value, max_discount_cents, min_order_cents,
       valid_until, active, usage_limit_type, total_usage_limit, used_count
FROM coupons
WHERE upper(code) = upper($1) AND business_id = $2`

// PGCatalog resolves coupons from Postgres. It is the server-authoritative
// source, so it also enforces the total usage quota that clients only ever
// observe as a pass-through error.
type PGCatalog struct {
	Pool *pgxpool.Pool
}

// Lookup implements Catalog.
func (c PGCatalog) Lookup(ctx context.Context, code, businessID string) (Coupon, error) {
	if c.Pool == nil {
		return Coupon{}, errors.New("coupon catalog not configured")
	}
	var (
		cp         Coupon
		kind       string
		limitType  string
		validUntil *time.Time
		usedCount  int32
	)
	row := c.Pool.QueryRow(ctx, lookupSQL, code, businessID)
	err := row.Scan(&cp.Code, &cp.BusinessID, &kind, &cp.Value, &cp.MaxDiscountCents,
		&cp.MinOrderCents, &validUntil, &cp.Active, &limitType, &cp.TotalUsageLimit, &usedCount)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Coupon{}, ErrNotFound
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return Coupon{}, err
		}
		return Coupon{}, errors.Join(ErrUnavailable, err)
	}
	cp.Type = DiscountType(kind)
	cp.UsageLimit = UsageLimitType(limitType)
	cp.ValidUntil = validUntil
	if cp.UsageLimit == UsageTotal && cp.TotalUsageLimit != nil && usedCount >= *cp.TotalUsageLimit {
		return Coupon{}, ErrUsageLimitExceeded
	}
	return cp, nil
}

// RecordUsage increments the redemption counter after a successful checkout.
func (c PGCatalog) RecordUsage(ctx context.Context, tx pgx.Tx, code, businessID string) error {
	_, err := tx.Exec(ctx,
		`UPDATE coupons SET used_count = used_count + 1 WHERE upper(code) = upper($1) AND business_id = $2`,
		code, businessID)
	return err
}
