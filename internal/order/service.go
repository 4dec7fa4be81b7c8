package order

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ameedanxari/menumaker-sub006/internal/cart"
	"github.com/ameedanxari/menumaker-sub006/internal/coupon"
	"github.com/ameedanxari/menumaker-sub006/internal/events"
	"github.com/ameedanxari/menumaker-sub006/internal/obs"
)

const insertOrderSQL = `
INSERT INTO orders (id, cart_id, business_id, subtotal_cents, discount_cents, total_cents, coupon_code, currency_code, status)
VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), $8, $9)
RETURNING created_at`

const insertItemSQL = `
INSERT INTO order_items (order_id, dish_id, name, unit_price_cents, quantity, line_total_cents)
VALUES ($1, $2, $3, $4, $5, $6)`

// CouponInvalidator drops cached coupon entries whose usage counters moved.
type CouponInvalidator interface {
	Invalidate(ctx context.Context, code, businessID string) error
}

// Service creates and reads orders. It implements cart.OrderCreator.
type Service struct {
	Pool        *pgxpool.Pool
	Coupons     coupon.PGCatalog
	CouponCache CouponInvalidator
	Bus         *events.Bus
	Currency    string
	Logger      zerolog.Logger
}

// Create persists the checkout snapshot as an order inside one transaction,
// recording coupon usage when a coupon made it to checkout. The order.created
// event is emitted after commit; a failed emit never undoes the order.
func (s *Service) Create(ctx context.Context, in cart.OrderInput) (string, error) {
	if s.Pool == nil {
		return "", errors.New("order service not configured")
	}
	if len(in.Items) == 0 {
		return "", cart.ErrEmptyCart
	}

	id := uuid.NewString()
	var createdAt time.Time

	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin order tx: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	row := tx.QueryRow(ctx, insertOrderSQL,
		id, in.CartID, in.BusinessID,
		int64(in.SubtotalCents), int64(in.DiscountCents), int64(in.TotalCents),
		in.CouponCode, s.currency(), StatusCreated)
	if err := row.Scan(&createdAt); err != nil {
		return "", fmt.Errorf("insert order: %w", err)
	}

	batch := &pgx.Batch{}
	for _, item := range in.Items {
		batch.Queue(insertItemSQL, id, item.DishID, item.Name,
			int64(item.UnitPriceCents), item.Quantity, int64(item.LineTotalCents()))
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return "", fmt.Errorf("insert order items: %w", err)
	}

	if in.CouponCode != "" {
		if err := s.Coupons.RecordUsage(ctx, tx, in.CouponCode, in.BusinessID); err != nil {
			return "", fmt.Errorf("record coupon usage: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit order: %w", err)
	}

	// the usage counter moved; a stale cache entry would keep an exhausted
	// coupon passing lookup until its TTL runs out
	if in.CouponCode != "" && s.CouponCache != nil {
		if err := s.CouponCache.Invalidate(ctx, in.CouponCode, in.BusinessID); err != nil {
			s.Logger.Warn().Err(err).Str("coupon_code", in.CouponCode).Msg("invalidate coupon cache failed")
		}
	}

	obs.ObserveOrderTotal(int64(in.TotalCents))

	if s.Bus != nil {
		payload := map[string]any{
			"businessId":   in.BusinessID,
			"cartId":       in.CartID,
			"totalCents":   int64(in.TotalCents),
			"couponCode":   in.CouponCode,
			"currencyCode": s.currency(),
			"itemCount":    len(in.Items),
		}
		if _, err := s.Bus.Emit(ctx, events.TopicOrderCreated, id, payload); err != nil {
			s.Logger.Warn().Err(err).Str("order_id", id).Msg("order created but event emit failed")
		}
	}
	return id, nil
}

func (s *Service) currency() string {
	if s.Currency == "" {
		return "USD"
	}
	return s.Currency
}

const listOrdersSQL = `
SELECT id, cart_id, business_id, subtotal_cents, discount_cents, total_cents,
       COALESCE(coupon_code, ''), currency_code, status, created_at
FROM orders
ORDER BY created_at DESC
LIMIT $1 OFFSET $2`

const getOrderSQL = `
SELECT id, cart_id, business_id, subtotal_cents, discount_cents, total_cents,
       COALESCE(coupon_code, ''), currency_code, status, created_at
FROM orders
WHERE id = $1`

const listItemsSQL = `
SELECT dish_id, name, unit_price_cents, quantity, line_total_cents
FROM order_items
WHERE order_id = $1`

// List returns recent orders without their line items.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Order, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.Pool.Query(ctx, listOrdersSQL, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []Order{}
	for rows.Next() {
		var o Order
		if err := scanOrder(rows, &o); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Get returns one order including its line items.
func (s *Service) Get(ctx context.Context, id string) (Order, error) {
	var o Order
	row := s.Pool.QueryRow(ctx, getOrderSQL, id)
	if err := scanOrder(row, &o); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Order{}, ErrNotFound
		}
		return Order{}, err
	}

	rows, err := s.Pool.Query(ctx, listItemsSQL, id)
	if err != nil {
		return Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var line Line
		if err := rows.Scan(&line.DishID, &line.Name, &line.UnitPriceCents, &line.Quantity, &line.LineTotalCents); err != nil {
			return Order{}, err
		}
		o.Items = append(o.Items, line)
	}
	return o, rows.Err()
}

func scanOrder(row pgx.Row, o *Order) error {
	return row.Scan(&o.ID, &o.CartID, &o.BusinessID, &o.SubtotalCents, &o.DiscountCents,
		&o.TotalCents, &o.CouponCode, &o.CurrencyCode, &o.Status, &o.CreatedAt)
}
