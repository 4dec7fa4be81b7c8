package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/ameedanxari/menumaker-sub006/internal/coupon"
	"github.com/ameedanxari/menumaker-sub006/internal/money"
	"github.com/ameedanxari/menumaker-sub006/internal/pricing"
)

// OrderInput is the typed record handed to the order-creation collaborator at
// checkout.
type OrderInput struct {
	CartID        string      `json:"cartId"`
	BusinessID    string      `json:"businessId"`
	Items         []Item      `json:"items"`
	SubtotalCents money.Cents `json:"subtotalCents"`
	DiscountCents money.Cents `json:"discountCents"`
	TotalCents    money.Cents `json:"totalCents"`
	CouponCode    string      `json:"couponCode,omitempty"`
}

// OrderCreator consumes the checkout snapshot and returns the created order
// id. The cart is cleared only after Create reports success.
type OrderCreator interface {
	Create(ctx context.Context, in OrderInput) (string, error)
}

// Controller serializes all mutations of one cart and keeps the coupon
// lifecycle consistent with the cart contents. Methods may be called from any
// goroutine; the mutex enforces the single-writer discipline the pricing
// rules assume.
type Controller struct {
	mu      sync.Mutex
	cart    Cart
	coupon  *coupon.Coupon
	state   CouponState
	gen     uint64
	catalog coupon.Catalog

	// Now is the clock used for coupon expiry checks, overridable in tests.
	Now func() time.Time
}

// NewController constructs a controller for an empty cart.
func NewController(id string, catalog coupon.Catalog) *Controller {
	return &Controller{
		cart:    Cart{ID: id},
		state:   CouponState{Phase: CouponNone},
		catalog: catalog,
	}
}

// ID returns the cart identifier.
func (c *Controller) ID() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cart.ID
}

func (c *Controller) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// AddItem appends the dish as a new line with quantity 1 or increments the
// existing line. The first item pins the cart to the dish's business;
// afterwards a mismatched business is a programming error, since callers must
// switch business explicitly first.
func (c *Controller) AddItem(businessID string, item Item) (Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if item.DishID == "" || item.UnitPriceCents < 0 {
		return c.snapshotLocked(), ErrInvalidInput
	}
	if c.cart.BusinessID == "" {
		c.cart.BusinessID = businessID
	} else if c.cart.BusinessID != businessID {
		return c.snapshotLocked(), ErrWrongBusiness
	}
	if i := c.cart.indexOf(item.DishID); i >= 0 {
		c.cart.Items[i].Quantity++
	} else {
		item.Quantity = 1
		c.cart.Items = append(c.cart.Items, item)
	}
	c.reevaluateLocked()
	return c.snapshotLocked(), nil
}

// RemoveItem deletes the matching line. Removing an absent dish is a no-op.
func (c *Controller) RemoveItem(dishID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.cart.indexOf(dishID); i >= 0 {
		c.cart.Items = append(c.cart.Items[:i], c.cart.Items[i+1:]...)
		c.reevaluateLocked()
	}
	return c.snapshotLocked()
}

// UpdateQuantity sets the quantity of an existing line. A quantity <= 0
// removes the line. It never creates a line that did not exist.
func (c *Controller) UpdateQuantity(dishID string, qty int) Snapshot {
	if qty <= 0 {
		return c.RemoveItem(dishID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	if i := c.cart.indexOf(dishID); i >= 0 {
		c.cart.Items[i].Quantity = qty
		c.reevaluateLocked()
	}
	return c.snapshotLocked()
}

// SetBusiness switches the cart to another business. A switch away from a
// different, non-empty business clears items and coupon, because pricing and
// dish availability are both business-scoped. Setting the same id is a no-op
// on items.
func (c *Controller) SetBusiness(businessID string) Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	if businessID == c.cart.BusinessID {
		return c.snapshotLocked()
	}
	if c.cart.BusinessID != "" {
		c.resetLocked()
	}
	c.cart.BusinessID = businessID
	return c.snapshotLocked()
}

// Clear empties the cart, dropping items, business and coupon state.
func (c *Controller) Clear() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.resetLocked()
	c.cart.BusinessID = ""
	return c.snapshotLocked()
}

// RemoveCoupon returns the coupon lifecycle to its initial state.
func (c *Controller) RemoveCoupon() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	c.coupon = nil
	c.state = CouponState{Phase: CouponNone}
	return c.snapshotLocked()
}

// ApplyCoupon normalizes the code, looks it up in the catalog and applies the
// validation rules against the current subtotal. The lookup runs outside the
// lock; its result is discarded when a newer attempt, a business switch or a
// reset superseded this one. On a transient catalog failure the previous
// coupon state is restored untouched so the calling layer owns the retry.
func (c *Controller) ApplyCoupon(ctx context.Context, code string) (Snapshot, error) {
	code = coupon.NormalizeCode(code)
	if code == "" {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.snapshotLocked(), ErrInvalidInput
	}

	c.mu.Lock()
	if len(c.cart.Items) == 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, ErrEmptyCart
	}
	businessID := c.cart.BusinessID
	prevState, prevCoupon := c.state, c.coupon
	c.gen++
	gen := c.gen
	c.coupon = nil
	c.state = CouponState{Phase: CouponValidating, Code: code}
	c.mu.Unlock()

	cp, lookupErr := c.catalog.Lookup(ctx, code, businessID)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gen != gen || c.cart.BusinessID != businessID {
		return c.snapshotLocked(), ErrSuperseded
	}
	if lookupErr != nil {
		if coupon.IsValidationError(lookupErr) {
			c.state = CouponState{Phase: CouponRejected, Code: code, Reason: coupon.RejectionReason(lookupErr)}
			return c.snapshotLocked(), lookupErr
		}
		// transient failure: leave engine state as it was
		c.state, c.coupon = prevState, prevCoupon
		if errors.Is(lookupErr, context.Canceled) || errors.Is(lookupErr, context.DeadlineExceeded) {
			return c.snapshotLocked(), lookupErr
		}
		return c.snapshotLocked(), errors.Join(coupon.ErrUnavailable, lookupErr)
	}

	subtotal := c.cart.SubtotalCents()
	if err := coupon.Validate(cp, subtotal, c.now()); err != nil {
		c.state = CouponState{Phase: CouponRejected, Code: code, Reason: coupon.RejectionReason(err)}
		if errors.Is(err, coupon.ErrBelowMinimum) {
			// retain the record so growing the cart past the minimum
			// re-applies the coupon without a second lookup
			retained := cp
			c.coupon = &retained
		}
		return c.snapshotLocked(), err
	}

	applied := cp
	c.coupon = &applied
	c.state = CouponState{
		Phase:         CouponApplied,
		Code:          coupon.NormalizeCode(cp.Code),
		DiscountCents: pricing.DiscountCents(cp, subtotal),
	}
	return c.snapshotLocked(), nil
}

// Checkout hands the current snapshot to the order collaborator and clears
// the cart once creation succeeds.
func (c *Controller) Checkout(ctx context.Context, creator OrderCreator) (string, Snapshot, error) {
	c.mu.Lock()
	if len(c.cart.Items) == 0 {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return "", snap, ErrEmptyCart
	}
	snap := c.snapshotLocked()
	in := OrderInput{
		CartID:        snap.CartID,
		BusinessID:    snap.BusinessID,
		Items:         snap.Items,
		SubtotalCents: snap.SubtotalCents,
		DiscountCents: snap.DiscountCents,
		TotalCents:    snap.TotalCents,
	}
	if snap.Coupon.Phase == CouponApplied {
		in.CouponCode = snap.Coupon.Code
	}
	c.mu.Unlock()

	orderID, err := creator.Create(ctx, in)
	if err != nil {
		c.mu.Lock()
		defer c.mu.Unlock()
		return "", c.snapshotLocked(), err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.resetLocked()
	c.cart.BusinessID = ""
	return orderID, c.snapshotLocked(), nil
}

// Snapshot returns the current immutable pricing view.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Record returns the persisted representation for the storage collaborator.
func (c *Controller) Record() Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	rec := Record{
		BusinessID: c.cart.BusinessID,
		Items:      append([]Item(nil), c.cart.Items...),
	}
	if c.state.Phase == CouponApplied || c.state.Phase == CouponRejected {
		rec.CouponCode = c.state.Code
	}
	return rec
}

// restore rehydrates controller state from a persisted record. The coupon
// code, if any, is left unapplied; callers re-run ApplyCoupon to revalidate
// against the catalog.
func (c *Controller) restore(rec Record) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cart.BusinessID = rec.BusinessID
	c.cart.Items = nil
	for _, it := range rec.Items {
		if it.Quantity <= 0 || it.DishID == "" {
			continue
		}
		if c.cart.indexOf(it.DishID) >= 0 {
			continue
		}
		c.cart.Items = append(c.cart.Items, it)
	}
}

// resetLocked drops items and coupon state and invalidates in-flight
// validations. The business id is left to the caller.
func (c *Controller) resetLocked() {
	c.gen++
	c.cart.Items = nil
	c.coupon = nil
	c.state = CouponState{Phase: CouponNone}
}

// reevaluateLocked re-applies the minimum-order rule after a subtotal change.
// While applied, the discount tracks the subtotal; dropping below the minimum
// moves to rejected with the code retained, and recovering above it
// re-applies without another catalog lookup.
func (c *Controller) reevaluateLocked() {
	if c.coupon == nil {
		return
	}
	subtotal := c.cart.SubtotalCents()
	switch c.state.Phase {
	case CouponApplied:
		if subtotal < c.coupon.MinOrderCents {
			c.state = CouponState{Phase: CouponRejected, Code: c.state.Code, Reason: coupon.RejectionReason(coupon.ErrBelowMinimum)}
			return
		}
		c.state.DiscountCents = pricing.DiscountCents(*c.coupon, subtotal)
	case CouponRejected:
		if c.state.Reason != coupon.RejectionReason(coupon.ErrBelowMinimum) {
			return
		}
		if subtotal >= c.coupon.MinOrderCents {
			c.state = CouponState{
				Phase:         CouponApplied,
				Code:          c.state.Code,
				DiscountCents: pricing.DiscountCents(*c.coupon, subtotal),
			}
		}
	}
}

func (c *Controller) snapshotLocked() Snapshot {
	items := append([]Item(nil), c.cart.Items...)
	var discount money.Cents
	if c.state.Phase == CouponApplied {
		discount = c.state.DiscountCents
	}
	lines := make([]pricing.Item, 0, len(items))
	for _, it := range items {
		lines = append(lines, pricing.Item{Qty: it.Quantity, UnitPrice: it.UnitPriceCents})
	}
	summary := pricing.Compute(lines, discount)
	return Snapshot{
		CartID:        c.cart.ID,
		BusinessID:    c.cart.BusinessID,
		Items:         items,
		ItemCount:     summary.ItemCount,
		SubtotalCents: summary.Subtotal,
		DiscountCents: summary.Discount,
		TotalCents:    summary.Total,
		Coupon:        c.state,
	}
}
