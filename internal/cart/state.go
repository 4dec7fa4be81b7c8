package cart

import "github.com/ameedanxari/menumaker-sub006/internal/money"

// CouponPhase enumerates the coupon application lifecycle.
type CouponPhase string

const (
	// CouponNone means no coupon has been entered.
	CouponNone CouponPhase = "none"
	// CouponValidating means a catalog lookup is in flight.
	CouponValidating CouponPhase = "validating"
	// CouponApplied means the coupon passed validation and discounts the cart.
	CouponApplied CouponPhase = "applied"
	// CouponRejected means validation failed; the entered code is retained so
	// the UI can invite the user to recover (e.g. add items to reach the
	// minimum order value).
	CouponRejected CouponPhase = "rejected"
)

// CouponState is the UI-facing projection of the coupon lifecycle. It is
// re-evaluated on every subtotal-affecting mutation while a coupon is
// applied.
type CouponState struct {
	Phase         CouponPhase `json:"phase"`
	Code          string      `json:"code,omitempty"`
	Reason        string      `json:"reason,omitempty"`
	DiscountCents money.Cents `json:"discountCents"`
}

// Snapshot is the immutable pricing view handed to callers after every
// mutation. It is recomputed, never stored.
type Snapshot struct {
	CartID        string      `json:"cartId"`
	BusinessID    string      `json:"businessId,omitempty"`
	Items         []Item      `json:"items"`
	ItemCount     int         `json:"itemCount"`
	SubtotalCents money.Cents `json:"subtotalCents"`
	DiscountCents money.Cents `json:"discountCents"`
	TotalCents    money.Cents `json:"totalCents"`
	Coupon        CouponState `json:"coupon"`
}
