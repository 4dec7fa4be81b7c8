package coupon

import (
	"errors"
	"time"

	"github.com/ameedanxari/menumaker-sub006/internal/money"
)

var (
	// ErrNotFound is returned when no coupon exists for the code and business.
	ErrNotFound = errors.New("coupon not found")
	// ErrInactive is returned when the coupon has been disabled.
	ErrInactive = errors.New("coupon not active")
	// ErrExpired is returned when the coupon's validity window has passed.
	ErrExpired = errors.New("coupon expired")
	// ErrBelowMinimum indicates the cart subtotal does not meet the coupon requirement.
	ErrBelowMinimum = errors.New("coupon minimum order value not met")
	// ErrUsageLimitExceeded is surfaced by the catalog when redemption quota is exhausted.
	ErrUsageLimitExceeded = errors.New("coupon usage limit exceeded")
)

// Validate applies the static eligibility rules to an already-fetched coupon.
// The rule order is fixed so every caller reports the same first failure:
// inactive, then expired, then below-minimum. Usage limits are the catalog's
// concern and are never evaluated here.
func Validate(c Coupon, subtotal money.Cents, now time.Time) error {
	if !c.Active {
		return ErrInactive
	}
	if c.ValidUntil != nil && now.After(*c.ValidUntil) {
		return ErrExpired
	}
	if subtotal < c.MinOrderCents {
		return ErrBelowMinimum
	}
	return nil
}

// RejectionReason maps a validation error to the stable reason string shared
// with the client implementations. Unknown errors map to "invalid".
func RejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return "not_found"
	case errors.Is(err, ErrInactive):
		return "inactive"
	case errors.Is(err, ErrExpired):
		return "expired"
	case errors.Is(err, ErrBelowMinimum):
		return "below_minimum"
	case errors.Is(err, ErrUsageLimitExceeded):
		return "usage_limit_exceeded"
	default:
		return "invalid"
	}
}
