package coupon

import (
	"context"
	"errors"
)

// ErrUnavailable marks a transient catalog failure. The engine never retries
// these itself; the calling layer owns the retry affordance.
var ErrUnavailable = errors.New("coupon catalog unavailable")

// Catalog looks up coupon records. Lookups are case-insensitive on code and
// scoped to a single business. Implementations must honour context
// cancellation so superseded validation attempts can be abandoned.
type Catalog interface {
	Lookup(ctx context.Context, code, businessID string) (Coupon, error)
}

// CatalogFunc adapts a function to the Catalog interface.
type CatalogFunc func(ctx context.Context, code, businessID string) (Coupon, error)

// Lookup implements Catalog.
func (f CatalogFunc) Lookup(ctx context.Context, code, businessID string) (Coupon, error) {
	return f(ctx, code, businessID)
}

// IsValidationError reports whether the error is one of the deterministic
// rule violations, as opposed to a transient catalog failure.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrInactive) ||
		errors.Is(err, ErrExpired) ||
		errors.Is(err, ErrBelowMinimum) ||
		errors.Is(err, ErrUsageLimitExceeded)
}
