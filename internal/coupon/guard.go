package coupon

import (
	"context"
	"errors"

	"github.com/ameedanxari/menumaker-sub006/internal/resilience"
)

// GuardedCatalog wraps an inner catalog with a circuit breaker. Deterministic
// validation errors count as successes for the breaker; only transient
// failures trip it. An open breaker surfaces as ErrUnavailable without
// touching the inner catalog.
type GuardedCatalog struct {
	Inner   Catalog
	Breaker *resilience.Breaker
}

// Lookup implements Catalog.
func (g GuardedCatalog) Lookup(ctx context.Context, code, businessID string) (Coupon, error) {
	if g.Breaker == nil {
		return g.Inner.Lookup(ctx, code, businessID)
	}
	if !g.Breaker.Allow(ctx) {
		return Coupon{}, errors.Join(ErrUnavailable, resilience.ErrOpenCircuit)
	}
	cp, err := g.Inner.Lookup(ctx, code, businessID)
	switch {
	case err == nil, IsValidationError(err):
		g.Breaker.Report(ctx, true)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		// cancelled lookups say nothing about catalog health
	default:
		g.Breaker.Report(ctx, false)
	}
	return cp, err
}
