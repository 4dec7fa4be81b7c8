// Package pricing computes cart discounts and totals. Every rule here is
// mirrored by the Android, iOS and web clients; the golden vectors under
// testdata keep the implementations in lockstep, so any change to the
// arithmetic must ship with an updated vector file.
package pricing

import (
	"github.com/ameedanxari/menumaker-sub006/internal/coupon"
	"github.com/ameedanxari/menumaker-sub006/internal/money"
)

// Item describes a line item used for pricing calculation.
type Item struct {
	Qty       int
	UnitPrice money.Cents
}

// Summary aggregates computed pricing components.
type Summary struct {
	Subtotal  money.Cents
	Discount  money.Cents
	Total     money.Cents
	ItemCount int
}

// DiscountCents computes the discount a coupon removes from the given
// subtotal. Percentage discounts floor the division and honour the optional
// cap; both types are clamped to [0, subtotal] so a coupon can never discount
// more than the subtotal and a malformed negative value never goes below
// zero. All arithmetic is integer, truncating toward zero.
func DiscountCents(c coupon.Coupon, subtotal money.Cents) money.Cents {
	var raw money.Cents
	switch c.Type {
	case coupon.DiscountPercentage:
		raw = money.Percent(subtotal, c.Value)
		if c.MaxDiscountCents != nil && raw > *c.MaxDiscountCents {
			raw = *c.MaxDiscountCents
		}
	case coupon.DiscountFixed:
		raw = c.Value
	default:
		return 0
	}
	return money.ClampDiscount(raw, subtotal)
}

// FinalTotalCents derives the payable total, never below zero.
func FinalTotalCents(subtotal, discount money.Cents) money.Cents {
	total := subtotal - discount
	if total < 0 {
		return 0
	}
	return total
}

// Compute aggregates line items and a precomputed discount into a summary.
// The discount is clamped against the computed subtotal regardless of how it
// was obtained.
func Compute(items []Item, discount money.Cents) Summary {
	var subtotal money.Cents
	count := 0
	for _, it := range items {
		if it.Qty <= 0 {
			continue
		}
		subtotal += money.Line(it.UnitPrice, it.Qty)
		count += it.Qty
	}
	discount = money.ClampDiscount(discount, subtotal)
	return Summary{
		Subtotal:  subtotal,
		Discount:  discount,
		Total:     FinalTotalCents(subtotal, discount),
		ItemCount: count,
	}
}
