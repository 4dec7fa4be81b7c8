// Package money provides integer minor-unit currency arithmetic.
//
// All amounts flowing through the cart and pricing paths are expressed in
// cents so the same totals reproduce bit-for-bit on every platform that
// consumes the pricing fixtures. Floating point is never used for currency.
package money

// Cents is a monetary value stored in minor units.
type Cents = int64

// Line returns the total for a line item. A non-positive quantity
// contributes nothing.
func Line(unitPrice Cents, qty int) Cents {
	if qty <= 0 {
		return 0
	}
	return unitPrice * Cents(qty)
}

// Percent returns amount*percent/100 with the division truncating toward
// zero.
func Percent(amount Cents, percent int64) Cents {
	return amount * percent / 100
}

// ClampDiscount bounds a raw discount to the payable range [0, subtotal].
func ClampDiscount(discount, subtotal Cents) Cents {
	if discount > subtotal {
		discount = subtotal
	}
	if discount < 0 {
		return 0
	}
	return discount
}
