// Package cart implements the business-scoped cart state container and its
// pricing orchestration. All mutations flow through a Controller which
// serializes writers and recomputes an immutable pricing snapshot after every
// change.
package cart

import (
	"errors"

	"github.com/ameedanxari/menumaker-sub006/internal/money"
)

// ErrNotFound indicates the requested cart could not be located.
var ErrNotFound = errors.New("cart not found")

// ErrInvalidInput is returned when the provided payload is invalid.
var ErrInvalidInput = errors.New("invalid input")

// ErrEmptyCart is returned when checkout or coupon application is attempted
// on a cart without items.
var ErrEmptyCart = errors.New("cart is empty")

// ErrWrongBusiness is returned when an item from another business would end
// up in the cart. The set-business invariant makes this unreachable through
// the HTTP surface; hitting it is a programming error.
var ErrWrongBusiness = errors.New("item belongs to a different business")

// ErrSuperseded marks a coupon validation whose result arrived after a newer
// attempt, a business switch or a cart reset; the stale result is discarded.
var ErrSuperseded = errors.New("coupon validation superseded")

// Item is a single line in a cart. Quantity is always >= 1; an update that
// would drop it to zero removes the line instead.
type Item struct {
	DishID         string      `json:"dishId"`
	Name           string      `json:"name"`
	UnitPriceCents money.Cents `json:"unitPriceCents"`
	Quantity       int         `json:"quantity"`
}

// LineTotalCents returns unit price times quantity.
func (i Item) LineTotalCents() money.Cents {
	return money.Line(i.UnitPriceCents, i.Quantity)
}

// Cart holds the ordered line items of exactly one business. Items keep
// insertion order and are unique by dish id.
type Cart struct {
	ID         string
	BusinessID string
	Items      []Item
}

// SubtotalCents sums all line totals.
func (c Cart) SubtotalCents() money.Cents {
	var subtotal money.Cents
	for _, it := range c.Items {
		subtotal += it.LineTotalCents()
	}
	return subtotal
}

// ItemCount sums quantities across all lines.
func (c Cart) ItemCount() int {
	count := 0
	for _, it := range c.Items {
		count += it.Quantity
	}
	return count
}

func (c Cart) indexOf(dishID string) int {
	for i, it := range c.Items {
		if it.DishID == dishID {
			return i
		}
	}
	return -1
}
