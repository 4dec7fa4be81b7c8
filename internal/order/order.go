package order

import (
	"errors"
	"time"
)

// ErrNotFound indicates the order does not exist.
var ErrNotFound = errors.New("order not found")

// Line is a single purchased dish within an order.
type Line struct {
	DishID         string `json:"dishId"`
	Name           string `json:"name"`
	UnitPriceCents int64  `json:"unitPriceCents"`
	Quantity       int    `json:"quantity"`
	LineTotalCents int64  `json:"lineTotalCents"`
}

// Order is the immutable record produced at checkout.
type Order struct {
	ID            string    `json:"id"`
	CartID        string    `json:"cartId"`
	BusinessID    string    `json:"businessId"`
	Items         []Line    `json:"items"`
	SubtotalCents int64     `json:"subtotalCents"`
	DiscountCents int64     `json:"discountCents"`
	TotalCents    int64     `json:"totalCents"`
	CouponCode    string    `json:"couponCode,omitempty"`
	CurrencyCode  string    `json:"currencyCode"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"createdAt"`
}

// StatusCreated is the only status this service assigns; payment flows
// downstream own the rest of the lifecycle.
const StatusCreated = "created"
