package dish

import "errors"

var (
	// ErrNotFound indicates the dish does not exist.
	ErrNotFound = errors.New("dish not found")
	// ErrUnavailable indicates the dish exists but cannot be ordered.
	ErrUnavailable = errors.New("dish unavailable")
	// ErrWrongBusiness indicates the dish belongs to another business.
	ErrWrongBusiness = errors.New("dish belongs to another business")
)

// Dish represents a menu item offered by a business.
type Dish struct {
	ID          string `json:"id"`
	BusinessID  string `json:"businessId"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	PriceCents  int64  `json:"priceCents"`
	Available   bool   `json:"available"`
}
