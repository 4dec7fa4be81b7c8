package dish

import (
	"context"
	"errors"
	"fmt"
)

type queryProvider interface {
	ListByBusiness(ctx context.Context, businessID string) ([]Dish, error)
	GetByID(ctx context.Context, id string) (Dish, error)
}

// Service orchestrates dish queries and caching.
type Service struct {
	queries queryProvider
	cache   *Cache
}

// ServiceConfig groups Service dependencies.
type ServiceConfig struct {
	Queries queryProvider
	Cache   *Cache
}

// NewService constructs a Service instance.
func NewService(cfg ServiceConfig) *Service {
	return &Service{queries: cfg.Queries, cache: cfg.Cache}
}

// ListByBusiness returns the menu for a business, caching the listing.
func (s *Service) ListByBusiness(ctx context.Context, businessID string) ([]Dish, error) {
	if businessID == "" {
		return nil, ErrNotFound
	}
	key := listKey(businessID)
	var cached []Dish
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	rows, err := s.queries.ListByBusiness(ctx, businessID)
	if err != nil {
		return nil, fmt.Errorf("list dishes: %w", err)
	}
	if rows == nil {
		rows = []Dish{}
	}
	_ = s.cache.SetJSON(ctx, key, rows)
	return rows, nil
}

// Get returns a dish by id.
func (s *Service) Get(ctx context.Context, id string) (Dish, error) {
	if id == "" {
		return Dish{}, ErrNotFound
	}
	key := dishKey(id)
	var cached Dish
	if ok, err := s.cache.GetJSON(ctx, key, &cached); err == nil && ok {
		return cached, nil
	}
	d, err := s.queries.GetByID(ctx, id)
	if err != nil {
		return Dish{}, err
	}
	_ = s.cache.SetJSON(ctx, key, d)
	return d, nil
}

// GetForCart resolves a dish for adding to a cart pinned to businessID.
// An empty businessID skips the ownership check, which happens when the
// cart has no items yet.
func (s *Service) GetForCart(ctx context.Context, id, businessID string) (Dish, error) {
	d, err := s.Get(ctx, id)
	if err != nil {
		return Dish{}, err
	}
	if businessID != "" && d.BusinessID != businessID {
		return Dish{}, ErrWrongBusiness
	}
	if !d.Available {
		return Dish{}, ErrUnavailable
	}
	return d, nil
}

// InvalidateBusiness drops cached state after a menu changes.
func (s *Service) InvalidateBusiness(ctx context.Context, businessID string, dishIDs ...string) error {
	keys := make([]string, 0, len(dishIDs)+1)
	keys = append(keys, listKey(businessID))
	for _, id := range dishIDs {
		keys = append(keys, dishKey(id))
	}
	return s.cache.Invalidate(ctx, keys...)
}

// IsValidationError reports whether err represents a dish rule failure
// rather than an infrastructure fault.
func IsValidationError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUnavailable) ||
		errors.Is(err, ErrWrongBusiness)
}

func listKey(businessID string) string { return "dishes:" + businessID }
func dishKey(id string) string         { return "dish:" + id }
