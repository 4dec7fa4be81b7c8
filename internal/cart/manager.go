package cart

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/ameedanxari/menumaker-sub006/internal/coupon"
)

// Manager owns the live controllers, one per cart id, and bridges them to the
// storage collaborator. Controllers are created on demand and rehydrated from
// the store after a process restart.
type Manager struct {
	Catalog coupon.Catalog
	Store   Store
	Now     func() time.Time

	mu          sync.Mutex
	controllers map[string]*Controller
}

// NewManager constructs a manager.
func NewManager(catalog coupon.Catalog, store Store) *Manager {
	return &Manager{
		Catalog:     catalog,
		Store:       store,
		controllers: make(map[string]*Controller),
	}
}

// Create registers a new empty cart and persists its initial record.
func (m *Manager) Create(ctx context.Context) (*Controller, error) {
	if m == nil || m.Catalog == nil {
		return nil, errors.New("cart manager not configured")
	}
	id := uuid.NewString()
	ctrl := NewController(id, m.Catalog)
	ctrl.Now = m.Now

	m.mu.Lock()
	m.controllers[id] = ctrl
	m.mu.Unlock()

	if m.Store != nil {
		if err := m.Store.Save(ctx, id, ctrl.Record()); err != nil {
			return nil, err
		}
	}
	return ctrl, nil
}

// Get returns the live controller for the cart id, rehydrating from the
// store when the process does not hold one yet.
func (m *Manager) Get(ctx context.Context, cartID string) (*Controller, error) {
	if m == nil || m.Catalog == nil {
		return nil, errors.New("cart manager not configured")
	}
	if cartID == "" {
		return nil, ErrInvalidInput
	}

	m.mu.Lock()
	ctrl, ok := m.controllers[cartID]
	m.mu.Unlock()
	if ok {
		return ctrl, nil
	}

	if m.Store == nil {
		return nil, ErrNotFound
	}
	rec, found, err := m.Store.Load(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, ErrNotFound
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.controllers[cartID]; ok {
		return existing, nil
	}
	ctrl = NewController(cartID, m.Catalog)
	ctrl.Now = m.Now
	ctrl.restore(rec)
	m.controllers[cartID] = ctrl
	return ctrl, nil
}

// Persist writes the controller's current record through the store.
func (m *Manager) Persist(ctx context.Context, ctrl *Controller) error {
	if m.Store == nil || ctrl == nil {
		return nil
	}
	return m.Store.Save(ctx, ctrl.ID(), ctrl.Record())
}

// Drop removes the cart from memory and storage, used after checkout.
func (m *Manager) Drop(ctx context.Context, cartID string) error {
	m.mu.Lock()
	delete(m.controllers, cartID)
	m.mu.Unlock()

	if m.Store == nil {
		return nil
	}
	return m.Store.Delete(ctx, cartID)
}
