package cart

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/ameedanxari/menumaker-sub006/internal/money"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewManager(fixedCatalog(), RedisStore{Client: client, TTL: time.Hour})
}

func TestManagerCreateAndGet(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	ctrl, err := m.Create(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, ctrl.ID())

	same, err := m.Get(ctx, ctrl.ID())
	require.NoError(t, err)
	require.Same(t, ctrl, same)
}

func TestManagerGetUnknownCart(t *testing.T) {
	m := newTestManager(t)
	_, err := m.Get(context.Background(), "ghost")
	require.ErrorIs(t, err, ErrNotFound)

	_, err = m.Get(context.Background(), "")
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestManagerRehydratesFromStore(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	ctrl, err := m.Create(ctx)
	require.NoError(t, err)
	_, err = ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	require.NoError(t, m.Persist(ctx, ctrl))

	// simulate a process restart by forgetting the live controller
	m.mu.Lock()
	delete(m.controllers, ctrl.ID())
	m.mu.Unlock()

	again, err := m.Get(ctx, ctrl.ID())
	require.NoError(t, err)
	require.NotSame(t, ctrl, again)

	snap := again.Snapshot()
	require.Equal(t, "b1", snap.BusinessID)
	require.Equal(t, money.Cents(1000), snap.SubtotalCents)
}

func TestManagerDrop(t *testing.T) {
	m := newTestManager(t)
	ctx := context.Background()

	ctrl, err := m.Create(ctx)
	require.NoError(t, err)
	require.NoError(t, m.Drop(ctx, ctrl.ID()))

	_, err = m.Get(ctx, ctrl.ID())
	require.ErrorIs(t, err, ErrNotFound)
}
