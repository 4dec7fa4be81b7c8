package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (Limiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return Limiter{Client: client, Prefix: "rl:"}, mr
}

func TestAllowWithinLimit(t *testing.T) {
	lim, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		allowed, remaining, _, err := lim.Allow(ctx, "cart-1", time.Minute, 3)
		require.NoError(t, err)
		require.True(t, allowed)
		require.Equal(t, 3-(i+1), remaining)
	}
}

func TestAllowOverLimit(t *testing.T) {
	lim, _ := newTestLimiter(t)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		allowed, _, _, err := lim.Allow(ctx, "cart-1", time.Minute, 2)
		require.NoError(t, err)
		require.True(t, allowed)
	}
	allowed, remaining, _, err := lim.Allow(ctx, "cart-1", time.Minute, 2)
	require.NoError(t, err)
	require.False(t, allowed)
	require.Zero(t, remaining)
}

func TestAllowWindowSlides(t *testing.T) {
	lim, _ := newTestLimiter(t)
	ctx := context.Background()
	base := time.Now()
	lim.Now = func() time.Time { return base }

	allowed, _, _, err := lim.Allow(ctx, "cart-1", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _, _, err = lim.Allow(ctx, "cart-1", time.Minute, 1)
	require.NoError(t, err)
	require.False(t, allowed)

	lim.Now = func() time.Time { return base.Add(2 * time.Minute) }
	allowed, _, _, err = lim.Allow(ctx, "cart-1", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAllowKeysIndependent(t *testing.T) {
	lim, _ := newTestLimiter(t)
	ctx := context.Background()

	allowed, _, _, err := lim.Allow(ctx, "cart-1", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, _, _, err = lim.Allow(ctx, "cart-2", time.Minute, 1)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestAllowDisabled(t *testing.T) {
	allowed, remaining, _, err := Limiter{}.Allow(context.Background(), "any", time.Minute, 10)
	require.NoError(t, err)
	require.True(t, allowed)
	require.Equal(t, 10, remaining)
}
