package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ameedanxari/menumaker-sub006/internal/coupon"
	"github.com/ameedanxari/menumaker-sub006/internal/money"
)

func fixedCatalog(coupons ...coupon.Coupon) coupon.Catalog {
	return coupon.CatalogFunc(func(_ context.Context, code, businessID string) (coupon.Coupon, error) {
		for _, c := range coupons {
			if c.Matches(code) && c.BusinessID == businessID {
				return c, nil
			}
		}
		return coupon.Coupon{}, coupon.ErrNotFound
	})
}

func percentCoupon(code string, value int64, capCents *int64, minOrder int64) coupon.Coupon {
	return coupon.Coupon{
		Code:             code,
		BusinessID:       "b1",
		Type:             coupon.DiscountPercentage,
		Value:            value,
		MaxDiscountCents: capCents,
		MinOrderCents:    minOrder,
		Active:           true,
		UsageLimit:       coupon.UsageUnlimited,
	}
}

func padThai() Item    { return Item{DishID: "d1", Name: "Pad Thai", UnitPriceCents: 1000} }
func springRoll() Item { return Item{DishID: "d2", Name: "Spring Roll", UnitPriceCents: 500} }

func TestAddItemIncrementsExistingLine(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())

	for i := 0; i < 3; i++ {
		_, err := ctrl.AddItem("b1", padThai())
		require.NoError(t, err)
	}
	snap := ctrl.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, 3, snap.Items[0].Quantity)
	require.Equal(t, money.Cents(3000), snap.SubtotalCents)
	require.Equal(t, 3, snap.ItemCount)
}

func TestAddItemWrongBusiness(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	_, err = ctrl.AddItem("b2", springRoll())
	require.ErrorIs(t, err, ErrWrongBusiness)
	require.Len(t, ctrl.Snapshot().Items, 1)
}

func TestUpdateQuantityZeroRemovesLine(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	snap := ctrl.UpdateQuantity("d1", 0)
	require.Empty(t, snap.Items)
	require.Equal(t, money.Cents(0), snap.SubtotalCents)
}

func TestUpdateQuantityNeverCreatesLine(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	snap := ctrl.UpdateQuantity("ghost", 5)
	require.Empty(t, snap.Items)
}

func TestSetBusinessSwitchClearsCartAndCoupon(t *testing.T) {
	cp := percentCoupon("SAVE15", 15, nil, 0)
	ctrl := NewController("c1", fixedCatalog(cp))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.ApplyCoupon(context.Background(), "SAVE15")
	require.NoError(t, err)

	// same business: no-op
	snap := ctrl.SetBusiness("b1")
	require.Len(t, snap.Items, 1)
	require.Equal(t, CouponApplied, snap.Coupon.Phase)

	// different business: items and coupon go
	snap = ctrl.SetBusiness("b2")
	require.Empty(t, snap.Items)
	require.Equal(t, CouponNone, snap.Coupon.Phase)
	require.Equal(t, "b2", snap.BusinessID)
}

func TestSetBusinessOnEmptyCartKeepsNothingToClear(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	snap := ctrl.SetBusiness("b1")
	require.Equal(t, "b1", snap.BusinessID)
	require.Empty(t, snap.Items)
}

func TestApplyCouponHappyPath(t *testing.T) {
	capCents := int64(200)
	cp := percentCoupon("SAVE15", 15, &capCents, 0)
	ctrl := NewController("c1", fixedCatalog(cp))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	snap, err := ctrl.ApplyCoupon(context.Background(), "  save15 ")
	require.NoError(t, err)
	require.Equal(t, CouponApplied, snap.Coupon.Phase)
	require.Equal(t, "SAVE15", snap.Coupon.Code)
	require.Equal(t, money.Cents(200), snap.DiscountCents)
	require.Equal(t, money.Cents(1800), snap.TotalCents)
}

func TestApplyCouponEmptyCart(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	_, err := ctrl.ApplyCoupon(context.Background(), "SAVE15")
	require.ErrorIs(t, err, ErrEmptyCart)
}

func TestApplyCouponRejectedReasons(t *testing.T) {
	inactive := percentCoupon("OFF", 10, nil, 0)
	inactive.Active = false
	past := time.Now().Add(-time.Hour)
	expired := percentCoupon("OLD", 10, nil, 0)
	expired.ValidUntil = &past

	ctrl := NewController("c1", fixedCatalog(inactive, expired))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	snap, err := ctrl.ApplyCoupon(context.Background(), "OFF")
	require.ErrorIs(t, err, coupon.ErrInactive)
	require.Equal(t, CouponRejected, snap.Coupon.Phase)
	require.Equal(t, "inactive", snap.Coupon.Reason)
	require.Equal(t, money.Cents(0), snap.DiscountCents)

	snap, err = ctrl.ApplyCoupon(context.Background(), "OLD")
	require.ErrorIs(t, err, coupon.ErrExpired)
	require.Equal(t, "expired", snap.Coupon.Reason)

	snap, err = ctrl.ApplyCoupon(context.Background(), "NOPE")
	require.ErrorIs(t, err, coupon.ErrNotFound)
	require.Equal(t, "not_found", snap.Coupon.Reason)
}

func TestBelowMinimumRetainsAndRecovers(t *testing.T) {
	cp := percentCoupon("BIG", 10, nil, 2500)
	lookups := 0
	catalog := coupon.CatalogFunc(func(_ context.Context, code, businessID string) (coupon.Coupon, error) {
		lookups++
		if cp.Matches(code) && cp.BusinessID == businessID {
			return cp, nil
		}
		return coupon.Coupon{}, coupon.ErrNotFound
	})

	ctrl := NewController("c1", catalog)
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	snap, err := ctrl.ApplyCoupon(context.Background(), "BIG")
	require.ErrorIs(t, err, coupon.ErrBelowMinimum)
	require.Equal(t, "below_minimum", snap.Coupon.Reason)

	// growing past the minimum re-applies without another lookup
	_, err = ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	snap, err = ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	require.Equal(t, CouponApplied, snap.Coupon.Phase)
	require.Equal(t, money.Cents(300), snap.DiscountCents)
	require.Equal(t, 1, lookups)

	// shrinking below the minimum demotes again, still without a lookup
	snap = ctrl.UpdateQuantity("d1", 1)
	require.Equal(t, CouponRejected, snap.Coupon.Phase)
	require.Equal(t, "below_minimum", snap.Coupon.Reason)
	require.Equal(t, money.Cents(0), snap.DiscountCents)
	require.Equal(t, 1, lookups)
}

func TestAppliedDiscountTracksSubtotal(t *testing.T) {
	cp := percentCoupon("SAVE15", 15, nil, 0)
	ctrl := NewController("c1", fixedCatalog(cp))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	snap, err := ctrl.ApplyCoupon(context.Background(), "SAVE15")
	require.NoError(t, err)
	require.Equal(t, money.Cents(150), snap.DiscountCents)

	snap, err = ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	require.Equal(t, money.Cents(300), snap.DiscountCents)
	require.Equal(t, money.Cents(1700), snap.TotalCents)
}

func TestApplyCouponTransientFailureRestoresState(t *testing.T) {
	cp := percentCoupon("SAVE15", 15, nil, 0)
	failing := false
	catalog := coupon.CatalogFunc(func(_ context.Context, code, businessID string) (coupon.Coupon, error) {
		if failing {
			return coupon.Coupon{}, errors.Join(coupon.ErrUnavailable, errors.New("timeout"))
		}
		return cp, nil
	})

	ctrl := NewController("c1", catalog)
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.ApplyCoupon(context.Background(), "SAVE15")
	require.NoError(t, err)

	failing = true
	snap, err := ctrl.ApplyCoupon(context.Background(), "OTHER")
	require.ErrorIs(t, err, coupon.ErrUnavailable)
	// previous applied coupon survives the failed attempt
	require.Equal(t, CouponApplied, snap.Coupon.Phase)
	require.Equal(t, "SAVE15", snap.Coupon.Code)
	require.Equal(t, money.Cents(150), snap.DiscountCents)
}

func TestApplyCouponSupersededByNewerAttempt(t *testing.T) {
	slow := percentCoupon("SLOW", 50, nil, 0)
	fast := percentCoupon("FAST", 10, nil, 0)

	release := make(chan struct{})
	catalog := coupon.CatalogFunc(func(_ context.Context, code, businessID string) (coupon.Coupon, error) {
		if slow.Matches(code) {
			<-release
			return slow, nil
		}
		return fast, nil
	})

	ctrl := NewController("c1", catalog)
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var slowErr error
	go func() {
		defer wg.Done()
		_, slowErr = ctrl.ApplyCoupon(context.Background(), "SLOW")
	}()

	// wait for the slow attempt to enter validating before superseding it
	require.Eventually(t, func() bool {
		return ctrl.Snapshot().Coupon.Phase == CouponValidating
	}, time.Second, time.Millisecond)

	snap, err := ctrl.ApplyCoupon(context.Background(), "FAST")
	require.NoError(t, err)
	require.Equal(t, "FAST", snap.Coupon.Code)

	close(release)
	wg.Wait()
	require.ErrorIs(t, slowErr, ErrSuperseded)

	snap = ctrl.Snapshot()
	require.Equal(t, CouponApplied, snap.Coupon.Phase)
	require.Equal(t, "FAST", snap.Coupon.Code)
	require.Equal(t, money.Cents(100), snap.Coupon.DiscountCents)
}

func TestApplyCouponDiscardedAfterBusinessSwitch(t *testing.T) {
	cp := percentCoupon("SAVE15", 15, nil, 0)
	release := make(chan struct{})
	catalog := coupon.CatalogFunc(func(_ context.Context, code, businessID string) (coupon.Coupon, error) {
		<-release
		return cp, nil
	})

	ctrl := NewController("c1", catalog)
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	var wg sync.WaitGroup
	wg.Add(1)
	var applyErr error
	go func() {
		defer wg.Done()
		_, applyErr = ctrl.ApplyCoupon(context.Background(), "SAVE15")
	}()

	require.Eventually(t, func() bool {
		return ctrl.Snapshot().Coupon.Phase == CouponValidating
	}, time.Second, time.Millisecond)

	ctrl.SetBusiness("b2")
	close(release)
	wg.Wait()
	require.ErrorIs(t, applyErr, ErrSuperseded)
	require.Equal(t, CouponNone, ctrl.Snapshot().Coupon.Phase)
}

func TestRemoveCouponResetsState(t *testing.T) {
	cp := percentCoupon("SAVE15", 15, nil, 0)
	ctrl := NewController("c1", fixedCatalog(cp))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.ApplyCoupon(context.Background(), "SAVE15")
	require.NoError(t, err)

	snap := ctrl.RemoveCoupon()
	require.Equal(t, CouponNone, snap.Coupon.Phase)
	require.Equal(t, money.Cents(0), snap.DiscountCents)
	require.Equal(t, money.Cents(1000), snap.TotalCents)
}

type stubCreator struct {
	orderID string
	err     error
	last    OrderInput
	calls   int
}

func (s *stubCreator) Create(_ context.Context, in OrderInput) (string, error) {
	s.calls++
	s.last = in
	if s.err != nil {
		return "", s.err
	}
	return s.orderID, nil
}

func TestCheckoutClearsCart(t *testing.T) {
	cp := percentCoupon("SAVE15", 15, nil, 0)
	ctrl := NewController("c1", fixedCatalog(cp))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.ApplyCoupon(context.Background(), "SAVE15")
	require.NoError(t, err)

	creator := &stubCreator{orderID: "o1"}
	orderID, snap, err := ctrl.Checkout(context.Background(), creator)
	require.NoError(t, err)
	require.Equal(t, "o1", orderID)
	require.Equal(t, "SAVE15", creator.last.CouponCode)
	require.Equal(t, money.Cents(850), creator.last.TotalCents)
	require.Empty(t, snap.Items)
	require.Empty(t, snap.BusinessID)
	require.Equal(t, CouponNone, snap.Coupon.Phase)
}

func TestCheckoutEmptyCart(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	creator := &stubCreator{orderID: "o1"}
	_, _, err := ctrl.Checkout(context.Background(), creator)
	require.ErrorIs(t, err, ErrEmptyCart)
	require.Zero(t, creator.calls)
}

func TestCheckoutFailureKeepsCart(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)

	creator := &stubCreator{err: errors.New("db down")}
	_, snap, err := ctrl.Checkout(context.Background(), creator)
	require.Error(t, err)
	require.Len(t, snap.Items, 1)
}

func TestRejectedCouponNotSentToCheckout(t *testing.T) {
	cp := percentCoupon("BIG", 10, nil, 5000)
	ctrl := NewController("c1", fixedCatalog(cp))
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.ApplyCoupon(context.Background(), "BIG")
	require.ErrorIs(t, err, coupon.ErrBelowMinimum)

	creator := &stubCreator{orderID: "o1"}
	_, _, err = ctrl.Checkout(context.Background(), creator)
	require.NoError(t, err)
	require.Empty(t, creator.last.CouponCode)
	require.Equal(t, money.Cents(0), creator.last.DiscountCents)
}

func TestRecordRoundTrip(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	_, err := ctrl.AddItem("b1", padThai())
	require.NoError(t, err)
	_, err = ctrl.AddItem("b1", springRoll())
	require.NoError(t, err)

	rec := ctrl.Record()
	restored := NewController("c1", fixedCatalog())
	restored.restore(rec)

	snap := restored.Snapshot()
	require.Equal(t, "b1", snap.BusinessID)
	require.Len(t, snap.Items, 2)
	require.Equal(t, money.Cents(1500), snap.SubtotalCents)
}

func TestRestoreSkipsCorruptLines(t *testing.T) {
	ctrl := NewController("c1", fixedCatalog())
	ctrl.restore(Record{
		BusinessID: "b1",
		Items: []Item{
			{DishID: "d1", Name: "Pad Thai", UnitPriceCents: 1000, Quantity: 2},
			{DishID: "", Name: "no id", UnitPriceCents: 100, Quantity: 1},
			{DishID: "d2", Name: "zero qty", UnitPriceCents: 100, Quantity: 0},
			{DishID: "d1", Name: "dup", UnitPriceCents: 999, Quantity: 1},
		},
	})
	snap := ctrl.Snapshot()
	require.Len(t, snap.Items, 1)
	require.Equal(t, money.Cents(2000), snap.SubtotalCents)
}
