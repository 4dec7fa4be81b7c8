package obs

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	domainOnce sync.Once

	// CouponApplyTotal counts coupon application attempts by outcome. The
	// reason label carries the stable rejection reason for rejected attempts
	// and "ok" or "transient" otherwise.
	CouponApplyTotal *prometheus.CounterVec
	// CheckoutTotal counts checkout attempts by result.
	CheckoutTotal *prometheus.CounterVec
	// CartMutationsTotal counts cart mutations by operation.
	CartMutationsTotal *prometheus.CounterVec
	// OrderTotalCents observes the payable total of created orders.
	OrderTotalCents prometheus.Histogram
)

// MustRegisterDomainMetrics initialises and registers domain-specific
// Prometheus collectors. Safe to call more than once.
func MustRegisterDomainMetrics(namespace string, reg prometheus.Registerer) {
	domainOnce.Do(func() {
		if reg == nil {
			reg = prometheus.DefaultRegisterer
		}
		CouponApplyTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "coupon_apply_total",
			Help:      "Count of coupon application attempts by outcome.",
		}, []string{"result", "reason"})
		CheckoutTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checkout_total",
			Help:      "Count of checkout attempts by result.",
		}, []string{"result"})
		CartMutationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cart_mutations_total",
			Help:      "Count of cart mutations by operation.",
		}, []string{"op"})
		OrderTotalCents = prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "order_total_cents",
			Help:      "Distribution of payable order totals in cents.",
			Buckets:   prometheus.ExponentialBuckets(100, 4, 8),
		})
		reg.MustRegister(CouponApplyTotal, CheckoutTotal, CartMutationsTotal, OrderTotalCents)
	})
}

// CountCouponApply records a coupon application outcome if metrics are
// registered.
func CountCouponApply(result, reason string) {
	if CouponApplyTotal == nil {
		return
	}
	if reason == "" {
		reason = "ok"
	}
	CouponApplyTotal.WithLabelValues(result, reason).Inc()
}

// CountCheckout records a checkout outcome if metrics are registered.
func CountCheckout(result string) {
	if CheckoutTotal == nil {
		return
	}
	CheckoutTotal.WithLabelValues(result).Inc()
}

// CountCartMutation records a cart mutation if metrics are registered.
func CountCartMutation(op string) {
	if CartMutationsTotal == nil {
		return
	}
	CartMutationsTotal.WithLabelValues(op).Inc()
}

// ObserveOrderTotal records the payable total of a created order if metrics
// are registered.
func ObserveOrderTotal(totalCents int64) {
	if OrderTotalCents == nil {
		return
	}
	OrderTotalCents.Observe(float64(totalCents))
}
