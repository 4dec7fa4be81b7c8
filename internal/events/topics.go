package events

// Topic constants for domain events emitted by the ordering platform.
const (
	TopicOrderCreated   = "order.created"
	TopicCouponApplied  = "coupon.applied"
	TopicCouponRejected = "coupon.rejected"
)

// DefaultTopics returns the canonical list of topics that support notifications.
func DefaultTopics() []string {
	return []string{
		TopicOrderCreated,
		TopicCouponApplied,
		TopicCouponRejected,
	}
}
