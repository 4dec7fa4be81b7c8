package coupon

import (
	"strings"
	"time"
)

// DiscountType selects how a coupon's value is interpreted.
type DiscountType string

const (
	// DiscountPercentage interprets Value as a whole percentage (0-100).
	DiscountPercentage DiscountType = "percentage"
	// DiscountFixed interprets Value as an absolute amount in cents.
	DiscountFixed DiscountType = "fixed"
)

// UsageLimitType describes how the remote side accounts coupon redemptions.
// The engine never evaluates these limits itself; they are surfaced by the
// catalog as ErrUsageLimitExceeded.
type UsageLimitType string

const (
	UsageUnlimited UsageLimitType = "unlimited"
	UsageTotal     UsageLimitType = "total"
	UsagePerUser   UsageLimitType = "per_user"
)

// Coupon is a read-only promotion record fetched from the catalog.
type Coupon struct {
	Code             string         `json:"code"`
	BusinessID       string         `json:"businessId"`
	Type             DiscountType   `json:"type"`
	Value            int64          `json:"value"`
	MaxDiscountCents *int64         `json:"maxDiscountCents,omitempty"`
	MinOrderCents    int64          `json:"minOrderCents"`
	ValidUntil       *time.Time     `json:"validUntil,omitempty"`
	Active           bool           `json:"active"`
	UsageLimit       UsageLimitType `json:"usageLimit"`
	TotalUsageLimit  *int32         `json:"totalUsageLimit,omitempty"`
}

// NormalizeCode uppercases and trims a user-entered coupon code. Lookups are
// case-insensitive; the canonical form is upper case.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// Matches reports whether the coupon's own code equals the given code,
// ignoring case.
func (c Coupon) Matches(code string) bool {
	return strings.EqualFold(strings.TrimSpace(c.Code), strings.TrimSpace(code))
}
