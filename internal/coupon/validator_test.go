package coupon

import (
	"errors"
	"testing"
	"time"
)

func TestValidateRuleOrder(t *testing.T) {
	past := time.Now().Add(-time.Hour)
	// Inactive AND expired AND below minimum: inactive must win because the
	// clients report the first failing rule and the order is part of the
	// contract.
	c := Coupon{Active: false, ValidUntil: &past, MinOrderCents: 10_000}
	if err := Validate(c, 500, time.Now()); !errors.Is(err, ErrInactive) {
		t.Fatalf("expected ErrInactive, got %v", err)
	}

	c.Active = true
	if err := Validate(c, 500, time.Now()); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired, got %v", err)
	}

	c.ValidUntil = nil
	if err := Validate(c, 500, time.Now()); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}

	if err := Validate(c, 10_000, time.Now()); err != nil {
		t.Fatalf("expected eligible coupon, got %v", err)
	}
}

func TestValidateBoundaryAtMinimum(t *testing.T) {
	c := Coupon{Active: true, MinOrderCents: 1000}
	if err := Validate(c, 1000, time.Now()); err != nil {
		t.Fatalf("subtotal equal to minimum must be eligible, got %v", err)
	}
	if err := Validate(c, 999, time.Now()); !errors.Is(err, ErrBelowMinimum) {
		t.Fatalf("expected ErrBelowMinimum, got %v", err)
	}
}

func TestValidateExpiryBoundary(t *testing.T) {
	until := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	c := Coupon{Active: true, ValidUntil: &until}
	if err := Validate(c, 0, until); err != nil {
		t.Fatalf("coupon is valid at the exact deadline, got %v", err)
	}
	if err := Validate(c, 0, until.Add(time.Second)); !errors.Is(err, ErrExpired) {
		t.Fatalf("expected ErrExpired one second after deadline, got %v", err)
	}
}

func TestNormalizeCode(t *testing.T) {
	if got := NormalizeCode("  launch10 "); got != "LAUNCH10" {
		t.Fatalf("expected LAUNCH10, got %q", got)
	}
}

func TestMatchesCaseInsensitive(t *testing.T) {
	c := Coupon{Code: "LAUNCH10"}
	if !c.Matches("launch10") {
		t.Fatal("expected case-insensitive match")
	}
	if c.Matches("other") {
		t.Fatal("expected mismatch")
	}
}

func TestRejectionReasonStable(t *testing.T) {
	cases := map[string]error{
		"not_found":            ErrNotFound,
		"inactive":             ErrInactive,
		"expired":              ErrExpired,
		"below_minimum":        ErrBelowMinimum,
		"usage_limit_exceeded": ErrUsageLimitExceeded,
		"invalid":              errors.New("anything else"),
	}
	for want, err := range cases {
		if got := RejectionReason(err); got != want {
			t.Fatalf("expected %q, got %q", want, got)
		}
	}
}
