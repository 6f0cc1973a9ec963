package service

import (
	"testing"

	"emojify-be/internal/entity"

	stripe "github.com/stripe/stripe-go/v76"
)

func TestMapSubscriptionStatus(t *testing.T) {
	tests := []struct {
		in   stripe.SubscriptionStatus
		want entity.SubscriptionStatus
	}{
		{stripe.SubscriptionStatusActive, entity.SubscriptionStatusActive},
		{stripe.SubscriptionStatusTrialing, entity.SubscriptionStatusActive},
		{stripe.SubscriptionStatusPastDue, entity.SubscriptionStatusPastDue},
		{stripe.SubscriptionStatusUnpaid, entity.SubscriptionStatusPastDue},
		{stripe.SubscriptionStatusCanceled, entity.SubscriptionStatusCancelled},
		{stripe.SubscriptionStatusIncomplete, entity.SubscriptionStatusInactive},
		{stripe.SubscriptionStatusIncompleteExpired, entity.SubscriptionStatusInactive},
	}

	for _, tt := range tests {
		if got := mapSubscriptionStatus(tt.in); got != tt.want {
			t.Errorf("mapSubscriptionStatus(%s) = %s, want %s", tt.in, got, tt.want)
		}
	}
}

func TestPriceForFrequency(t *testing.T) {
	s := &billingService{}
	s.cfg.PremiumMonthlyPrice = "price_month"
	s.cfg.PremiumAnnualPrice = "price_year"

	if got := s.priceFor("monthly"); got != "price_month" {
		t.Errorf("priceFor(monthly) = %s", got)
	}
	if got := s.priceFor("annual"); got != "price_year" {
		t.Errorf("priceFor(annual) = %s", got)
	}
	// Unknown input falls back to monthly rather than failing checkout.
	if got := s.priceFor(""); got != "price_month" {
		t.Errorf("priceFor(empty) = %s", got)
	}
}
