// Package quota holds the plan/usage decision logic: admission checks,
// the monthly reset predicate and the plan-transition constructors.
// Everything here is pure; the user repository applies the results with
// single conditional UPDATEs so concurrent requests cannot interleave a
// check with an increment.
package quota

import (
	"time"

	"emojify-be/internal/entity"
)

const (
	// FreeUsageLimit is the monthly generation allowance on the FREE plan.
	FreeUsageLimit = 5

	// UnlimitedUsageLimit is the sentinel limit for PREMIUM. The plan is
	// never gated on it; the value only keeps usage math total.
	UnlimitedUsageLimit = 999999
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed bool
	Used    int
	Limit   int
}

// Effective resolves a possibly-absent subscription to the one every
// consumer reasons about. This is the single place the implicit FREE
// default is defined.
func Effective(sub *entity.Subscription, now time.Time) entity.Subscription {
	if sub != nil {
		return *sub
	}
	return entity.Subscription{
		PlanType:         entity.PlanFree,
		BillingFrequency: entity.BillingFrequencyMonthly,
		Status:           entity.SubscriptionStatusActive,
		UsageCount:       0,
		UsageLimit:       FreeUsageLimit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// CanGenerate decides whether a generation request is admitted. PREMIUM is
// always admitted regardless of the counter; everything else is admitted
// iff the counter is below the limit. Pure check, no side effects.
func CanGenerate(sub entity.Subscription) Decision {
	if sub.PlanType == entity.PlanPremium {
		return Decision{Allowed: true, Used: sub.UsageCount, Limit: sub.UsageLimit}
	}
	return Decision{
		Allowed: sub.UsageCount < sub.UsageLimit,
		Used:    sub.UsageCount,
		Limit:   sub.UsageLimit,
	}
}

// FirstOfMonth truncates a timestamp to the start of its calendar month.
func FirstOfMonth(now time.Time) time.Time {
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
}

// ResetDue reports whether the monthly counter reset should fire. The lazy
// request-path reset and the bulk cron job both evaluate exactly this
// predicate (lastReset absent, or before the first day of the current
// month); keeping them identical is what prevents double-reset or
// missed-reset drift between the two paths.
func ResetDue(lastReset *time.Time, now time.Time) bool {
	if lastReset == nil {
		return true
	}
	return lastReset.Before(FirstOfMonth(now))
}

// FreePlan is the explicit "(re)activate free plan" transition. It zeroes
// usage even when the user already is FREE: plan (re)selection starts
// fresh, which is distinct from the monthly lazy reset.
func FreePlan(now time.Time) entity.Subscription {
	return entity.Subscription{
		PlanType:         entity.PlanFree,
		BillingFrequency: entity.BillingFrequencyMonthly,
		Status:           entity.SubscriptionStatusActive,
		UsageCount:       0,
		UsageLimit:       FreeUsageLimit,
		LastReset:        &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}

// BillingLinkage carries the billing processor's join keys into an upgrade.
type BillingLinkage struct {
	CustomerId     string
	SubscriptionId string
	PriceId        string
	SessionId      string
}

// PremiumPlan is the FREE/PREMIUM -> PREMIUM transition after a confirmed
// payment.
func PremiumPlan(prev entity.Subscription, freq entity.BillingFrequency, link BillingLinkage, now time.Time) entity.Subscription {
	sub := entity.Subscription{
		PlanType:         entity.PlanPremium,
		BillingFrequency: freq,
		Status:           entity.SubscriptionStatusActive,
		UsageCount:       0,
		UsageLimit:       UnlimitedUsageLimit,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if link.CustomerId != "" {
		sub.StripeCustomerId = &link.CustomerId
	} else {
		sub.StripeCustomerId = prev.StripeCustomerId
	}
	if link.SubscriptionId != "" {
		sub.StripeSubscriptionId = &link.SubscriptionId
	}
	if link.PriceId != "" {
		sub.StripePriceId = &link.PriceId
	}
	if link.SessionId != "" {
		sub.StripeSessionId = &link.SessionId
	}
	return sub
}

// Downgraded is the PREMIUM -> FREE transition (subscription deleted at the
// billing processor). The customer join key survives so a later re-upgrade
// reuses the same billing customer; the dead subscription/price keys do not.
func Downgraded(prev entity.Subscription, now time.Time) entity.Subscription {
	return entity.Subscription{
		PlanType:         entity.PlanFree,
		BillingFrequency: entity.BillingFrequencyMonthly,
		Status:           entity.SubscriptionStatusInactive,
		StripeCustomerId: prev.StripeCustomerId,
		UsageCount:       0,
		UsageLimit:       FreeUsageLimit,
		LastReset:        &now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
}
