package entity

import (
	"time"
)

type PlanType string
type SubscriptionStatus string
type BillingFrequency string

const (
	PlanFree    PlanType = "free"
	PlanPremium PlanType = "premium"

	SubscriptionStatusActive    SubscriptionStatus = "active"
	SubscriptionStatusInactive  SubscriptionStatus = "inactive"
	SubscriptionStatusCancelled SubscriptionStatus = "cancelled"
	SubscriptionStatusPastDue   SubscriptionStatus = "past_due"

	BillingFrequencyMonthly BillingFrequency = "monthly"
	BillingFrequencyAnnual  BillingFrequency = "annual"
)

// Subscription is the sub-document embedded in User. Exactly one exists per
// user at any time; plan transitions overwrite it in place. A user that never
// selected a plan carries no subscription at all, and every reader must go
// through quota.Effective to get the implicit FREE default.
type Subscription struct {
	PlanType         PlanType
	BillingFrequency BillingFrequency
	Status           SubscriptionStatus

	// Opaque join keys back to the billing processor.
	StripeCustomerId     *string
	StripeSubscriptionId *string
	StripePriceId        *string
	StripeSessionId      *string

	// Mirror of the billing processor's period; informational only,
	// never used for FREE quota math.
	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool

	UsageCount int
	UsageLimit int
	LastReset  *time.Time // FREE only; monthly counter reset marker

	CreatedAt time.Time
	UpdatedAt time.Time
}
