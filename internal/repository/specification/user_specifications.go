package specification

import (
	"time"

	"gorm.io/gorm"
)

// ByEmail filters users by email
type ByEmail struct {
	Email string
}

func (s ByEmail) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("email = ?", s.Email)
}

// ByStripeCustomerId matches the billing customer join key
type ByStripeCustomerId struct {
	CustomerId string
}

func (s ByStripeCustomerId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_stripe_customer_id = ?", s.CustomerId)
}

// ByStripeSubscriptionId matches the billing subscription join key
type ByStripeSubscriptionId struct {
	SubscriptionId string
}

func (s ByStripeSubscriptionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("subscription_stripe_subscription_id = ?", s.SubscriptionId)
}

// FreePlanResetDue selects FREE users whose monthly reset is due. This is
// the SQL form of quota.ResetDue: last_reset absent, or before the first
// day of the current month. The lazy request-path reset and the bulk cron
// job must both go through this predicate.
type FreePlanResetDue struct {
	PeriodStart time.Time
}

func (s FreePlanResetDue) Apply(db *gorm.DB) *gorm.DB {
	return db.
		Where("subscription_plan_type IN ('', 'free')").
		Where("subscription_last_reset IS NULL OR subscription_last_reset < ?", s.PeriodStart)
}
