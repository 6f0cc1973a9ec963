package mapper

import (
	"testing"
	"time"

	"emojify-be/internal/entity"
	"emojify-be/internal/model"
	"emojify-be/pkg/quota"
)

func TestSubscriptionToEntityResolvesImplicitDefault(t *testing.T) {
	m := NewUserMapper()

	// A row that never went through plan selection but has recorded usage:
	// RecordGeneration increments the counter without setting plan_type.
	lastReset := time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)
	row := &model.Subscription{
		PlanType:   "",
		UsageCount: 5,
		UsageLimit: 5,
		LastReset:  &lastReset,
	}

	sub := m.SubscriptionToEntity(row)
	if sub == nil {
		t.Fatal("implicit-default row mapped to nil, usage state lost")
	}
	if sub.PlanType != entity.PlanFree {
		t.Errorf("plan_type = %s, want free", sub.PlanType)
	}
	if sub.Status != entity.SubscriptionStatusActive {
		t.Errorf("status = %s, want active", sub.Status)
	}
	if sub.UsageCount != 5 {
		t.Errorf("usage_count = %d, want 5", sub.UsageCount)
	}
	if sub.UsageLimit != 5 {
		t.Errorf("usage_limit = %d, want 5", sub.UsageLimit)
	}
	if sub.LastReset == nil || !sub.LastReset.Equal(lastReset) {
		t.Errorf("last_reset = %v, want %v", sub.LastReset, lastReset)
	}

	// The entity-level admission check must agree with the SQL gate: a row
	// the store denies at 5/5 must not read back as allowed.
	if d := quota.CanGenerate(*sub); d.Allowed {
		t.Errorf("CanGenerate allowed at %d/%d", d.Used, d.Limit)
	}
}

func TestSubscriptionToEntityZeroRowGetsFreeDefaults(t *testing.T) {
	m := NewUserMapper()

	sub := m.SubscriptionToEntity(&model.Subscription{})
	if sub == nil {
		t.Fatal("zero row mapped to nil")
	}
	if sub.PlanType != entity.PlanFree {
		t.Errorf("plan_type = %s, want free", sub.PlanType)
	}
	if sub.UsageLimit != quota.FreeUsageLimit {
		t.Errorf("usage_limit = %d, want %d", sub.UsageLimit, quota.FreeUsageLimit)
	}
	if sub.UsageCount != 0 {
		t.Errorf("usage_count = %d, want 0", sub.UsageCount)
	}
}

func TestSubscriptionToEntityExplicitPlanUnchanged(t *testing.T) {
	m := NewUserMapper()

	sub := m.SubscriptionToEntity(&model.Subscription{
		PlanType:         string(entity.PlanPremium),
		BillingFrequency: string(entity.BillingFrequencyAnnual),
		Status:           string(entity.SubscriptionStatusActive),
		UsageCount:       12,
		UsageLimit:       quota.UnlimitedUsageLimit,
	})
	if sub.PlanType != entity.PlanPremium {
		t.Errorf("plan_type = %s, want premium", sub.PlanType)
	}
	if sub.BillingFrequency != entity.BillingFrequencyAnnual {
		t.Errorf("billing_frequency = %s, want annual", sub.BillingFrequency)
	}
	if sub.UsageCount != 12 {
		t.Errorf("usage_count = %d, want 12", sub.UsageCount)
	}
}
