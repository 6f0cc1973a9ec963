package quota

import (
	"testing"
	"time"

	"emojify-be/internal/entity"
)

func freeSub(used int) entity.Subscription {
	return entity.Subscription{
		PlanType:   entity.PlanFree,
		Status:     entity.SubscriptionStatusActive,
		UsageCount: used,
		UsageLimit: FreeUsageLimit,
	}
}

func TestCanGenerate(t *testing.T) {
	tests := []struct {
		name        string
		sub         entity.Subscription
		wantAllowed bool
	}{
		{
			name:        "free below limit",
			sub:         freeSub(0),
			wantAllowed: true,
		},
		{
			name:        "free one below limit",
			sub:         freeSub(FreeUsageLimit - 1),
			wantAllowed: true,
		},
		{
			name:        "free at limit",
			sub:         freeSub(FreeUsageLimit),
			wantAllowed: false,
		},
		{
			name:        "free over limit",
			sub:         freeSub(FreeUsageLimit + 3),
			wantAllowed: false,
		},
		{
			name: "premium at free limit",
			sub: entity.Subscription{
				PlanType:   entity.PlanPremium,
				UsageCount: FreeUsageLimit,
				UsageLimit: UnlimitedUsageLimit,
			},
			wantAllowed: true,
		},
		{
			name: "premium even past its own sentinel",
			sub: entity.Subscription{
				PlanType:   entity.PlanPremium,
				UsageCount: UnlimitedUsageLimit + 1,
				UsageLimit: UnlimitedUsageLimit,
			},
			wantAllowed: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanGenerate(tt.sub)
			if got.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", got.Allowed, tt.wantAllowed)
			}
			if got.Used != tt.sub.UsageCount || got.Limit != tt.sub.UsageLimit {
				t.Errorf("Decision counts = %d/%d, want %d/%d", got.Used, got.Limit, tt.sub.UsageCount, tt.sub.UsageLimit)
			}
		})
	}
}

func TestEffectiveDefault(t *testing.T) {
	now := time.Now()

	sub := Effective(nil, now)
	if sub.PlanType != entity.PlanFree {
		t.Errorf("PlanType = %s, want free", sub.PlanType)
	}
	if sub.UsageCount != 0 || sub.UsageLimit != FreeUsageLimit {
		t.Errorf("usage = %d/%d, want 0/%d", sub.UsageCount, sub.UsageLimit, FreeUsageLimit)
	}
	if sub.Status != entity.SubscriptionStatusActive {
		t.Errorf("Status = %s, want active", sub.Status)
	}

	// An existing subscription passes through untouched.
	existing := freeSub(3)
	if got := Effective(&existing, now); got != existing {
		t.Errorf("Effective(existing) = %+v, want %+v", got, existing)
	}
}

func TestResetDue(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	twoMonthsAgo := now.AddDate(0, -2, 0)
	thisMonth := time.Date(2026, 8, 2, 0, 0, 0, 0, time.UTC)
	lastDayPrevMonth := time.Date(2026, 7, 31, 23, 59, 59, 0, time.UTC)

	tests := []struct {
		name      string
		lastReset *time.Time
		want      bool
	}{
		{name: "never reset", lastReset: nil, want: true},
		{name: "two months ago", lastReset: &twoMonthsAgo, want: true},
		{name: "end of previous month", lastReset: &lastDayPrevMonth, want: true},
		{name: "earlier this month", lastReset: &thisMonth, want: false},
		{name: "right now", lastReset: &now, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ResetDue(tt.lastReset, now); got != tt.want {
				t.Errorf("ResetDue = %v, want %v", got, tt.want)
			}
		})
	}
}

// Applying the reset twice in the same month must be a no-op the second
// time: once LastReset is inside the current month, ResetDue goes false.
func TestResetIdempotentWithinMonth(t *testing.T) {
	now := time.Date(2026, 8, 15, 10, 0, 0, 0, time.UTC)
	old := now.AddDate(0, -2, 0)

	sub := freeSub(FreeUsageLimit)
	sub.LastReset = &old

	if !ResetDue(sub.LastReset, now) {
		t.Fatal("expected first reset to be due")
	}
	sub.UsageCount = 0
	sub.LastReset = &now

	if ResetDue(sub.LastReset, now.Add(time.Hour)) {
		t.Error("second reset within the same month should not be due")
	}
	if sub.UsageCount != 0 {
		t.Errorf("UsageCount = %d, want 0", sub.UsageCount)
	}
}

func TestPlanTransitions(t *testing.T) {
	now := time.Now()

	t.Run("upgrade admits an exhausted free user", func(t *testing.T) {
		exhausted := freeSub(FreeUsageLimit)
		up := PremiumPlan(exhausted, entity.BillingFrequencyMonthly, BillingLinkage{
			CustomerId:     "cus_123",
			SubscriptionId: "sub_123",
			PriceId:        "price_123",
		}, now)

		if d := CanGenerate(up); !d.Allowed {
			t.Error("premium after upgrade must always be admitted")
		}
		if up.UsageCount != 0 || up.UsageLimit != UnlimitedUsageLimit {
			t.Errorf("usage = %d/%d, want 0/%d", up.UsageCount, up.UsageLimit, UnlimitedUsageLimit)
		}
		if up.StripeCustomerId == nil || *up.StripeCustomerId != "cus_123" {
			t.Error("billing customer linkage not recorded")
		}
	})

	t.Run("downgrade restores free metering", func(t *testing.T) {
		cust := "cus_123"
		premium := entity.Subscription{
			PlanType:         entity.PlanPremium,
			UsageCount:       42,
			UsageLimit:       UnlimitedUsageLimit,
			StripeCustomerId: &cust,
		}
		down := Downgraded(premium, now)

		if down.PlanType != entity.PlanFree || down.Status != entity.SubscriptionStatusInactive {
			t.Errorf("got %s/%s, want free/inactive", down.PlanType, down.Status)
		}
		if down.UsageCount != 0 || down.UsageLimit != FreeUsageLimit {
			t.Errorf("usage = %d/%d, want 0/%d", down.UsageCount, down.UsageLimit, FreeUsageLimit)
		}
		if down.BillingFrequency != entity.BillingFrequencyMonthly {
			t.Errorf("BillingFrequency = %s, want monthly", down.BillingFrequency)
		}
		if down.StripeCustomerId == nil || *down.StripeCustomerId != "cus_123" {
			t.Error("customer join key should survive a downgrade")
		}
		if down.StripeSubscriptionId != nil {
			t.Error("dead subscription key should be cleared")
		}
	})

	t.Run("free reselection starts fresh", func(t *testing.T) {
		sub := FreePlan(now)
		if sub.UsageCount != 0 || sub.UsageLimit != FreeUsageLimit {
			t.Errorf("usage = %d/%d, want 0/%d", sub.UsageCount, sub.UsageLimit, FreeUsageLimit)
		}
		if sub.Status != entity.SubscriptionStatusActive {
			t.Errorf("Status = %s, want active", sub.Status)
		}
		if sub.LastReset == nil {
			t.Error("LastReset should be stamped on plan selection")
		}
	})
}
