package service

import (
	"testing"
	"time"

	"emojify-be/internal/entity"
	"emojify-be/pkg/quota"
)

func TestPresentSubscriptionImplicitDefault(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)

	resp := presentSubscription(nil, now)

	if resp.PlanType != string(entity.PlanFree) {
		t.Errorf("plan_type = %s, want free", resp.PlanType)
	}
	if resp.Status != string(entity.SubscriptionStatusActive) {
		t.Errorf("status = %s, want active", resp.Status)
	}
	if resp.UsageCount != 0 || resp.UsageLimit != quota.FreeUsageLimit {
		t.Errorf("usage = %d/%d, want 0/%d", resp.UsageCount, resp.UsageLimit, quota.FreeUsageLimit)
	}
	if resp.Unlimited {
		t.Error("free plan must not present as unlimited")
	}
}

func TestPresentSubscriptionShowsFreshCounterWhenResetDue(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	lastMonth := time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC)

	sub := &entity.Subscription{
		PlanType:   entity.PlanFree,
		Status:     entity.SubscriptionStatusActive,
		UsageCount: 5,
		UsageLimit: quota.FreeUsageLimit,
		LastReset:  &lastMonth,
	}

	resp := presentSubscription(sub, now)

	if resp.UsageCount != 0 {
		t.Errorf("usage_count = %d, want 0 (reset due since last month)", resp.UsageCount)
	}
}

func TestPresentSubscriptionKeepsCounterWithinMonth(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	sub := &entity.Subscription{
		PlanType:   entity.PlanFree,
		Status:     entity.SubscriptionStatusActive,
		UsageCount: 3,
		UsageLimit: quota.FreeUsageLimit,
		LastReset:  &thisMonth,
	}

	resp := presentSubscription(sub, now)

	if resp.UsageCount != 3 {
		t.Errorf("usage_count = %d, want 3", resp.UsageCount)
	}
}

func TestPresentUsageRemaining(t *testing.T) {
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	thisMonth := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		sub           *entity.Subscription
		wantRemaining int
		wantUnlimited bool
	}{
		{
			name:          "implicit default has full allowance",
			sub:           nil,
			wantRemaining: quota.FreeUsageLimit,
		},
		{
			name: "partially used free plan",
			sub: &entity.Subscription{
				PlanType:   entity.PlanFree,
				UsageCount: 2,
				UsageLimit: quota.FreeUsageLimit,
				LastReset:  &thisMonth,
			},
			wantRemaining: 3,
		},
		{
			name: "exhausted free plan clamps at zero",
			sub: &entity.Subscription{
				PlanType:   entity.PlanFree,
				UsageCount: 7,
				UsageLimit: quota.FreeUsageLimit,
				LastReset:  &thisMonth,
			},
			wantRemaining: 0,
		},
		{
			name: "premium is unlimited",
			sub: &entity.Subscription{
				PlanType:   entity.PlanPremium,
				UsageCount: 1234,
				UsageLimit: quota.UnlimitedUsageLimit,
			},
			wantRemaining: quota.UnlimitedUsageLimit - 1234,
			wantUnlimited: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := presentUsage(tt.sub, now)
			if resp.Remaining != tt.wantRemaining {
				t.Errorf("remaining = %d, want %d", resp.Remaining, tt.wantRemaining)
			}
			if resp.Unlimited != tt.wantUnlimited {
				t.Errorf("unlimited = %v, want %v", resp.Unlimited, tt.wantUnlimited)
			}
		})
	}
}
