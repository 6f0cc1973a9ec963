package service

import (
	"time"

	"emojify-be/internal/dto"
	"emojify-be/internal/entity"
	"emojify-be/pkg/quota"
)

// presentSubscription resolves the implicit default before anything is
// shown to a client, so an absent sub-document renders as an active FREE
// plan rather than an empty object.
func presentSubscription(sub *entity.Subscription, now time.Time) dto.SubscriptionResponse {
	eff := quota.Effective(sub, now)

	// A reset that has not been applied yet still shows as a fresh counter.
	usage := eff.UsageCount
	if eff.PlanType != entity.PlanPremium && quota.ResetDue(eff.LastReset, now) {
		usage = 0
	}

	return dto.SubscriptionResponse{
		PlanType:          string(eff.PlanType),
		BillingFrequency:  string(eff.BillingFrequency),
		Status:            string(eff.Status),
		UsageCount:        usage,
		UsageLimit:        eff.UsageLimit,
		Unlimited:         eff.PlanType == entity.PlanPremium,
		CurrentPeriodEnd:  eff.CurrentPeriodEnd,
		CancelAtPeriodEnd: eff.CancelAtPeriodEnd,
	}
}

func presentUser(user *entity.User, now time.Time) dto.UserResponse {
	return dto.UserResponse{
		Id:           user.Id.String(),
		Email:        user.Email,
		DisplayName:  user.DisplayName,
		AvatarURL:    user.AvatarURL,
		Bio:          user.Bio,
		Subscription: presentSubscription(user.Subscription, now),
		CreatedAt:    user.CreatedAt,
	}
}

func presentUsage(sub *entity.Subscription, now time.Time) dto.UsageResponse {
	eff := quota.Effective(sub, now)

	usage := eff.UsageCount
	if eff.PlanType != entity.PlanPremium && quota.ResetDue(eff.LastReset, now) {
		usage = 0
	}

	remaining := eff.UsageLimit - usage
	if remaining < 0 {
		remaining = 0
	}

	return dto.UsageResponse{
		PlanType:   string(eff.PlanType),
		UsageCount: usage,
		UsageLimit: eff.UsageLimit,
		Unlimited:  eff.PlanType == entity.PlanPremium,
		Remaining:  remaining,
	}
}
