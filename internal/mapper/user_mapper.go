package mapper

import (
	"time"

	"emojify-be/internal/entity"
	"emojify-be/internal/model"
	"emojify-be/pkg/quota"
)

type UserMapper struct{}

func NewUserMapper() *UserMapper {
	return &UserMapper{}
}

func (m *UserMapper) ToEntity(u *model.User) *entity.User {
	if u == nil {
		return nil
	}
	return &entity.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		AvatarURL:    u.AvatarURL,
		Bio:          u.Bio,
		Subscription: m.SubscriptionToEntity(&u.Subscription),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) ToModel(u *entity.User) *model.User {
	if u == nil {
		return nil
	}
	return &model.User{
		Id:           u.Id,
		Email:        u.Email,
		PasswordHash: u.PasswordHash,
		DisplayName:  u.DisplayName,
		AvatarURL:    u.AvatarURL,
		Bio:          u.Bio,
		Subscription: m.SubscriptionToModel(u.Subscription),
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (m *UserMapper) ToEntities(models []*model.User) []*entity.User {
	entities := make([]*entity.User, len(models))
	for i, mdl := range models {
		entities[i] = m.ToEntity(mdl)
	}
	return entities
}

// SubscriptionToEntity resolves an empty plan_type to the FREE plan while
// keeping the row's actual usage state. RecordGeneration increments the
// counter on implicit-default rows without ever touching plan_type, so
// dropping the sub-document here would hide real usage from every reader.
func (m *UserMapper) SubscriptionToEntity(s *model.Subscription) *entity.Subscription {
	if s == nil {
		return nil
	}
	sub := &entity.Subscription{
		PlanType:             entity.PlanType(s.PlanType),
		BillingFrequency:     entity.BillingFrequency(s.BillingFrequency),
		Status:               entity.SubscriptionStatus(s.Status),
		StripeCustomerId:     s.StripeCustomerId,
		StripeSubscriptionId: s.StripeSubscriptionId,
		StripePriceId:        s.StripePriceId,
		StripeSessionId:      s.StripeSessionId,
		CurrentPeriodStart:   s.CurrentPeriodStart,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		UsageCount:           s.UsageCount,
		UsageLimit:           s.UsageLimit,
		LastReset:            s.LastReset,
	}
	if s.CreatedAt != nil {
		sub.CreatedAt = *s.CreatedAt
	}
	if s.UpdatedAt != nil {
		sub.UpdatedAt = *s.UpdatedAt
	}
	if sub.PlanType == "" {
		sub.PlanType = entity.PlanFree
		sub.BillingFrequency = entity.BillingFrequencyMonthly
		sub.Status = entity.SubscriptionStatusActive
		if sub.UsageLimit == 0 {
			sub.UsageLimit = quota.FreeUsageLimit
		}
	}
	return sub
}

func (m *UserMapper) SubscriptionToModel(s *entity.Subscription) model.Subscription {
	if s == nil {
		// Zero value keeps the column defaults (implicit FREE).
		return model.Subscription{UsageLimit: 5}
	}
	createdAt := s.CreatedAt
	updatedAt := s.UpdatedAt
	return model.Subscription{
		PlanType:             string(s.PlanType),
		BillingFrequency:     string(s.BillingFrequency),
		Status:               string(s.Status),
		StripeCustomerId:     s.StripeCustomerId,
		StripeSubscriptionId: s.StripeSubscriptionId,
		StripePriceId:        s.StripePriceId,
		StripeSessionId:      s.StripeSessionId,
		CurrentPeriodStart:   s.CurrentPeriodStart,
		CurrentPeriodEnd:     s.CurrentPeriodEnd,
		CancelAtPeriodEnd:    s.CancelAtPeriodEnd,
		UsageCount:           s.UsageCount,
		UsageLimit:           s.UsageLimit,
		LastReset:            s.LastReset,
		CreatedAt:            &createdAt,
		UpdatedAt:            &updatedAt,
	}
}

// SubscriptionToColumns builds the column map used for in-place sub-document
// overwrites (plan transitions write every field, per the single-subscription
// invariant).
func (m *UserMapper) SubscriptionToColumns(s *entity.Subscription) map[string]interface{} {
	return map[string]interface{}{
		"subscription_plan_type":              string(s.PlanType),
		"subscription_billing_frequency":      string(s.BillingFrequency),
		"subscription_status":                 string(s.Status),
		"subscription_stripe_customer_id":     s.StripeCustomerId,
		"subscription_stripe_subscription_id": s.StripeSubscriptionId,
		"subscription_stripe_price_id":        s.StripePriceId,
		"subscription_stripe_session_id":      s.StripeSessionId,
		"subscription_current_period_start":   s.CurrentPeriodStart,
		"subscription_current_period_end":     s.CurrentPeriodEnd,
		"subscription_cancel_at_period_end":   s.CancelAtPeriodEnd,
		"subscription_usage_count":            s.UsageCount,
		"subscription_usage_limit":            s.UsageLimit,
		"subscription_last_reset":             s.LastReset,
		"subscription_created_at":             s.CreatedAt,
		"subscription_updated_at":             time.Now(),
	}
}

func (m *UserMapper) UserRefreshTokenToModel(t *entity.UserRefreshToken) *model.UserRefreshToken {
	if t == nil {
		return nil
	}
	return &model.UserRefreshToken{
		Id:        t.Id,
		UserId:    t.UserId,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Revoked:   t.Revoked,
		IpAddress: t.IpAddress,
		UserAgent: t.UserAgent,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) UserRefreshTokenToEntity(t *model.UserRefreshToken) *entity.UserRefreshToken {
	if t == nil {
		return nil
	}
	return &entity.UserRefreshToken{
		Id:        t.Id,
		UserId:    t.UserId,
		TokenHash: t.TokenHash,
		ExpiresAt: t.ExpiresAt,
		Revoked:   t.Revoked,
		IpAddress: t.IpAddress,
		UserAgent: t.UserAgent,
		CreatedAt: t.CreatedAt,
	}
}

func (m *UserMapper) UserProviderToModel(p *entity.UserProvider) *model.UserProvider {
	if p == nil {
		return nil
	}
	return &model.UserProvider{
		Id:             p.Id,
		UserId:         p.UserId,
		ProviderName:   p.ProviderName,
		ProviderUserId: p.ProviderUserId,
		AvatarURL:      p.AvatarURL,
		CreatedAt:      p.CreatedAt,
	}
}
