package dto

import "time"

type SubscriptionResponse struct {
	PlanType          string     `json:"plan_type"`
	BillingFrequency  string     `json:"billing_frequency,omitempty"`
	Status            string     `json:"status"`
	UsageCount        int        `json:"usage_count"`
	UsageLimit        int        `json:"usage_limit"`
	Unlimited         bool       `json:"unlimited"`
	CurrentPeriodEnd  *time.Time `json:"current_period_end,omitempty"`
	CancelAtPeriodEnd bool       `json:"cancel_at_period_end"`
}

type UserResponse struct {
	Id           string               `json:"id"`
	Email        string               `json:"email"`
	DisplayName  string               `json:"display_name"`
	AvatarURL    *string              `json:"avatar_url,omitempty"`
	Bio          *string              `json:"bio,omitempty"`
	Subscription SubscriptionResponse `json:"subscription"`
	CreatedAt    time.Time            `json:"created_at"`
}

type UpdateProfileRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,min=1,max=100"`
	AvatarURL   *string `json:"avatar_url" validate:"omitempty,url"`
	Bio         *string `json:"bio" validate:"omitempty,max=500"`
}

type UsageResponse struct {
	PlanType   string `json:"plan_type"`
	UsageCount int    `json:"usage_count"`
	UsageLimit int    `json:"usage_limit"`
	Unlimited  bool   `json:"unlimited"`
	Remaining  int    `json:"remaining"`
}

type DeleteAccountRequest struct {
	Email string `json:"email" validate:"required,email"`
}
