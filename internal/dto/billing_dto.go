package dto

type CheckoutRequest struct {
	// Email identifies the purchaser when the request carries no session.
	Email     string `json:"email" validate:"omitempty,email"`
	Frequency string `json:"frequency" validate:"required,oneof=monthly annual"`
}

type CheckoutResponse struct {
	SessionId   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

type PlanResponse struct {
	PlanType        string   `json:"plan_type"`
	Name            string   `json:"name"`
	MonthlyPriceUsd float64  `json:"monthly_price_usd"`
	AnnualPriceUsd  float64  `json:"annual_price_usd"`
	GenerationLimit int      `json:"generation_limit"`
	Unlimited       bool     `json:"unlimited"`
	Features        []string `json:"features"`
}

type BillingPortalResponse struct {
	PortalURL string `json:"portal_url"`
}
