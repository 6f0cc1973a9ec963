package model

import (
	"time"

	"github.com/google/uuid"
)

// Subscription is stored as embedded columns on the users row
// (subscription_* prefix). An empty plan_type marks the implicit default
// FREE subscription; the column defaults keep the quota predicates valid
// for rows that never went through a plan selection.
type Subscription struct {
	PlanType         string `gorm:"type:varchar(20);default:''"`
	BillingFrequency string `gorm:"type:varchar(20);default:''"`
	Status           string `gorm:"type:varchar(20);default:''"`

	StripeCustomerId     *string `gorm:"type:varchar(255);index"`
	StripeSubscriptionId *string `gorm:"type:varchar(255);index"`
	StripePriceId        *string `gorm:"type:varchar(255)"`
	StripeSessionId      *string `gorm:"type:varchar(255)"`

	CurrentPeriodStart *time.Time
	CurrentPeriodEnd   *time.Time
	CancelAtPeriodEnd  bool `gorm:"default:false"`

	UsageCount int `gorm:"default:0"`
	UsageLimit int `gorm:"default:5"`
	LastReset  *time.Time

	CreatedAt *time.Time
	UpdatedAt *time.Time
}

type User struct {
	Id           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	PasswordHash *string   `gorm:"type:varchar(255)"`
	DisplayName  string    `gorm:"type:varchar(255);not null"`
	AvatarURL    *string   `gorm:"type:text"`
	Bio          *string   `gorm:"type:text"`

	Subscription Subscription `gorm:"embedded;embeddedPrefix:subscription_"`

	CreatedAt time.Time `gorm:"autoCreateTime"`
	UpdatedAt time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}

type UserRefreshToken struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID `gorm:"type:uuid;not null;index"`
	TokenHash string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	Revoked   bool      `gorm:"default:false"`
	IpAddress string    `gorm:"type:varchar(45)"`
	UserAgent string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (UserRefreshToken) TableName() string {
	return "user_refresh_tokens"
}

type UserProvider struct {
	Id             uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId         uuid.UUID `gorm:"type:uuid;not null;index"`
	ProviderName   string    `gorm:"type:varchar(50);not null"`
	ProviderUserId string    `gorm:"type:varchar(255);not null"`
	AvatarURL      string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"autoCreateTime"`
}

func (UserProvider) TableName() string {
	return "user_providers"
}
