package model

import (
	"time"

	"github.com/google/uuid"
)

type ProcessedWebhookEvent struct {
	Id          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	EventId     string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	EventType   string    `gorm:"type:varchar(100);not null"`
	ProcessedAt time.Time `gorm:"autoCreateTime"`
}

func (ProcessedWebhookEvent) TableName() string {
	return "processed_webhook_events"
}
