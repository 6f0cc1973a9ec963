package entity

import (
	"time"

	"github.com/google/uuid"
)

// ProcessedWebhookEvent records a billing event id that has already been
// applied, so redelivered webhooks short-circuit instead of mutating twice.
type ProcessedWebhookEvent struct {
	Id          uuid.UUID
	EventId     string
	EventType   string
	ProcessedAt time.Time
}
