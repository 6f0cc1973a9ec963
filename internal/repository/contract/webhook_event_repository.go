package contract

import (
	"context"
)

type WebhookEventRepository interface {
	// MarkProcessed records an event id. Returns false when the id was
	// already recorded (redelivery).
	MarkProcessed(ctx context.Context, eventId, eventType string) (bool, error)
	IsProcessed(ctx context.Context, eventId string) (bool, error)
}
