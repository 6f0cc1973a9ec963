package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "GENERATION_COMPLETED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent helps embed common logic if needed,
// strictly creating valid implementations is preferred though.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

const (
	TypeGenerationCompleted = "GENERATION_COMPLETED"
	TypeGenerationFailed    = "GENERATION_FAILED"
	TypePlanChanged         = "PLAN_CHANGED"
	TypeUsageLimitHit       = "USAGE_LIMIT_HIT"
)

func NewGenerationCompleted(userId, prompt, imageURL string) Event {
	return BaseEvent{
		Type: TypeGenerationCompleted,
		Data: map[string]interface{}{
			"user_id":   userId,
			"prompt":    prompt,
			"image_url": imageURL,
		},
		OccurredAt: time.Now(),
	}
}

func NewGenerationFailed(userId, prompt, reason string) Event {
	return BaseEvent{
		Type: TypeGenerationFailed,
		Data: map[string]interface{}{
			"user_id": userId,
			"prompt":  prompt,
			"reason":  reason,
		},
		OccurredAt: time.Now(),
	}
}

func NewPlanChanged(userId, planType, status string) Event {
	return BaseEvent{
		Type: TypePlanChanged,
		Data: map[string]interface{}{
			"user_id":   userId,
			"plan_type": planType,
			"status":    status,
		},
		OccurredAt: time.Now(),
	}
}

func NewUsageLimitHit(userId string, used, limit int) Event {
	return BaseEvent{
		Type: TypeUsageLimitHit,
		Data: map[string]interface{}{
			"user_id":     userId,
			"usage_count": used,
			"usage_limit": limit,
		},
		OccurredAt: time.Now(),
	}
}
