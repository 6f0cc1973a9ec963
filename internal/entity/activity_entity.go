package entity

import (
	"time"

	"github.com/google/uuid"
)

type ActivityType string

const (
	ActivityGenerationCompleted ActivityType = "generation_completed"
	ActivityPlanChanged         ActivityType = "plan_changed"
	ActivityEmojiSaved          ActivityType = "emoji_saved"
)

// Activity is an append-only log entry; no state machine, plain CRUD.
type Activity struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Type      ActivityType
	Metadata  map[string]interface{}
	CreatedAt time.Time
}
