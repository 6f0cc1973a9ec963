package entity

import (
	"time"

	"github.com/google/uuid"
)

// SavedEmoji is a generated image the user chose to keep.
type SavedEmoji struct {
	Id        uuid.UUID
	UserId    uuid.UUID
	Prompt    string
	ImageURL  string
	JobId     string
	Params    map[string]interface{} // generation parameters as sent to the provider
	CreatedAt time.Time
}
