package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type SavedEmoji struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	UserId    uuid.UUID      `gorm:"type:uuid;not null;index"`
	Prompt    string         `gorm:"type:text;not null"`
	ImageURL  string         `gorm:"type:text;not null"`
	JobId     string         `gorm:"type:varchar(255)"`
	Params    datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
}

func (SavedEmoji) TableName() string {
	return "saved_emojis"
}
