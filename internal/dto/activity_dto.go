package dto

import "time"

type ActivityResponse struct {
	Id        string                 `json:"id"`
	Type      string                 `json:"type"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}
