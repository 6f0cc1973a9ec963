package dto

import "time"

type SaveEmojiRequest struct {
	Prompt   string                 `json:"prompt" validate:"required,min=1,max=500"`
	ImageURL string                 `json:"image_url" validate:"required,url"`
	JobId    string                 `json:"job_id"`
	Params   map[string]interface{} `json:"params"`
}

type EmojiResponse struct {
	Id        string                 `json:"id"`
	Prompt    string                 `json:"prompt"`
	ImageURL  string                 `json:"image_url"`
	JobId     string                 `json:"job_id,omitempty"`
	Params    map[string]interface{} `json:"params,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

type ListEmojisRequest struct {
	Page     int `query:"page"`
	PageSize int `query:"page_size"`
}
