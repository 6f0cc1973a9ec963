package dto

type GenerateRequest struct {
	Prompt string                 `json:"prompt" validate:"required,min=1,max=500"`
	Params map[string]interface{} `json:"params"`
}

type GenerateResponse struct {
	JobId    string        `json:"job_id"`
	ImageURL string        `json:"image_url"`
	Prompt   string        `json:"prompt"`
	Usage    UsageResponse `json:"usage"`
}
