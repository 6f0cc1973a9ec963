package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"emojify-be/pkg/generation"
)

const DefaultBaseURL = "https://api.replicate.com/v1"

// Client talks to the Replicate predictions API.
type Client struct {
	baseURL      string
	apiToken     string
	modelVersion string
	httpClient   *http.Client
}

func NewClient(apiToken, modelVersion string) *Client {
	return &Client{
		baseURL:      DefaultBaseURL,
		apiToken:     apiToken,
		modelVersion: modelVersion,
		httpClient:   &http.Client{Timeout: 30 * time.Second},
	}
}

// NewClientWithBaseURL is used by tests to point at a stub server.
func NewClientWithBaseURL(baseURL, apiToken, modelVersion string) *Client {
	c := NewClient(apiToken, modelVersion)
	c.baseURL = baseURL
	return c
}

type predictionRequest struct {
	Version string                 `json:"version"`
	Input   map[string]interface{} `json:"input"`
}

type predictionResponse struct {
	Id     string          `json:"id"`
	Status string          `json:"status"`
	Output json.RawMessage `json:"output"`
	Error  *string         `json:"error"`
}

func (c *Client) CreateJob(ctx context.Context, prompt string, params map[string]interface{}) (*generation.Job, error) {
	input := map[string]interface{}{"prompt": prompt}
	for k, v := range params {
		input[k] = v
	}

	body, err := json.Marshal(predictionRequest{
		Version: c.modelVersion,
		Input:   input,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal prediction request: %w", err)
	}

	resp, err := c.do(ctx, http.MethodPost, "/predictions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	return toJob(resp), nil
}

func (c *Client) GetJob(ctx context.Context, jobId string) (*generation.Job, error) {
	resp, err := c.do(ctx, http.MethodGet, "/predictions/"+jobId, nil)
	if err != nil {
		return nil, err
	}
	return toJob(resp), nil
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*predictionResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Token "+c.apiToken)
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("replicate request failed: %w", err)
	}
	defer httpResp.Body.Close()

	raw, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read replicate response: %w", err)
	}

	if httpResp.StatusCode >= 400 {
		return nil, fmt.Errorf("replicate API error (status %d): %s", httpResp.StatusCode, string(raw))
	}

	var resp predictionResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode replicate response: %w", err)
	}
	return &resp, nil
}

// toJob normalizes the provider response. Output can be a single URL or a
// list of URLs depending on the model.
func toJob(resp *predictionResponse) *generation.Job {
	job := &generation.Job{
		Id:     resp.Id,
		Status: mapStatus(resp.Status),
	}
	if resp.Error != nil {
		job.Error = *resp.Error
	}

	if len(resp.Output) > 0 {
		var list []string
		if err := json.Unmarshal(resp.Output, &list); err == nil {
			job.Output = list
		} else {
			var single string
			if err := json.Unmarshal(resp.Output, &single); err == nil && single != "" {
				job.Output = []string{single}
			}
		}
	}

	return job
}

func mapStatus(s string) generation.JobStatus {
	switch s {
	case "starting":
		return generation.JobPending
	case "processing":
		return generation.JobProcessing
	case "succeeded":
		return generation.JobSucceeded
	case "failed":
		return generation.JobFailed
	case "canceled":
		return generation.JobCanceled
	default:
		return generation.JobPending
	}
}
