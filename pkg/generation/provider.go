package generation

import "context"

type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobSucceeded  JobStatus = "succeeded"
	JobFailed     JobStatus = "failed"
	JobCanceled   JobStatus = "canceled"
)

// Job is the provider-neutral view of an image generation run.
type Job struct {
	Id     string
	Status JobStatus
	Output []string
	Error  string
}

func (j *Job) Done() bool {
	return j.Status == JobSucceeded || j.Status == JobFailed || j.Status == JobCanceled
}

// Provider abstracts the external image model API. Implementations must be
// safe for concurrent use.
type Provider interface {
	// CreateJob submits a prompt and returns the job in its initial state.
	CreateJob(ctx context.Context, prompt string, params map[string]interface{}) (*Job, error)

	// GetJob fetches the current state of a previously created job.
	GetJob(ctx context.Context, jobId string) (*Job, error)
}
