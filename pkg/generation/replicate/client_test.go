package replicate

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"emojify-be/pkg/generation"
)

func TestCreateJobSendsPromptAndToken(t *testing.T) {
	var gotAuth string
	var gotBody predictionRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/predictions" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		gotAuth = r.Header.Get("Authorization")
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"id":     "pred_123",
			"status": "starting",
		})
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "tok_test", "model-v1")
	job, err := client.CreateJob(context.Background(), "a happy taco", map[string]interface{}{"num_outputs": 1})
	if err != nil {
		t.Fatalf("CreateJob: %v", err)
	}

	if gotAuth != "Token tok_test" {
		t.Errorf("auth header = %q", gotAuth)
	}
	if gotBody.Version != "model-v1" {
		t.Errorf("version = %q", gotBody.Version)
	}
	if gotBody.Input["prompt"] != "a happy taco" {
		t.Errorf("prompt = %v", gotBody.Input["prompt"])
	}
	if job.Id != "pred_123" || job.Status != generation.JobPending {
		t.Errorf("job = %+v", job)
	}
}

func TestGetJobStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		response   string
		wantStatus generation.JobStatus
		wantOutput []string
		wantErrMsg string
	}{
		{
			name:       "succeeded with list output",
			response:   `{"id":"p1","status":"succeeded","output":["https://cdn.example/a.png"]}`,
			wantStatus: generation.JobSucceeded,
			wantOutput: []string{"https://cdn.example/a.png"},
		},
		{
			name:       "succeeded with scalar output",
			response:   `{"id":"p2","status":"succeeded","output":"https://cdn.example/b.png"}`,
			wantStatus: generation.JobSucceeded,
			wantOutput: []string{"https://cdn.example/b.png"},
		},
		{
			name:       "failed with error detail",
			response:   `{"id":"p3","status":"failed","error":"NSFW content detected"}`,
			wantStatus: generation.JobFailed,
			wantErrMsg: "NSFW content detected",
		},
		{
			name:       "still processing",
			response:   `{"id":"p4","status":"processing"}`,
			wantStatus: generation.JobProcessing,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			client := NewClientWithBaseURL(srv.URL, "tok", "v")
			job, err := client.GetJob(context.Background(), "any")
			if err != nil {
				t.Fatalf("GetJob: %v", err)
			}
			if job.Status != tt.wantStatus {
				t.Errorf("status = %s, want %s", job.Status, tt.wantStatus)
			}
			if len(job.Output) != len(tt.wantOutput) {
				t.Fatalf("output = %v, want %v", job.Output, tt.wantOutput)
			}
			for i := range tt.wantOutput {
				if job.Output[i] != tt.wantOutput[i] {
					t.Errorf("output[%d] = %q, want %q", i, job.Output[i], tt.wantOutput[i])
				}
			}
			if job.Error != tt.wantErrMsg {
				t.Errorf("error = %q, want %q", job.Error, tt.wantErrMsg)
			}
		})
	}
}

func TestAPIErrorSurfacesStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid token"}`))
	}))
	defer srv.Close()

	client := NewClientWithBaseURL(srv.URL, "bad", "v")
	if _, err := client.GetJob(context.Background(), "p"); err == nil {
		t.Fatal("expected error for 401 response")
	}
}
