// Package remote talks to the classification service: it submits drafts,
// polls job status, and adapts the two into the blocking submit-and-await
// contract the lifecycle controller consumes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"mailtriage/internal/triage"
)

// StatusResult is the wire status of a remote job. Any status other than
// "done" means keep polling.
type StatusResult struct {
	Status         string `json:"status"`
	Classification string `json:"classification"`
	SuggestedReply string `json:"suggested_reply"`
}

// Done reports whether the job reached its terminal server-side status.
func (r StatusResult) Done() bool {
	return r.Status == "done"
}

// HTTPClient calls the classification service over HTTP.
type HTTPClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewHTTPClient creates a client targeting the given service base URL.
func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// submitRequest is the JSON body for POST /emails.
type submitRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// submitResponse mirrors the JSON returned by POST /emails.
type submitResponse struct {
	ID string `json:"id"`
}

// Submit creates a classification job for the draft and returns the
// remote job id. Any non-2xx status is a hard failure for the call.
func (c *HTTPClient) Submit(ctx context.Context, title, body string) (string, error) {
	payload, err := json.Marshal(submitRequest{Title: title, Content: body})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/emails", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating submit request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submitting draft: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("submit: unexpected status %d", resp.StatusCode)
	}

	var created submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("decoding submit response: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("submit: response has no job id")
	}
	return created.ID, nil
}

// Status fetches the current status of a previously submitted job.
func (c *HTTPClient) Status(ctx context.Context, jobID string) (StatusResult, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/emails/"+jobID, nil)
	if err != nil {
		return StatusResult{}, fmt.Errorf("creating status request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return StatusResult{}, fmt.Errorf("fetching status: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return StatusResult{}, fmt.Errorf("status %s: unexpected status %d", jobID, resp.StatusCode)
	}

	var res StatusResult
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return StatusResult{}, fmt.Errorf("decoding status response: %w", err)
	}
	return res, nil
}

// Service bundles an HTTP client with a poll configuration to satisfy the
// controller's Classifier contract.
type Service struct {
	client *HTTPClient
	poll   PollConfig
}

// NewService creates a Service for the given base URL. Zero fields of cfg
// take the poll defaults.
func NewService(baseURL string, cfg PollConfig) *Service {
	return &Service{client: NewHTTPClient(baseURL), poll: cfg}
}

// Submit creates a classification job for the draft.
func (s *Service) Submit(ctx context.Context, title, body string) (string, error) {
	return s.client.Submit(ctx, title, body)
}

// Await polls the job until it reports done, returning the terminal result.
func (s *Service) Await(ctx context.Context, jobID string) (triage.Result, error) {
	res, err := Poll(ctx, s.client, jobID, s.poll)
	if err != nil {
		return triage.Result{}, err
	}
	return triage.Result{
		Classification: res.Classification,
		SuggestedReply: res.SuggestedReply,
	}, nil
}
