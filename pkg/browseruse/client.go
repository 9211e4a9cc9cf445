// Package browseruse provides a client for the Browser Use cloud API.
// It is used only as a fallback retrieval path when plain search comes
// back too sparse.
package browseruse

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.browser-use.com/api/v1"

// Client runs browser automation tasks.
type Client interface {
	RunTask(ctx context.Context, req TaskRequest) (*TaskResult, error)
}

// TaskRequest describes a browser automation task.
type TaskRequest struct {
	Task     string `json:"task"`
	StartURL string `json:"start_url,omitempty"`
	MaxSteps int    `json:"max_steps,omitempty"`
}

// TaskResult is the outcome of a completed task. Output is unstructured
// text; callers are expected to extract any embedded payload themselves.
type TaskResult struct {
	Success bool   `json:"success"`
	Output  string `json:"output"`
	Error   string `json:"error,omitempty"`
}

type createTaskResponse struct {
	ID string `json:"id"`
}

type taskStatusResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"` // "created", "running", "finished", "failed", "stopped"
	Output string `json:"output"`
	Error  string `json:"error"`
}

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default base URL.
func WithBaseURL(url string) Option {
	return func(c *httpClient) {
		c.baseURL = url
	}
}

// WithHTTPClient sets a custom *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

// WithPollInterval overrides how often task status is polled.
func WithPollInterval(d time.Duration) Option {
	return func(c *httpClient) {
		c.pollInterval = d
	}
}

type httpClient struct {
	apiKey       string
	baseURL      string
	http         *http.Client
	pollInterval time.Duration
}

// NewClient creates a new Browser Use client.
func NewClient(apiKey string, opts ...Option) Client {
	c := &httpClient{
		apiKey:       apiKey,
		baseURL:      defaultBaseURL,
		pollInterval: 3 * time.Second,
		http: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// RunTask submits a task and polls until it finishes or ctx expires.
func (c *httpClient) RunTask(ctx context.Context, req TaskRequest) (*TaskResult, error) {
	var created createTaskResponse
	if err := c.post(ctx, "/run-task", req, &created); err != nil {
		return nil, eris.Wrap(err, "browseruse: create task")
	}
	if created.ID == "" {
		return nil, eris.New("browseruse: empty task id")
	}

	ticker := time.NewTicker(c.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, eris.Wrap(ctx.Err(), "browseruse: task wait")
		case <-ticker.C:
		}

		var status taskStatusResponse
		if err := c.get(ctx, fmt.Sprintf("/task/%s", created.ID), &status); err != nil {
			return nil, eris.Wrap(err, "browseruse: get task status")
		}

		switch status.Status {
		case "finished":
			return &TaskResult{Success: true, Output: status.Output}, nil
		case "failed", "stopped":
			return &TaskResult{Success: false, Output: status.Output, Error: status.Error}, nil
		}
	}
}

func (c *httpClient) post(ctx context.Context, path string, body any, out any) error {
	buf, err := json.Marshal(body)
	if err != nil {
		return eris.Wrap(err, "marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	return c.do(req, out)
}

func (c *httpClient) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
