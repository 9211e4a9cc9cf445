package browseruse

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL), WithPollInterval(5*time.Millisecond))
}

func TestRunTask(t *testing.T) {
	var polls atomic.Int32
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/run-task":
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-api-key", r.Header.Get("Authorization"))

			var req TaskRequest
			require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Contains(t, req.Task, "linkedin")
			assert.Equal(t, 30, req.MaxSteps)

			json.NewEncoder(w).Encode(createTaskResponse{ID: "task-123"})
		case "/task/task-123":
			assert.Equal(t, http.MethodGet, r.Method)
			status := "running"
			output := ""
			if polls.Add(1) >= 2 {
				status = "finished"
				output = `{"people": []}`
			}
			json.NewEncoder(w).Encode(taskStatusResponse{ID: "task-123", Status: status, Output: output})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	result, err := c.RunTask(context.Background(), TaskRequest{
		Task:     "search linkedin for recruiters",
		StartURL: "https://www.google.com",
		MaxSteps: 30,
	})
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, `{"people": []}`, result.Output)
	assert.GreaterOrEqual(t, polls.Load(), int32(2))
}

func TestRunTask_Failed(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/run-task":
			json.NewEncoder(w).Encode(createTaskResponse{ID: "task-456"})
		default:
			json.NewEncoder(w).Encode(taskStatusResponse{
				ID: "task-456", Status: "failed", Error: "captcha wall",
			})
		}
	})

	result, err := c.RunTask(context.Background(), TaskRequest{Task: "t"})
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, "captcha wall", result.Error)
}

func TestRunTask_EmptyTaskID(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(createTaskResponse{})
	})

	_, err := c.RunTask(context.Background(), TaskRequest{Task: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty task id")
}

func TestRunTask_ContextCancelledWhilePolling(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/run-task":
			json.NewEncoder(w).Encode(createTaskResponse{ID: "task-789"})
		default:
			json.NewEncoder(w).Encode(taskStatusResponse{ID: "task-789", Status: "running"})
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()

	_, err := c.RunTask(ctx, TaskRequest{Task: "t"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRunTask_ServerError(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":"boom"}`))
	})

	_, err := c.RunTask(context.Background(), TaskRequest{Task: "t"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 500")
}
