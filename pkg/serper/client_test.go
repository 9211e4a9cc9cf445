package serper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/resilience"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("test-api-key", WithBaseURL(srv.URL))
}

func TestSearch(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "test-api-key", r.Header.Get("X-API-KEY"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req searchRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, `site:linkedin.com/in "Acme" recruiter`, req.Q)
		assert.Equal(t, 10, req.Num)

		json.NewEncoder(w).Encode(searchResponse{Organic: []Result{
			{Title: "Jane Doe - Recruiter - Acme | LinkedIn", Link: "https://www.linkedin.com/in/janedoe", Snippet: "Recruiter at Acme"},
			{Title: "Bob Smith - Engineer - Acme | LinkedIn", Link: "https://www.linkedin.com/in/bobsmith", Snippet: "Engineer at Acme"},
		}})
	})

	results, err := c.Search(context.Background(), `site:linkedin.com/in "Acme" recruiter`, 10)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "https://www.linkedin.com/in/janedoe", results[0].Link)
}

func TestSearch_LimitAppliedToResponse(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(searchResponse{Organic: []Result{
			{Link: "https://a.example"}, {Link: "https://b.example"}, {Link: "https://c.example"},
		}})
	})

	results, err := c.Search(context.Background(), "q", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
}

func TestSearch_ServerErrorIsTransient(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte(`{"error":"overloaded"}`))
	})

	_, err := c.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.True(t, resilience.IsTransient(err))
}

func TestSearch_AuthErrorIsNotTransient(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"invalid api key"}`))
	})

	_, err := c.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.False(t, resilience.IsTransient(err))
}

func TestSearch_MalformedJSON(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{not json`))
	})

	_, err := c.Search(context.Background(), "q", 10)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unmarshal response")
}

func TestSearch_ContextCancellation(t *testing.T) {
	c := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("request should have been cancelled")
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.Search(ctx, "q", 10)
	require.Error(t, err)
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()
	customClient := &http.Client{}
	c := NewClient("key", WithHTTPClient(customClient))
	hc := c.(*httpClient)
	assert.Equal(t, customClient, hc.http)
}

func TestWithRateLimit(t *testing.T) {
	t.Parallel()
	c := NewClient("key", WithRateLimit(2))
	hc := c.(*httpClient)
	require.NotNil(t, hc.limiter)
	assert.InDelta(t, 2.0, float64(hc.limiter.Limit()), 1e-9)
}
