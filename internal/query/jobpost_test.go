package query

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/firecrawl"
)

type fakeCrawler struct {
	markdown string
	err      error
}

func (f *fakeCrawler) Search(ctx context.Context, req firecrawl.SearchRequest) (*firecrawl.SearchResponse, error) {
	return &firecrawl.SearchResponse{Success: true}, nil
}

func (f *fakeCrawler) Scrape(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &firecrawl.ScrapeResponse{
		Success: true,
		Data:    firecrawl.PageData{URL: req.URL, Markdown: f.markdown},
	}, nil
}

type fakeAI struct {
	text string
	err  error
}

func (f *fakeAI) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: f.text}},
	}, nil
}

func TestJobAnalyzer_Analyze(t *testing.T) {
	crawler := &fakeCrawler{markdown: "# Backend Engineer, Payments\nWe use Go and Postgres."}
	ai := &fakeAI{text: `{"team": "Payments", "department": "Engineering", "keywords": ["go", "postgres"], "seniority": "intern", "location": "NYC"}`}

	a := NewJobAnalyzer(crawler, ai, "test-model")
	jobCtx := a.Analyze(context.Background(), "https://example.com/jobs/1")

	require.False(t, jobCtx.Empty())
	assert.Equal(t, "Payments", jobCtx.Team)
	assert.Equal(t, "Engineering", jobCtx.Department)
	assert.Equal(t, []string{"go", "postgres"}, jobCtx.Keywords)
}

func TestJobAnalyzer_EmptyOnFailure(t *testing.T) {
	tests := []struct {
		name    string
		crawler firecrawl.Client
		ai      anthropic.Client
	}{
		{"scrape error", &fakeCrawler{err: eris.New("boom")}, &fakeAI{text: "{}"}},
		{"empty page", &fakeCrawler{markdown: ""}, &fakeAI{text: "{}"}},
		{"model error", &fakeCrawler{markdown: "posting"}, &fakeAI{err: eris.New("boom")}},
		{"garbage output", &fakeCrawler{markdown: "posting"}, &fakeAI{text: "not json"}},
		{"nil crawler", nil, &fakeAI{text: "{}"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewJobAnalyzer(tt.crawler, tt.ai, "test-model")
			jobCtx := a.Analyze(context.Background(), "https://example.com/jobs/1")
			assert.True(t, jobCtx.Empty())
		})
	}
}

func TestJobAnalyzer_NoURL(t *testing.T) {
	a := NewJobAnalyzer(&fakeCrawler{}, &fakeAI{}, "test-model")
	assert.True(t, a.Analyze(context.Background(), "").Empty())
}

func TestParseJobContext(t *testing.T) {
	jobCtx, ok := parseJobContext("Here is the result:\n{\"team\": \"Infra\"}\nDone.")
	require.True(t, ok)
	assert.Equal(t, "Infra", jobCtx.Team)

	_, ok = parseJobContext("no braces here")
	assert.False(t, ok)
}
