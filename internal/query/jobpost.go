package query

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/firecrawl"
)

const jobPostSystemPrompt = `You extract structured hiring context from job postings.

Given the text of a job posting, return ONLY a JSON object:
{"team": "...", "department": "...", "keywords": ["..."], "seniority": "...", "location": "..."}

Use empty strings / empty arrays for anything the posting does not state.
Keywords are the 3-6 most specific technologies or domains mentioned.`

// maxPostingChars bounds how much scraped markdown goes into the prompt.
const maxPostingChars = 12000

// JobAnalyzer extracts targeting context from a job-posting URL.
type JobAnalyzer struct {
	crawler   firecrawl.Client
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewJobAnalyzer wires the analyzer. Either client may be nil, in which
// case Analyze always returns an empty context.
func NewJobAnalyzer(crawler firecrawl.Client, ai anthropic.Client, model string) *JobAnalyzer {
	return &JobAnalyzer{crawler: crawler, ai: ai, model: model, maxTokens: 512}
}

// Analyze scrapes the posting and extracts a JobContext. Analysis is
// strictly best-effort: any failure returns an empty context and a
// warning, never an error, so the pipeline proceeds with broad queries.
func (a *JobAnalyzer) Analyze(ctx context.Context, jobURL string) model.JobContext {
	if jobURL == "" || a.crawler == nil || a.ai == nil {
		return model.JobContext{}
	}

	log := zap.L().With(zap.String("url", jobURL), zap.String("stage", "jobpost"))

	resp, err := a.crawler.Scrape(ctx, firecrawl.ScrapeRequest{
		URL:     jobURL,
		Formats: []string{"markdown"},
	})
	if err != nil {
		log.Warn("job posting scrape failed", zap.Error(err))
		return model.JobContext{}
	}

	posting := resp.Data.Markdown
	if posting == "" {
		log.Warn("job posting scrape returned no content")
		return model.JobContext{}
	}
	if len(posting) > maxPostingChars {
		posting = posting[:maxPostingChars]
	}

	msg, err := a.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     a.model,
		MaxTokens: a.maxTokens,
		System:    jobPostSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf("Job posting:\n\n%s", posting)},
		},
	})
	if err != nil {
		log.Warn("job posting analysis failed", zap.Error(err))
		return model.JobContext{}
	}
	msg.Usage.LogCost(a.model, "jobpost")

	jobCtx, ok := parseJobContext(anthropic.Text(msg))
	if !ok {
		log.Warn("unparseable job posting analysis")
		return model.JobContext{}
	}

	log.Info("extracted job context",
		zap.String("team", jobCtx.Team),
		zap.String("department", jobCtx.Department),
		zap.Int("keywords", len(jobCtx.Keywords)))
	return jobCtx
}

func parseJobContext(text string) (model.JobContext, bool) {
	start, end := strings.Index(text, "{"), strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return model.JobContext{}, false
	}

	var jobCtx model.JobContext
	if err := json.Unmarshal([]byte(text[start:end+1]), &jobCtx); err != nil {
		return model.JobContext{}, false
	}
	return jobCtx, true
}
