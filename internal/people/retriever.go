package people

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/resilience"
	"github.com/sells-group/outreach-cli/pkg/browseruse"
	"github.com/sells-group/outreach-cli/pkg/serper"
)

// Query positions within the fixed query list. The sparse-result check
// looks at the recruiter and role queries specifically.
const (
	recruiterQueryIndex = 1
	roleQueryIndex      = 2
)

// Retriever executes search queries against the primary search backend
// and falls back to browser automation when results are too sparse.
type Retriever struct {
	search          serper.Client
	browser         browseruse.Client
	resultsPerQuery int
	fallbackMinimum int
	maxSteps        int
}

// NewRetriever creates a Retriever. The browser client may be nil, in
// which case the fallback path is skipped.
func NewRetriever(search serper.Client, browser browseruse.Client, resultsPerQuery, fallbackMinimum, maxSteps int) *Retriever {
	if resultsPerQuery <= 0 {
		resultsPerQuery = 10
	}
	if fallbackMinimum <= 0 {
		fallbackMinimum = 2
	}
	if maxSteps <= 0 {
		maxSteps = 30
	}
	return &Retriever{
		search:          search,
		browser:         browser,
		resultsPerQuery: resultsPerQuery,
		fallbackMinimum: fallbackMinimum,
		maxSteps:        maxSteps,
	}
}

// Retrieve runs all queries concurrently against the search backend and
// aggregates parsed candidates in query order. A failed query never
// aborts the others; a fully empty retrieval is a valid empty result.
func (r *Retriever) Retrieve(ctx context.Context, company string, queries []string) []model.Candidate {
	log := zap.L().With(zap.String("company", company), zap.String("stage", "retrieve"))

	perQuery := make([][]model.Candidate, len(queries))
	var mu sync.Mutex

	g, gCtx := errgroup.WithContext(ctx)
	for i, q := range queries {
		g.Go(func() error {
			retryCfg := resilience.DefaultRetryConfig()
			retryCfg.OnRetry = resilience.RetryLogger("serper", "search")
			results, err := resilience.DoVal(gCtx, retryCfg, func(ctx context.Context) ([]serper.Result, error) {
				return r.search.Search(ctx, q, r.resultsPerQuery)
			})
			if err != nil {
				log.Warn("search query failed", zap.Int("query", i), zap.Error(err))
				return nil
			}
			parsed := parseSearchResults(results)
			mu.Lock()
			perQuery[i] = parsed
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	var all []model.Candidate
	for _, batch := range perQuery {
		all = append(all, batch...)
	}

	// Fall back to browser automation when both the recruiter and the
	// role query came back too sparse.
	if r.tooSparse(perQuery) && r.browser != nil {
		log.Info("sparse search results, trying browser fallback",
			zap.Int("parsed", len(all)))
		all = append(all, r.browserFallback(ctx, company)...)
	}

	log.Info("retrieval complete", zap.Int("candidates", len(all)))
	return all
}

func (r *Retriever) tooSparse(perQuery [][]model.Candidate) bool {
	if len(perQuery) <= roleQueryIndex {
		return countAll(perQuery) < r.fallbackMinimum
	}
	return len(perQuery[recruiterQueryIndex]) < r.fallbackMinimum &&
		len(perQuery[roleQueryIndex]) < r.fallbackMinimum
}

func countAll(perQuery [][]model.Candidate) int {
	n := 0
	for _, batch := range perQuery {
		n += len(batch)
	}
	return n
}

// browserFallback runs a broader site-restricted search via browser
// automation, then a direct in-site search if still empty.
func (r *Retriever) browserFallback(ctx context.Context, company string) []model.Candidate {
	log := zap.L().With(zap.String("company", company), zap.String("stage", "retrieve_fallback"))

	task := fmt.Sprintf(
		`Go to google.com and search for: site:linkedin.com/in "at %s" recruiter OR engineer. `+
			`For each result that is a LinkedIn profile, get the name, title, URL, and the snippet text. `+
			`Return JSON: {"people": [{"name": "...", "title": "...", "linkedin_url": "...", "recent_activity": "..."}]}.`,
		company,
	)
	result, err := r.browser.RunTask(ctx, browseruse.TaskRequest{
		Task:     task,
		StartURL: "https://www.google.com",
		MaxSteps: r.maxSteps,
	})
	if err != nil {
		log.Warn("browser google fallback failed", zap.Error(err))
	} else if result.Success {
		if people := ParsePeople(result.Output); len(people) > 0 {
			return people
		}
	}

	// Last resort: search inside LinkedIn directly.
	task = fmt.Sprintf(
		`Go to linkedin.com and search for people who work at "%s" as recruiters or engineers. `+
			`Only include people who currently work at %s. If login is required, return whatever is visible. `+
			`Return JSON: {"people": [{"name": "...", "title": "...", "linkedin_url": "...", "recent_activity": ""}]}.`,
		company, company,
	)
	result, err = r.browser.RunTask(ctx, browseruse.TaskRequest{
		Task:     task,
		StartURL: "https://www.linkedin.com/search/results/people/",
		MaxSteps: r.maxSteps,
	})
	if err != nil {
		log.Warn("browser linkedin fallback failed", zap.Error(err))
		return nil
	}
	if !result.Success {
		log.Warn("browser linkedin fallback unsuccessful", zap.String("error", result.Error))
		return nil
	}
	return ParsePeople(result.Output)
}

// titleSeparators are tried in order when splitting a search-result
// title into name and role text.
var titleSeparators = []string{" - ", " – ", " | ", " — "}

// parseSearchResults keeps only results whose link is a LinkedIn
// profile path and splits the result title into name and title text.
func parseSearchResults(results []serper.Result) []model.Candidate {
	var out []model.Candidate
	for _, res := range results {
		if !strings.Contains(strings.ToLower(res.Link), "linkedin.com/in/") {
			continue
		}
		name, title := splitResultTitle(res.Title)
		if name == "" {
			continue
		}
		out = append(out, model.Candidate{
			Name:       name,
			Title:      title,
			ProfileURL: res.Link,
			Snippet:    res.Snippet,
		})
	}
	return out
}

// splitResultTitle splits "Jane Doe - Senior Recruiter - Acme | LinkedIn"
// into name and title. Everything after the first separator is title
// text, with the trailing LinkedIn marker removed.
func splitResultTitle(raw string) (name, title string) {
	raw = strings.TrimSpace(raw)
	for _, suffix := range []string{"| LinkedIn", "- LinkedIn"} {
		raw = strings.TrimSpace(strings.TrimSuffix(raw, suffix))
	}

	for _, sep := range titleSeparators {
		if idx := strings.Index(raw, sep); idx > 0 {
			return strings.TrimSpace(raw[:idx]), strings.TrimSpace(raw[idx+len(sep):])
		}
	}
	return raw, ""
}
