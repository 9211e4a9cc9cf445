package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/dnsx"
	"github.com/sells-group/outreach-cli/internal/email"
	"github.com/sells-group/outreach-cli/internal/people"
	"github.com/sells-group/outreach-cli/internal/query"
	"github.com/sells-group/outreach-cli/internal/run"
	"github.com/sells-group/outreach-cli/internal/score"
	"github.com/sells-group/outreach-cli/internal/store"
	anthropicpkg "github.com/sells-group/outreach-cli/pkg/anthropic"
	"github.com/sells-group/outreach-cli/pkg/browseruse"
	"github.com/sells-group/outreach-cli/pkg/firecrawl"
	"github.com/sells-group/outreach-cli/pkg/github"
	"github.com/sells-group/outreach-cli/pkg/serper"
)

// pipelineEnv holds the initialized clients, store, and orchestrator
// needed by the find/resolve/serve commands.
type pipelineEnv struct {
	Store        store.Store
	Orchestrator *run.Orchestrator
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

// initStore opens the configured persistence backend.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "outreach.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store, all API clients, and the orchestrator.
// Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if cfg.Serper.Key == "" {
		return nil, eris.New("serper API key is required (OUTREACH_SERPER_KEY)")
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}
	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	serperClient := serper.NewClient(cfg.Serper.Key,
		serper.WithBaseURL(cfg.Serper.BaseURL),
		serper.WithRateLimit(cfg.Serper.RatePerSec),
	)

	var firecrawlClient firecrawl.Client
	if cfg.Firecrawl.Key != "" {
		firecrawlClient = firecrawl.NewClient(cfg.Firecrawl.Key, firecrawl.WithBaseURL(cfg.Firecrawl.BaseURL))
	} else {
		zap.L().Debug("OUTREACH_FIRECRAWL_KEY not set, domain discovery degraded to slug fallback")
	}

	var browserClient browseruse.Client
	if cfg.BrowserUse.Key != "" {
		browserClient = browseruse.NewClient(cfg.BrowserUse.Key, browseruse.WithBaseURL(cfg.BrowserUse.BaseURL))
	} else {
		zap.L().Debug("OUTREACH_BROWSER_USE_KEY not set, browser fallback disabled")
	}

	var aiClient anthropicpkg.Client
	if cfg.Anthropic.Key != "" {
		aiClient = anthropicpkg.NewClient(cfg.Anthropic.Key)
	} else {
		zap.L().Warn("anthropic key not set, using heuristic scoring and skipping validation")
	}

	githubClient := github.NewClient(cfg.GitHub.Token, github.WithBaseURL(cfg.GitHub.BaseURL))

	var analyzer *query.JobAnalyzer
	if firecrawlClient != nil && aiClient != nil {
		analyzer = query.NewJobAnalyzer(firecrawlClient, aiClient, cfg.Anthropic.HaikuModel)
	}

	retriever := people.NewRetriever(serperClient, browserClient,
		cfg.Pipeline.ResultsPerQuery, cfg.Pipeline.FallbackMinimum, cfg.BrowserUse.MaxSteps)

	var validator *people.Validator
	if aiClient != nil {
		validator = people.NewValidator(aiClient, cfg.Anthropic.HaikuModel)
	}

	scorer := score.NewScorer(aiClient, cfg.Anthropic.HaikuModel, int64(cfg.Anthropic.MaxTokens))

	domains := email.NewDomainResolver(firecrawlClient, email.NewDomainCache())
	resolver := email.NewResolver(firecrawlClient, githubClient, dnsx.NewResolver(), domains)

	quotas := score.Quotas{
		Recruiters: cfg.Pipeline.RecruiterQuota,
		Engineers:  cfg.Pipeline.EngineerQuota,
		Managers:   cfg.Pipeline.ManagerQuota,
	}
	orch := run.NewOrchestrator(analyzer, retriever, validator, scorer, resolver, st,
		cfg.Pipeline.TargetContacts, quotas)

	return &pipelineEnv{Store: st, Orchestrator: orch}, nil
}
