// Package run orchestrates the full contact acquisition pipeline and
// records progress on the persisted run.
package run

import (
	"context"
	"fmt"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/email"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/internal/people"
	"github.com/sells-group/outreach-cli/internal/query"
	"github.com/sells-group/outreach-cli/internal/score"
	"github.com/sells-group/outreach-cli/internal/store"
)

// ErrNoCandidates is returned when retrieval produced nothing at all and
// the run cannot proceed to scoring.
var ErrNoCandidates = eris.New("run: no candidates retrieved")

// Orchestrator executes the staged pipeline for one search request and
// persists run state on every transition.
type Orchestrator struct {
	analyzer  *query.JobAnalyzer
	retriever *people.Retriever
	validator *people.Validator
	scorer    *score.Scorer
	resolver  *email.Resolver
	store     store.Store

	target int
	quotas score.Quotas
}

// NewOrchestrator wires the pipeline stages. The store may be nil for
// one-shot CLI use without persistence.
func NewOrchestrator(
	analyzer *query.JobAnalyzer,
	retriever *people.Retriever,
	validator *people.Validator,
	scorer *score.Scorer,
	resolver *email.Resolver,
	st store.Store,
	target int,
	quotas score.Quotas,
) *Orchestrator {
	if target <= 0 {
		target = 8
	}
	return &Orchestrator{
		analyzer:  analyzer,
		retriever: retriever,
		validator: validator,
		scorer:    scorer,
		resolver:  resolver,
		store:     st,
		target:    target,
		quotas:    quotas,
	}
}

// Execute runs the full pipeline for an existing run record: find
// contacts, then resolve their emails. The run is mutated in place and
// persisted after every stage. A pipeline error marks the run failed and
// is returned.
func (o *Orchestrator) Execute(ctx context.Context, run *model.Run) error {
	if err := o.FindContacts(ctx, run, nil); err != nil {
		return err
	}
	return o.ResolveEmails(ctx, run)
}

// FindContacts runs query building, retrieval, dedup, filtering,
// validation, scoring, and diversity selection. Profile URLs in exclude
// are never surfaced again; found contacts are appended to the run.
// Stages degrade independently: only an entirely empty retrieval after a
// non-empty previous state is fatal.
func (o *Orchestrator) FindContacts(ctx context.Context, run *model.Run, exclude map[string]struct{}) error {
	log := zap.L().With(zap.String("run_id", run.ID), zap.String("company", run.Request.Company))

	o.transition(ctx, run, model.RunStatusFindingPeople, "Searching for people at "+run.Request.Company)

	if run.JobContext == nil && run.Request.JobURL != "" && o.analyzer != nil {
		jobCtx := o.analyzer.Analyze(ctx, run.Request.JobURL)
		if !jobCtx.Empty() {
			run.JobContext = &jobCtx
			run.AppendActivity(model.ActivityStatus, "Analyzed job posting: team "+jobCtx.Team)
		}
	}

	queries := query.Build(run.Request.Company, run.Request.Role, run.JobContext)
	candidates := o.retriever.Retrieve(ctx, run.Request.Company, queries)
	run.AppendActivity(model.ActivityStatus, fmt.Sprintf("Retrieved %d candidates", len(candidates)))

	candidates = people.Deduplicate(candidates, exclude)
	candidates = people.Filter(candidates)
	if o.validator != nil {
		candidates = o.validator.Validate(ctx, candidates, run.Request.Company)
	}

	if len(candidates) == 0 {
		if len(run.Contacts) == 0 && len(exclude) == 0 {
			// A first run with zero candidates is a hard failure; the
			// caller has nothing to work with.
			o.fail(ctx, run, ErrNoCandidates)
			return ErrNoCandidates
		}
		run.AppendActivity(model.ActivityStatus, "No new candidates found")
		o.save(ctx, run)
		return nil
	}

	scored := o.scorer.Score(ctx, candidates, run.Request.Role, run.Request.Company, run.JobContext)
	selected := score.SelectDiverse(scored, o.target, o.quotas)

	for _, c := range selected {
		run.AppendActivity(model.ActivityPersonFound,
			fmt.Sprintf("Found %s (%s)", c.Name, c.Title))
	}
	run.Contacts = append(run.Contacts, selected...)

	log.Info("contact search complete",
		zap.Int("retrieved", len(candidates)),
		zap.Int("selected", len(selected)),
		zap.Int("total", len(run.Contacts)))
	o.save(ctx, run)
	return nil
}

// ResolveEmails resolves addresses for every contact on the run and
// marks it completed. Resolution is best-effort per contact and never
// fails the run.
func (o *Orchestrator) ResolveEmails(ctx context.Context, run *model.Run) error {
	o.transition(ctx, run, model.RunStatusFindingEmails, "Finding email addresses")

	resolved := o.resolver.ResolveEmails(ctx, run.Contacts, run.Request.Company, run.Request.Website)
	for _, re := range resolved {
		if re.Email != "" {
			run.AppendActivity(model.ActivityEmailFound,
				fmt.Sprintf("Resolved %s -> %s (%s)", re.Name, re.Email, re.Confidence))
		}
	}
	run.Emails = append(run.Emails, resolved...)

	run.Status = model.RunStatusCompleted
	run.AppendActivity(model.ActivityComplete,
		fmt.Sprintf("Completed with %d contacts and %d emails", len(run.Contacts), len(run.Emails)))
	o.save(ctx, run)
	return nil
}

// FindMoreContacts re-runs the contact search excluding every profile
// already on the run, then resolves emails for the newly added contacts
// only.
func (o *Orchestrator) FindMoreContacts(ctx context.Context, run *model.Run) error {
	exclude := make(map[string]struct{}, len(run.Contacts))
	for _, c := range run.Contacts {
		if key := model.NormalizeProfileURL(c.ProfileURL); key != "" {
			exclude[key] = struct{}{}
		}
	}

	before := len(run.Contacts)
	if err := o.FindContacts(ctx, run, exclude); err != nil {
		return err
	}

	added := run.Contacts[before:]
	if len(added) == 0 {
		run.Status = model.RunStatusCompleted
		o.save(ctx, run)
		return nil
	}

	o.transition(ctx, run, model.RunStatusFindingEmails, "Finding email addresses for new contacts")
	resolved := o.resolver.ResolveEmails(ctx, added, run.Request.Company, run.Request.Website)
	for _, re := range resolved {
		if re.Email != "" {
			run.AppendActivity(model.ActivityEmailFound,
				fmt.Sprintf("Resolved %s -> %s (%s)", re.Name, re.Email, re.Confidence))
		}
	}
	run.Emails = append(run.Emails, resolved...)

	run.Status = model.RunStatusCompleted
	run.AppendActivity(model.ActivityComplete,
		fmt.Sprintf("Added %d contacts", len(added)))
	o.save(ctx, run)
	return nil
}

// transition updates status, logs it on the activity log, and persists.
func (o *Orchestrator) transition(ctx context.Context, run *model.Run, status model.RunStatus, message string) {
	run.Status = status
	run.AppendActivity(model.ActivityStatus, message)
	o.save(ctx, run)
}

// fail marks the run failed with the error message and persists.
func (o *Orchestrator) fail(ctx context.Context, run *model.Run, err error) {
	run.Status = model.RunStatusFailed
	run.Error = err.Error()
	run.AppendActivity(model.ActivityError, err.Error())
	o.save(ctx, run)
}

// save persists best-effort; a store write failure must not abort an
// otherwise healthy pipeline.
func (o *Orchestrator) save(ctx context.Context, run *model.Run) {
	if o.store == nil {
		return
	}
	if err := o.store.SaveRun(ctx, run); err != nil {
		zap.L().Warn("failed to persist run", zap.String("run_id", run.ID), zap.Error(err))
	}
}
