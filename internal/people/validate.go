package people

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

const validatePrompt = `Does this person currently work at %s, based on their title and snippet?

Name: %s
Title: %s
Snippet: %s

Answer with exactly one word: yes or no.`

// Validator checks that a candidate is actually affiliated with the
// target company using the reasoning service.
type Validator struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewValidator creates a Validator. The client may be nil, in which case
// all candidates pass.
func NewValidator(ai anthropic.Client, model string) *Validator {
	return &Validator{ai: ai, model: model, maxTokens: 8}
}

// Validate asks a strict yes/no question per candidate, concurrently,
// and keeps only candidates answered "yes". Validator failures keep the
// candidate (fail-open): an errored check must never silently eliminate
// a legitimate contact. Input order is preserved.
func (v *Validator) Validate(ctx context.Context, candidates []model.Candidate, company string) []model.Candidate {
	if v.ai == nil || len(candidates) == 0 {
		return candidates
	}

	log := zap.L().With(zap.String("company", company), zap.String("stage", "validate"))

	keep := make([]bool, len(candidates))
	g, gCtx := errgroup.WithContext(ctx)
	for i, c := range candidates {
		g.Go(func() error {
			keep[i] = v.check(gCtx, c, company, log)
			return nil
		})
	}
	_ = g.Wait()

	kept := make([]model.Candidate, 0, len(candidates))
	for i, c := range candidates {
		if keep[i] {
			kept = append(kept, c)
		}
	}

	log.Info("validation complete",
		zap.Int("in", len(candidates)),
		zap.Int("kept", len(kept)),
	)
	return kept
}

// check runs one best-effort yes/no call with no retry. Any failure or
// unrecognizable answer defaults to yes.
func (v *Validator) check(ctx context.Context, c model.Candidate, company string, log *zap.Logger) bool {
	resp, err := v.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     v.model,
		MaxTokens: v.maxTokens,
		Messages: []anthropic.Message{
			{Role: "user", Content: fmt.Sprintf(validatePrompt, company, c.Name, c.Title, c.Snippet)},
		},
	})
	if err != nil {
		log.Debug("validator call failed, keeping candidate",
			zap.String("name", c.Name), zap.Error(err))
		return true
	}

	answer := strings.ToLower(strings.TrimSpace(anthropic.Text(resp)))
	if strings.HasPrefix(answer, "no") {
		return false
	}
	return true
}
