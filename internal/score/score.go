// Package score assigns reply-likelihood scores to candidates and
// selects a role-diverse shortlist.
package score

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/anthropic"
)

const scoringSystemPrompt = `You are an expert at evaluating cold outreach targets for job applicants.

Given a list of people at a company and the role being applied for, score each person 0 to 100 on how useful they would be to contact for a cold outreach email.

Scoring criteria:
- University/campus recruiter: 90-100 (highest priority for internships)
- Hiring manager on the relevant team: 80-95
- Technical recruiter on the relevant team: 75-90
- Engineer on the relevant team who posts about hiring: 70-85
- General recruiter: 60-75
- Engineer on the relevant team: 50-70
- Engineering manager on a different team: 40-55
- Random employee: 10-30

Return ONLY a JSON array with one object per person:
[{"name": "...", "score": 85, "reason": "..."}]`

type scoreEntry struct {
	Name   string  `json:"name"`
	Score  float64 `json:"score"`
	Reason string  `json:"reason"`
}

// Scorer assigns reply-likelihood scores via the reasoning service,
// falling back to a deterministic heuristic when it is unavailable.
type Scorer struct {
	ai        anthropic.Client
	model     string
	maxTokens int64
}

// NewScorer creates a Scorer. The client may be nil, which forces the
// heuristic path.
func NewScorer(ai anthropic.Client, model string, maxTokens int64) *Scorer {
	if maxTokens <= 0 {
		maxTokens = 1024
	}
	return &Scorer{ai: ai, model: model, maxTokens: maxTokens}
}

// Score promotes candidates to contacts with a score in [0,1] and a
// short justification, sorted descending by score with retrieval order
// as the tiebreak (stable sort).
func (s *Scorer) Score(ctx context.Context, candidates []model.Candidate, role, company string, jobCtx *model.JobContext) []model.Contact {
	if len(candidates) == 0 {
		return nil
	}

	contacts := make([]model.Contact, len(candidates))
	for i, c := range candidates {
		contacts[i] = model.Contact{Candidate: c, Company: company}
	}

	if s.ai == nil || !s.scoreByModel(ctx, contacts, role, company, jobCtx) {
		HeuristicScore(contacts, role)
	}

	for i := range contacts {
		contacts[i].Score = clamp01(contacts[i].Score)
	}

	sort.SliceStable(contacts, func(i, j int) bool {
		return contacts[i].Score > contacts[j].Score
	})
	return contacts
}

// scoreByModel runs one batched scoring request and matches entries back
// to contacts by normalized name. Positional matching is used only for
// contacts whose name did not appear, and only when the response has one
// entry per contact (response ordering is otherwise untrusted). Returns
// false when the call or parse failed and the heuristic should be used.
func (s *Scorer) scoreByModel(ctx context.Context, contacts []model.Contact, role, company string, jobCtx *model.JobContext) bool {
	log := zap.L().With(zap.String("company", company), zap.String("stage", "score"))

	resp, err := s.ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     s.model,
		MaxTokens: s.maxTokens,
		System:    scoringSystemPrompt,
		Messages: []anthropic.Message{
			{Role: "user", Content: buildScoringPrompt(contacts, role, company, jobCtx)},
		},
	})
	if err != nil {
		log.Warn("model scoring failed, using heuristic", zap.Error(err))
		return false
	}
	resp.Usage.LogCost(s.model, "score")

	entries, ok := parseScoreEntries(anthropic.Text(resp))
	if !ok {
		log.Warn("unparseable scoring response, using heuristic")
		return false
	}

	byName := make(map[string]scoreEntry, len(entries))
	for _, e := range entries {
		if key := model.NormalizeName(e.Name); key != "" {
			byName[key] = e
		}
	}

	positionalOK := len(entries) == len(contacts)
	for i := range contacts {
		entry, found := byName[model.NormalizeName(contacts[i].Name)]
		if !found && positionalOK {
			entry, found = entries[i], true
		}
		if !found {
			contacts[i].Score = 0.5
			contacts[i].Reason = "no score returned"
			continue
		}
		contacts[i].Score = clamp01(entry.Score / 100)
		contacts[i].Reason = entry.Reason
	}
	return true
}

func buildScoringPrompt(contacts []model.Contact, role, company string, jobCtx *model.JobContext) string {
	type promptPerson struct {
		Name    string `json:"name"`
		Title   string `json:"title"`
		Snippet string `json:"snippet,omitempty"`
	}

	persons := make([]promptPerson, len(contacts))
	for i, c := range contacts {
		persons[i] = promptPerson{Name: c.Name, Title: c.Title, Snippet: truncate(c.Snippet, 200)}
	}
	data, _ := json.MarshalIndent(persons, "", "  ")

	var b strings.Builder
	fmt.Fprintf(&b, "Company: %s\nRole being applied for: %s\n", company, role)
	if jobCtx != nil && !jobCtx.Empty() {
		fmt.Fprintf(&b, "Team: %s\nDepartment: %s\n", jobCtx.Team, jobCtx.Department)
	}
	fmt.Fprintf(&b, "\nPeople to score:\n%s\n", data)
	return b.String()
}

// parseScoreEntries extracts the score array from model output, which
// may be a bare array or wrapped in an object under a few common keys.
func parseScoreEntries(text string) ([]scoreEntry, bool) {
	text = strings.TrimSpace(text)

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		var entries []scoreEntry
		if err := json.Unmarshal([]byte(text[start:end+1]), &entries); err == nil && len(entries) > 0 {
			return entries, true
		}
	}

	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal([]byte(text[start:end+1]), &wrapper); err == nil {
			for _, key := range []string{"scores", "results", "people", "data"} {
				raw, ok := wrapper[key]
				if !ok {
					continue
				}
				var entries []scoreEntry
				if err := json.Unmarshal(raw, &entries); err == nil && len(entries) > 0 {
					return entries, true
				}
			}
		}
	}

	return nil, false
}

// truncate cuts s to at most n bytes without splitting a rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

func clamp01(f float64) float64 {
	if f < 0 {
		return 0
	}
	if f > 1 {
		return 1
	}
	return f
}

// scoringStopwords never earn the role-keyword bonus.
var scoringStopwords = map[string]struct{}{
	"intern": {}, "internship": {}, "at": {}, "the": {}, "a": {}, "an": {}, "of": {},
}

// HeuristicScore assigns deterministic title-keyword scores. It is
// side-effect-free with respect to everything but the passed slice, so
// it can be tested in isolation.
func HeuristicScore(contacts []model.Contact, role string) {
	roleTokens := strings.Fields(strings.ToLower(role))

	for i := range contacts {
		title := strings.ToLower(contacts[i].Title)
		score := 0.3

		switch {
		case containsAny(title, "university", "campus", "new grad", "early career"):
			score = 0.95
		case strings.Contains(title, "hiring manager"):
			score = 0.80
		case containsAny(title, "recruiter", "talent acquisition"):
			score = 0.70
		case containsAny(title, "manager", "lead"):
			score = 0.60
		case containsAny(title, "engineer", "developer"):
			score = 0.50
		}

		for _, token := range roleTokens {
			if _, stop := scoringStopwords[token]; stop {
				continue
			}
			if strings.Contains(title, token) {
				score += 0.05
				if score > 1.0 {
					score = 1.0
				}
			}
		}

		contacts[i].Score = score
		contacts[i].Reason = "Heuristic score based on title: " + contacts[i].Title
	}
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
