// Package people implements candidate retrieval, deduplication,
// filtering, and relevance validation for the outreach pipeline.
package people

import (
	"encoding/json"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/internal/model"
)

// rawPerson mirrors the JSON shape browser tasks are asked to emit.
type rawPerson struct {
	Name           string `json:"name"`
	Title          string `json:"title"`
	LinkedInURL    string `json:"linkedin_url"`
	RecentActivity string `json:"recent_activity"`
}

type peopleEnvelope struct {
	People []rawPerson `json:"people"`
}

// badEscape matches a backslash not followed by a valid JSON escape.
var badEscape = regexp.MustCompile(`\\([^"\\/bfnrtu])`)

// RepairJSON applies best-effort fixes to possibly-malformed structured
// output: unwraps string-encoded JSON and strips invalid escape
// sequences. Pure function; returns the repaired text.
func RepairJSON(text string) string {
	// Browser output is sometimes a JSON-encoded string of JSON.
	if strings.Contains(first(text, 50), `\"`) {
		var unescaped string
		if err := json.Unmarshal([]byte(`"`+text+`"`), &unescaped); err == nil {
			text = unescaped
		} else {
			text = strings.ReplaceAll(text, `\"`, `"`)
		}
	}
	return badEscape.ReplaceAllString(text, "$1")
}

func first(s string, n int) string {
	if len(s) > n {
		return s[:n]
	}
	return s
}

// ParsePeople extracts candidates from unstructured task output expected
// to contain a JSON payload under a "people" key. It tries a repaired
// copy of the text first and falls back to the raw text; an empty slice
// means nothing parseable was found.
func ParsePeople(output string) []model.Candidate {
	if output == "" {
		return nil
	}

	repaired := RepairJSON(output)
	if people := tryParsePeople(repaired); people != nil {
		return people
	}
	if repaired != output {
		if people := tryParsePeople(output); people != nil {
			return people
		}
	}

	zap.L().Warn("people: could not parse task output", zap.Int("length", len(output)))
	return nil
}

// tryParsePeople attempts to extract people from JSON embedded in text.
// It tries an object with a "people" key first, then a bare array.
func tryParsePeople(text string) []model.Candidate {
	if start, end := strings.Index(text, "{"), strings.LastIndex(text, "}"); start >= 0 && end > start {
		var env peopleEnvelope
		if err := json.Unmarshal([]byte(text[start:end+1]), &env); err == nil && len(env.People) > 0 {
			return toCandidates(env.People)
		}
	}

	if start, end := strings.Index(text, "["), strings.LastIndex(text, "]"); start >= 0 && end > start {
		var arr []rawPerson
		if err := json.Unmarshal([]byte(text[start:end+1]), &arr); err == nil && len(arr) > 0 {
			return toCandidates(arr)
		}
	}

	return nil
}

func toCandidates(raw []rawPerson) []model.Candidate {
	out := make([]model.Candidate, 0, len(raw))
	for _, p := range raw {
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		out = append(out, model.Candidate{
			Name:       strings.TrimSpace(p.Name),
			Title:      strings.TrimSpace(p.Title),
			ProfileURL: p.LinkedInURL,
			Snippet:    p.RecentActivity,
		})
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
