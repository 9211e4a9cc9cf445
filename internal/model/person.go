// Package model defines the core domain types for the outreach pipeline.
package model

import "strings"

// Candidate is a provisional contact produced by retrieval, before
// validation and scoring.
type Candidate struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	ProfileURL string `json:"profile_url"`
	Snippet    string `json:"snippet"`
}

// IdentityKeys returns the normalized profile-URL and name keys used for
// deduplication. Either may be empty.
func (c Candidate) IdentityKeys() (urlKey, nameKey string) {
	return NormalizeProfileURL(c.ProfileURL), NormalizeName(c.Name)
}

// NormalizeProfileURL lowercases a profile URL and strips the query string
// and any trailing slash so the same profile always maps to one key.
func NormalizeProfileURL(raw string) string {
	u := strings.ToLower(strings.TrimSpace(raw))
	if idx := strings.Index(u, "?"); idx >= 0 {
		u = u[:idx]
	}
	return strings.TrimRight(u, "/")
}

// NormalizeName lowercases and trims a full name for identity matching.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Contact is a Candidate promoted past validation, carrying a reply-
// likelihood score in [0,1] and the organization it is scoped to.
type Contact struct {
	Candidate
	Company string  `json:"company"`
	Score   float64 `json:"score"`
	Reason  string  `json:"reason"`
}

// EmailConfidence labels how strong the evidence behind a resolved
// address is.
type EmailConfidence string

const (
	ConfidenceHigh   EmailConfidence = "high"
	ConfidenceMedium EmailConfidence = "medium"
	ConfidenceLow    EmailConfidence = "low"
)

// ResolvedEmail is the email-resolution result for one Contact.
type ResolvedEmail struct {
	Name         string          `json:"name"`
	Email        string          `json:"email"`
	Confidence   EmailConfidence `json:"confidence"`
	Source       string          `json:"source"`
	Alternatives []string        `json:"alternatives,omitempty"`
}

// JobContext is structured targeting context extracted from a job
// posting. All fields may be empty when extraction fails or no posting
// was supplied.
type JobContext struct {
	Team       string   `json:"team"`
	Department string   `json:"department"`
	Keywords   []string `json:"keywords"`
	Seniority  string   `json:"seniority"`
	Location   string   `json:"location"`
}

// Empty reports whether the context carries no targeting signal.
func (j JobContext) Empty() bool {
	return j.Team == "" && j.Department == "" && len(j.Keywords) == 0
}
