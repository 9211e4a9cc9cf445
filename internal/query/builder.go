// Package query builds the fixed set of profile-search queries for a
// company and role.
package query

import (
	"fmt"
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// QueryCount is the fixed number of queries produced per search.
const QueryCount = 5

// roleKeywordMap maps common role substrings to the canonical keyword
// used in the role-specific query. Checked in declaration order via
// roleKeywordOrder so longer, more specific keys win.
var roleKeywordMap = map[string]string{
	"software eng":     "software engineer",
	"swe":              "software engineer",
	"frontend":         "frontend engineer",
	"backend":          "backend engineer",
	"full stack":       "fullstack engineer",
	"fullstack":        "fullstack engineer",
	"data sci":         "data scientist",
	"machine learning": "machine learning engineer",
	"ml ":              "machine learning engineer",
	"product manage":   "product manager",
	"product design":   "product designer",
	"ux ":              "UX designer",
	"devops":           "devops engineer",
	"infrastructure":   "infrastructure engineer",
	"security":         "security engineer",
}

var roleKeywordOrder = []string{
	"software eng", "swe", "frontend", "backend", "full stack", "fullstack",
	"data sci", "machine learning", "ml ", "product manage", "product design",
	"ux ", "devops", "infrastructure", "security",
}

// RoleKeyword maps a free-text role description to a canonical search
// keyword. Falls back to the role text with internship noise removed,
// then to "engineer".
func RoleKeyword(role string) string {
	lower := strings.ToLower(role)
	for _, key := range roleKeywordOrder {
		if strings.Contains(lower, key) {
			return roleKeywordMap[key]
		}
	}
	cleaned := strings.ReplaceAll(lower, "internship", "")
	cleaned = strings.ReplaceAll(cleaned, "intern", "")
	cleaned = strings.TrimSpace(cleaned)
	if cleaned == "" {
		return "engineer"
	}
	return cleaned
}

// Build returns the ordered list of exactly five search queries for a
// company and role. When job context is available, the recruiter query
// is narrowed to the department and the role and hiring queries to the
// team. Pure function: no network calls, deterministic for equal input.
func Build(company, role string, jobCtx *model.JobContext) []string {
	keyword := RoleKeyword(role)
	if jobCtx != nil && len(jobCtx.Keywords) > 0 {
		if kw := strings.TrimSpace(jobCtx.Keywords[0]); kw != "" {
			keyword = kw
		}
	}

	queries := []string{
		fmt.Sprintf(`site:linkedin.com/in "at %s" "university recruiter" OR "campus recruiter" OR "early career"`, company),
		fmt.Sprintf(`site:linkedin.com/in "at %s" "recruiter" OR "talent acquisition"`, company),
		fmt.Sprintf(`site:linkedin.com/in "at %s" "%s"`, company, keyword),
		fmt.Sprintf(`site:linkedin.com/in "at %s" "engineering manager" OR "tech lead"`, company),
		fmt.Sprintf(`site:linkedin.com/in "at %s" "hiring" OR "intern" OR "internship"`, company),
	}

	if jobCtx != nil {
		if dept := strings.TrimSpace(jobCtx.Department); dept != "" {
			queries[1] = fmt.Sprintf(`site:linkedin.com/in "at %s" "recruiter" "%s"`, company, dept)
		}
		if team := strings.TrimSpace(jobCtx.Team); team != "" {
			queries[2] = fmt.Sprintf(`site:linkedin.com/in "at %s" "%s"`, company, team)
			queries[4] = fmt.Sprintf(`site:linkedin.com/in "at %s" "hiring" OR "intern" "%s"`, company, team)
		}
	}

	return queries
}
