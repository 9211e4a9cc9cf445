package people

import (
	"strings"

	"github.com/sells-group/outreach-cli/internal/model"
)

// executiveKeywords is the closed set of senior-executive title markers.
// People at this level effectively never answer cold outreach.
var executiveKeywords = []string{
	"ceo",
	"chief executive",
	"chief technology",
	"chief financial",
	"chief operating",
	"cto",
	"cfo",
	"coo",
	"founder",
	"co-founder",
	"president",
	"vp",
	"vice president",
	"director",
	"head of",
}

// nonTechnicalDepartments marks departments unlikely to route a
// role-specific application anywhere useful.
var nonTechnicalDepartments = []string{
	"finance",
	"accounting",
	"legal",
	"counsel",
	"sales",
	"marketing",
	"operations",
}

// recruitingKeywords rescue a non-technical-department title: a
// recruiter in any department is still a good contact.
var recruitingKeywords = []string{
	"recruit",
	"talent",
	"people operations",
	"hiring",
}

// Filter drops candidates structurally unlikely to reply: senior
// executives, and non-technical-department staff who are not recruiters.
// Pure predicate, no external calls; runs before the costlier relevance
// validation to bound its input size.
func Filter(candidates []model.Candidate) []model.Candidate {
	kept := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		if Keep(c) {
			kept = append(kept, c)
		}
	}
	return kept
}

// Keep reports whether a candidate survives the deterministic filter.
func Keep(c model.Candidate) bool {
	title := strings.ToLower(c.Title)

	for _, kw := range executiveKeywords {
		if containsWord(title, kw) {
			return false
		}
	}

	for _, dept := range nonTechnicalDepartments {
		if strings.Contains(title, dept) {
			for _, kw := range recruitingKeywords {
				if strings.Contains(title, kw) {
					return true
				}
			}
			return false
		}
	}

	return true
}

// containsWord checks for kw in title at word boundaries, so "vp" does
// not match inside "developer".
func containsWord(title, kw string) bool {
	idx := 0
	for {
		pos := strings.Index(title[idx:], kw)
		if pos < 0 {
			return false
		}
		start := idx + pos
		end := start + len(kw)
		beforeOK := start == 0 || !isAlnum(title[start-1])
		afterOK := end == len(title) || !isAlnum(title[end])
		if beforeOK && afterOK {
			return true
		}
		idx = start + 1
	}
}

func isAlnum(b byte) bool {
	return (b >= 'a' && b <= 'z') || (b >= '0' && b <= '9')
}
