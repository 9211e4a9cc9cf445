package email

import (
	"fmt"
	"regexp"
	"strings"
)

// Convention is an organization-wide email naming convention inferred
// from observed addresses.
type Convention string

const (
	ConventionFirstDotLast Convention = "first.last"
	ConventionFirstLast    Convention = "firstlast"
	ConventionFLast        Convention = "flast"
	ConventionFirstULast   Convention = "first_last"
	ConventionUnknown      Convention = ""
)

// GeneratePatterns produces candidate addresses for a parsed name at a
// domain, ordered by corporate-format popularity. A missing last name
// yields only the bare first-name form; a missing first name or domain
// yields nothing.
func GeneratePatterns(first, last, domain string) []string {
	if first == "" || domain == "" {
		return nil
	}
	if last == "" {
		return []string{fmt.Sprintf("%s@%s", first, domain)}
	}

	return []string{
		fmt.Sprintf("%s.%s@%s", first, last, domain),
		fmt.Sprintf("%s%s@%s", first, last, domain),
		fmt.Sprintf("%s%s@%s", first[:1], last, domain),
		fmt.Sprintf("%s@%s", first, domain),
		fmt.Sprintf("%s_%s@%s", first, last, domain),
		fmt.Sprintf("%s.%s@%s", first[:1], last, domain),
		fmt.Sprintf("%s.%s@%s", last, first, domain),
		fmt.Sprintf("%s%s@%s", first, last[:1], domain),
	}
}

// InferConvention classifies the naming convention from observed real
// addresses by majority structural signal. Returns ConventionUnknown
// for an empty sample.
func InferConvention(emails []string) Convention {
	if len(emails) == 0 {
		return ConventionUnknown
	}

	var dots, underscores, totalLen int
	for _, e := range emails {
		local := strings.ToLower(localPart(e))
		if strings.Contains(local, ".") {
			dots++
		}
		if strings.Contains(local, "_") {
			underscores++
		}
		totalLen += len(local)
	}

	half := float64(len(emails)) / 2
	if float64(dots) > half {
		return ConventionFirstDotLast
	}
	if float64(underscores) > half {
		return ConventionFirstULast
	}
	if float64(totalLen)/float64(len(emails)) < 6 {
		return ConventionFLast
	}
	return ConventionFirstLast
}

// conventionMatchers test whether a generated address structurally
// matches a convention.
var conventionMatchers = map[Convention]func(local string) bool{
	ConventionFirstDotLast: func(l string) bool { return strings.Contains(l, ".") && !strings.Contains(l, "_") },
	ConventionFirstULast:   func(l string) bool { return strings.Contains(l, "_") },
	ConventionFirstLast: func(l string) bool {
		return !strings.Contains(l, ".") && !strings.Contains(l, "_") && len(l) > 5
	},
	ConventionFLast: func(l string) bool { return len(l) <= 6 && !strings.Contains(l, ".") },
}

// ReorderPatterns moves patterns structurally matching the inferred
// convention to the front, preserving relative order within each
// partition. Unknown conventions leave the order untouched.
func ReorderPatterns(patterns []string, conv Convention) []string {
	matcher, ok := conventionMatchers[conv]
	if !ok {
		return patterns
	}

	matching := make([]string, 0, len(patterns))
	rest := make([]string, 0, len(patterns))
	for _, p := range patterns {
		if matcher(localPart(p)) {
			matching = append(matching, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(matching, rest...)
}

func localPart(email string) string {
	if idx := strings.Index(email, "@"); idx >= 0 {
		return email[:idx]
	}
	return email
}

// ExtractEmails returns the deduplicated addresses in text that belong
// to the given domain, in order of first appearance.
func ExtractEmails(text, domain string) []string {
	re, err := regexp.Compile(`[\w.+-]+@` + regexp.QuoteMeta(domain))
	if err != nil {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	for _, match := range re.FindAllString(text, -1) {
		lower := strings.ToLower(match)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		out = append(out, lower)
	}
	return out
}

// ValidAddress reports whether an address has the local-part@domain
// shape produced by this package.
var addressPattern = regexp.MustCompile(`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`)

func ValidAddress(email string) bool {
	return addressPattern.MatchString(email)
}
