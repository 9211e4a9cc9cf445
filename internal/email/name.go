// Package email implements domain discovery, address-pattern generation
// and inference, and email resolution for contacts.
package email

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// nameSuffixes is the closed set of suffixes stripped before splitting.
var nameSuffixes = []string{" Jr.", " Sr.", " III", " II", " IV", " PhD", " MD"}

// foldTransformer strips diacritics so accented names map to plain
// ASCII local-parts (José → jose).
var foldTransformer = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// ParseName splits a full name into lowercased first and last
// components suitable for email local-parts. Handles repeated spaces,
// common suffixes, "Last, First" notation, and single-token names
// (which yield an empty last name).
func ParseName(fullName string) (first, last string) {
	name := strings.Join(strings.Fields(fullName), " ")
	for _, suffix := range nameSuffixes {
		name = strings.ReplaceAll(name, suffix, "")
	}

	parts := strings.Fields(name)
	if len(parts) == 0 {
		return "", ""
	}
	if len(parts) == 1 {
		return cleanNamePart(parts[0]), ""
	}

	first = parts[0]
	last = parts[len(parts)-1]

	// "Doe, Jane" means last name first.
	if strings.Contains(parts[0], ",") {
		last = strings.ReplaceAll(parts[0], ",", "")
		first = parts[1]
	}

	return cleanNamePart(first), cleanNamePart(last)
}

// cleanNamePart lowercases, folds diacritics, and strips everything
// outside a-z.
func cleanNamePart(part string) string {
	part = strings.ToLower(part)
	if folded, _, err := transform.String(foldTransformer, part); err == nil {
		part = folded
	}

	var b strings.Builder
	b.Grow(len(part))
	for _, r := range part {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
