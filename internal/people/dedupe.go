package people

import "github.com/sells-group/outreach-cli/internal/model"

// Deduplicate removes candidates whose normalized profile URL or
// normalized name has already been seen, in a single order-preserving
// pass. Keys in exclude (normalized profile URLs from earlier runs) are
// treated as already seen, so previously surfaced contacts are never
// re-emitted.
func Deduplicate(candidates []model.Candidate, exclude map[string]struct{}) []model.Candidate {
	seenURLs := make(map[string]struct{}, len(candidates))
	seenNames := make(map[string]struct{}, len(candidates))
	for k := range exclude {
		seenURLs[k] = struct{}{}
	}

	unique := make([]model.Candidate, 0, len(candidates))
	for _, c := range candidates {
		urlKey, nameKey := c.IdentityKeys()

		if urlKey != "" {
			if _, ok := seenURLs[urlKey]; ok {
				continue
			}
		}
		if nameKey != "" {
			if _, ok := seenNames[nameKey]; ok {
				continue
			}
		}

		if urlKey != "" {
			seenURLs[urlKey] = struct{}{}
		}
		if nameKey != "" {
			seenNames[nameKey] = struct{}{}
		}
		unique = append(unique, c)
	}
	return unique
}
