package email

import (
	"context"
	"slices"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/outreach-cli/internal/dnsx"
	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/firecrawl"
	"github.com/sells-group/outreach-cli/pkg/github"
)

// engineerTitleKeywords decide which contacts are worth a GitHub lookup.
var engineerTitleKeywords = []string{
	"engineer", "developer", "software", "sre", "devops", "staff", "principal",
}

const maxConcurrentResolutions = 5

// Resolver turns scored contacts into best-guess email addresses with a
// confidence label per address.
type Resolver struct {
	crawler firecrawl.Client
	github  github.Client
	dns     dnsx.Resolver
	domains *DomainResolver
}

// NewResolver wires the resolution dependencies. Any client may be nil;
// the corresponding evidence path is skipped.
func NewResolver(crawler firecrawl.Client, gh github.Client, dns dnsx.Resolver, domains *DomainResolver) *Resolver {
	return &Resolver{crawler: crawler, github: gh, dns: dns, domains: domains}
}

// ResolveEmails produces one ResolvedEmail per contact, in contact
// order. Resolution never fails the batch: per-contact errors degrade to
// a low-confidence pattern guess.
func (r *Resolver) ResolveEmails(ctx context.Context, contacts []model.Contact, company, website string) []model.ResolvedEmail {
	if len(contacts) == 0 {
		return nil
	}

	log := zap.L().With(zap.String("company", company), zap.String("stage", "email"))

	domain := r.domains.Resolve(ctx, company, website)
	if r.dns != nil && !r.dns.HasMailExchange(ctx, domain) {
		log.Warn("domain has no MX records, addresses are best guesses",
			zap.String("domain", domain))
	}

	conv := r.discoverConvention(ctx, company, domain, log)
	if conv != ConventionUnknown {
		log.Info("inferred email convention", zap.String("convention", string(conv)))
	}

	results := make([]model.ResolvedEmail, len(contacts))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentResolutions)

	for i, contact := range contacts {
		g.Go(func() error {
			results[i] = r.resolveOne(gctx, contact, domain, conv)
			return nil
		})
	}
	g.Wait() //nolint:errcheck

	return results
}

// resolveOne tries the GitHub public-email path for engineer titles,
// then falls back to pattern generation.
func (r *Resolver) resolveOne(ctx context.Context, contact model.Contact, domain string, conv Convention) model.ResolvedEmail {
	if r.github != nil && looksLikeEngineer(contact.Title) {
		if email := r.githubEmail(ctx, contact, domain); email != "" {
			return model.ResolvedEmail{
				Name:       contact.Name,
				Email:      email,
				Confidence: model.ConfidenceHigh,
				Source:     "github",
			}
		}
	}

	return patternGuess(contact, domain, conv)
}

// patternGuess builds the ordered pattern list and takes the top entry
// as primary with the next two as alternatives. Confidence is medium
// only when an organization convention was inferred.
func patternGuess(contact model.Contact, domain string, conv Convention) model.ResolvedEmail {
	first, last := ParseName(contact.Name)
	patterns := GeneratePatterns(first, last, domain)
	if len(patterns) == 0 {
		return model.ResolvedEmail{
			Name:       contact.Name,
			Confidence: model.ConfidenceLow,
			Source:     "pattern",
		}
	}

	confidence := model.ConfidenceLow
	if conv != ConventionUnknown {
		patterns = ReorderPatterns(patterns, conv)
		confidence = model.ConfidenceMedium
	}

	// Short first names can produce the same address under two different
	// forms (j.smith is both first.last and f.last), so the primary must
	// be skipped when collecting alternatives.
	var alternatives []string
	for _, p := range patterns[1:] {
		if p == patterns[0] || slices.Contains(alternatives, p) {
			continue
		}
		alternatives = append(alternatives, p)
		if len(alternatives) == 2 {
			break
		}
	}

	return model.ResolvedEmail{
		Name:         contact.Name,
		Email:        patterns[0],
		Confidence:   confidence,
		Source:       "pattern",
		Alternatives: alternatives,
	}
}

// githubEmail searches GitHub for the contact by name and company and
// returns their public email when the profile plausibly matches. The
// email must be on some real domain (profiles often list personal
// addresses, which are still directly usable).
func (r *Resolver) githubEmail(ctx context.Context, contact model.Contact, domain string) string {
	log := zap.L().With(zap.String("name", contact.Name), zap.String("stage", "email"))

	query := contact.Name + " " + contact.Company
	refs, err := r.github.SearchUsers(ctx, query, 3)
	if err != nil {
		log.Debug("github user search failed", zap.Error(err))
		return ""
	}

	for _, ref := range refs {
		user, err := r.github.GetUser(ctx, ref.Login)
		if err != nil {
			log.Debug("github user fetch failed", zap.String("login", ref.Login), zap.Error(err))
			continue
		}
		if user.Email == "" || !ValidAddress(user.Email) {
			continue
		}
		if profileMatchesCompany(user, contact.Company) || strings.HasSuffix(user.Email, "@"+domain) {
			log.Info("found public email on github", zap.String("login", user.Login))
			return strings.ToLower(user.Email)
		}
	}
	return ""
}

// profileMatchesCompany checks the profile's company and bio fields for
// the organization name.
func profileMatchesCompany(user *github.User, company string) bool {
	needle := strings.ToLower(strings.TrimSpace(company))
	if needle == "" {
		return false
	}
	if strings.Contains(strings.ToLower(user.Company), needle) {
		return true
	}
	return strings.Contains(strings.ToLower(user.Bio), needle)
}

// discoverConvention scrapes the organization's public GitHub pages for
// real addresses on the company domain and infers the naming convention
// from them. Misses are normal and leave the convention unknown.
func (r *Resolver) discoverConvention(ctx context.Context, company, domain string, log *zap.Logger) Convention {
	if r.crawler == nil {
		return ConventionUnknown
	}

	slug := normalizeCompany(company)
	pages := []string{
		"https://github.com/orgs/" + slug + "/people",
		"https://github.com/" + slug,
	}

	var observed []string
	for _, page := range pages {
		resp, err := r.crawler.Scrape(ctx, firecrawl.ScrapeRequest{
			URL:     page,
			Formats: []string{"markdown"},
		})
		if err != nil {
			log.Debug("convention scrape failed", zap.String("url", page), zap.Error(err))
			continue
		}
		observed = append(observed, ExtractEmails(resp.Data.Markdown, domain)...)
		if len(observed) >= 3 {
			break
		}
	}

	return InferConvention(observed)
}

func looksLikeEngineer(title string) bool {
	lower := strings.ToLower(title)
	for _, kw := range engineerTitleKeywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}
