package email

import (
	"context"
	"regexp"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/sells-group/outreach-cli/pkg/firecrawl"
)

// knownDomains is a curated table of well-known organizations whose
// primary email domain differs from, or should not wait on, a search.
var knownDomains = map[string]string{
	"stripe":     "stripe.com",
	"google":     "google.com",
	"meta":       "meta.com",
	"facebook":   "meta.com",
	"apple":      "apple.com",
	"amazon":     "amazon.com",
	"microsoft":  "microsoft.com",
	"netflix":    "netflix.com",
	"uber":       "uber.com",
	"lyft":       "lyft.com",
	"airbnb":     "airbnb.com",
	"spotify":    "spotify.com",
	"slack":      "slack.com",
	"salesforce": "salesforce.com",
	"twitter":    "x.com",
	"x":          "x.com",
	"linkedin":   "linkedin.com",
	"snap":       "snap.com",
	"snapchat":   "snap.com",
	"pinterest":  "pinterest.com",
	"reddit":     "reddit.com",
	"shopify":    "shopify.com",
	"databricks": "databricks.com",
	"figma":      "figma.com",
	"notion":     "notion.so",
	"vercel":     "vercel.com",
	"openai":     "openai.com",
	"anthropic":  "anthropic.com",
	"palantir":   "palantir.com",
	"coinbase":   "coinbase.com",
	"robinhood":  "robinhood.com",
	"plaid":      "plaid.com",
	"square":     "squareup.com",
	"block":      "block.xyz",
	"doordash":   "doordash.com",
	"instacart":  "instacart.com",
}

// excludedHosts are domains that show up in "official website" searches
// but never are the company's own domain.
var excludedHosts = []string{
	"linkedin.com", "wikipedia.org", "glassdoor.com", "crunchbase.com",
	"bloomberg.com", "techcrunch.com", "forbes.com", "businessinsider.com",
	"indeed.com", "yelp.com", "yellowpages.com", "bbb.org", "zoominfo.com",
	"pitchbook.com", "angel.co", "wellfound.com",
}

// nameStopwords are corporate-suffix tokens ignored when matching a
// company name against a result domain.
var nameStopwords = map[string]struct{}{
	"inc": {}, "llc": {}, "corp": {}, "ltd": {},
}

var hostPattern = regexp.MustCompile(`^(?:https?://)?(?:www\.)?([^/]+)`)

// DomainCache stores the resolved domain per normalized organization
// name for the lifetime of one pipeline instance. Writes are idempotent
// (the same organization always resolves to the same domain), so first
// writer wins is a sufficient discipline.
type DomainCache interface {
	Get(company string) (string, bool)
	Set(company, domain string)
}

// NewDomainCache returns an in-memory DomainCache safe for concurrent
// use within one process.
func NewDomainCache() DomainCache {
	return &mapCache{entries: make(map[string]string)}
}

type mapCache struct {
	mu      sync.RWMutex
	entries map[string]string
}

func (c *mapCache) Get(company string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	d, ok := c.entries[normalizeCompany(company)]
	return d, ok
}

func (c *mapCache) Set(company, domain string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := normalizeCompany(company)
	if _, exists := c.entries[key]; !exists {
		c.entries[key] = domain
	}
}

func normalizeCompany(company string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(company)), " ", "")
}

// DomainResolver discovers the primary email domain for an organization.
type DomainResolver struct {
	search firecrawl.Client
	cache  DomainCache
}

// NewDomainResolver creates a DomainResolver with the given cache. The
// search client may be nil, in which case discovery degrades to the
// known table and the slug fallback.
func NewDomainResolver(search firecrawl.Client, cache DomainCache) *DomainResolver {
	if cache == nil {
		cache = NewDomainCache()
	}
	return &DomainResolver{search: search, cache: cache}
}

// Resolve returns the best-guess email domain for a company. Priority:
// explicit website, known table, cache, web search, slug fallback. The
// result is cached for the remainder of the process.
func (r *DomainResolver) Resolve(ctx context.Context, company, website string) string {
	log := zap.L().With(zap.String("company", company), zap.String("stage", "domain"))

	if website != "" {
		if host := parseHost(website); host != "" {
			log.Info("using user-supplied domain", zap.String("domain", host))
			r.cache.Set(company, host)
			return host
		}
	}

	if domain, ok := knownDomains[normalizeCompany(company)]; ok {
		return domain
	}

	if domain, ok := r.cache.Get(company); ok {
		return domain
	}

	if domain := r.discover(ctx, company, log); domain != "" {
		r.cache.Set(company, domain)
		return domain
	}

	fallback := SlugDomain(company)
	log.Warn("domain discovery failed, using slug fallback", zap.String("domain", fallback))
	r.cache.Set(company, fallback)
	return fallback
}

// discover runs one web search for the company's official site and picks
// the best non-excluded result domain, preferring one that contains a
// company-name keyword.
func (r *DomainResolver) discover(ctx context.Context, company string, log *zap.Logger) string {
	if r.search == nil {
		return ""
	}

	resp, err := r.search.Search(ctx, firecrawl.SearchRequest{
		Query: company + " official company website",
		Limit: 3,
	})
	if err != nil {
		log.Warn("domain search failed", zap.Error(err))
		return ""
	}

	var candidates []string
	for _, result := range resp.Data {
		host := parseHost(result.URL)
		if host == "" || isExcludedHost(host) {
			continue
		}
		candidates = append(candidates, host)
	}
	if len(candidates) == 0 {
		return ""
	}

	keywords := companyKeywords(company)
	for _, host := range candidates {
		for kw := range keywords {
			if strings.Contains(host, kw) {
				log.Info("discovered domain", zap.String("domain", host))
				return host
			}
		}
	}

	log.Info("discovered domain without keyword match", zap.String("domain", candidates[0]))
	return candidates[0]
}

// SlugDomain synthesizes a domain by slugifying the company name.
func SlugDomain(company string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(company) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String() + ".com"
}

func parseHost(rawURL string) string {
	match := hostPattern.FindStringSubmatch(strings.TrimSpace(rawURL))
	if match == nil {
		return ""
	}
	return strings.ToLower(match[1])
}

func isExcludedHost(host string) bool {
	for _, ex := range excludedHosts {
		if strings.Contains(host, ex) {
			return true
		}
	}
	return false
}

// companyKeywords derives the name tokens usable for domain matching,
// dropping corporate suffixes and tokens of two characters or fewer.
func companyKeywords(company string) map[string]struct{} {
	cleaned := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == ' ' {
			return r
		}
		return -1
	}, strings.ToLower(company))

	out := make(map[string]struct{})
	for _, word := range strings.Fields(cleaned) {
		if len(word) <= 2 {
			continue
		}
		if _, stop := nameStopwords[word]; stop {
			continue
		}
		out[word] = struct{}{}
	}
	return out
}
