// Package dnsx provides the DNS mail-exchange capability used to check
// whether a domain can receive email.
package dnsx

import (
	"context"
	"net"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
)

// Resolver answers mail-exchange questions for a domain.
type Resolver interface {
	// HasMailExchange reports whether the domain has at least one MX record.
	HasMailExchange(ctx context.Context, domain string) bool
	// MailExchangeHosts returns MX hostnames ordered by preference.
	MailExchangeHosts(ctx context.Context, domain string) ([]string, error)
}

// netResolver implements Resolver over the standard library resolver.
type netResolver struct {
	resolver *net.Resolver
	timeout  time.Duration
}

// NewResolver creates a Resolver backed by the system DNS resolver.
func NewResolver() Resolver {
	return &netResolver{
		resolver: net.DefaultResolver,
		timeout:  5 * time.Second,
	}
}

func (r *netResolver) HasMailExchange(ctx context.Context, domain string) bool {
	hosts, err := r.MailExchangeHosts(ctx, domain)
	return err == nil && len(hosts) > 0
}

func (r *netResolver) MailExchangeHosts(ctx context.Context, domain string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	records, err := r.resolver.LookupMX(ctx, domain)
	if err != nil {
		return nil, eris.Wrap(err, "dnsx: lookup mx")
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Pref < records[j].Pref
	})

	hosts := make([]string, 0, len(records))
	for _, rec := range records {
		hosts = append(hosts, strings.TrimSuffix(rec.Host, "."))
	}
	return hosts, nil
}
