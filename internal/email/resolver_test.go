package email

import (
	"context"
	"strings"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/outreach-cli/internal/model"
	"github.com/sells-group/outreach-cli/pkg/firecrawl"
	"github.com/sells-group/outreach-cli/pkg/github"
)

type fakeScraper struct {
	markdown string
	err      error
}

func (f *fakeScraper) Search(ctx context.Context, req firecrawl.SearchRequest) (*firecrawl.SearchResponse, error) {
	return &firecrawl.SearchResponse{Success: true}, nil
}

func (f *fakeScraper) Scrape(ctx context.Context, req firecrawl.ScrapeRequest) (*firecrawl.ScrapeResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &firecrawl.ScrapeResponse{
		Success: true,
		Data:    firecrawl.PageData{URL: req.URL, Markdown: f.markdown, StatusCode: 200},
	}, nil
}

type fakeGitHub struct {
	refs    []github.UserRef
	users   map[string]*github.User
	findErr error
}

func (f *fakeGitHub) SearchUsers(ctx context.Context, query string, perPage int) ([]github.UserRef, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.refs, nil
}

func (f *fakeGitHub) GetUser(ctx context.Context, login string) (*github.User, error) {
	u, ok := f.users[login]
	if !ok {
		return nil, eris.New("github: user not found")
	}
	return u, nil
}

type fakeDNS struct {
	hasMX bool
}

func (f *fakeDNS) HasMailExchange(ctx context.Context, domain string) bool { return f.hasMX }

func (f *fakeDNS) MailExchangeHosts(ctx context.Context, domain string) ([]string, error) {
	if !f.hasMX {
		return nil, eris.New("dnsx: no mx records")
	}
	return []string{"mx.acme.com"}, nil
}

func engineerContact(name string) model.Contact {
	return model.Contact{
		Candidate: model.Candidate{Name: name, Title: "Software Engineer"},
		Company:   "Acme",
	}
}

func recruiterContact(name string) model.Contact {
	return model.Contact{
		Candidate: model.Candidate{Name: name, Title: "Technical Recruiter"},
		Company:   "Acme",
	}
}

func newTestResolver(crawler firecrawl.Client, gh github.Client) *Resolver {
	domains := NewDomainResolver(nil, NewDomainCache())
	return NewResolver(crawler, gh, &fakeDNS{hasMX: true}, domains)
}

func TestResolveEmails_GitHubVerifiedIsHighConfidence(t *testing.T) {
	gh := &fakeGitHub{
		refs: []github.UserRef{{Login: "janedoe"}},
		users: map[string]*github.User{
			"janedoe": {Login: "janedoe", Email: "jane@acme.com", Company: "Acme"},
		},
	}
	r := newTestResolver(nil, gh)

	out := r.ResolveEmails(context.Background(), []model.Contact{engineerContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, "jane@acme.com", out[0].Email)
	assert.Equal(t, model.ConfidenceHigh, out[0].Confidence)
	assert.Equal(t, "github", out[0].Source)
}

func TestResolveEmails_GitHubEmailOnDomainAcceptedWithoutProfileMatch(t *testing.T) {
	gh := &fakeGitHub{
		refs: []github.UserRef{{Login: "jd"}},
		users: map[string]*github.User{
			"jd": {Login: "jd", Email: "jane.doe@acme.com", Company: "somewhere else"},
		},
	}
	r := newTestResolver(nil, gh)

	out := r.ResolveEmails(context.Background(), []model.Contact{engineerContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, model.ConfidenceHigh, out[0].Confidence)
}

func TestResolveEmails_RecruiterSkipsGitHub(t *testing.T) {
	gh := &fakeGitHub{
		refs: []github.UserRef{{Login: "janedoe"}},
		users: map[string]*github.User{
			"janedoe": {Login: "janedoe", Email: "jane@acme.com", Company: "Acme"},
		},
	}
	r := newTestResolver(nil, gh)

	out := r.ResolveEmails(context.Background(), []model.Contact{recruiterContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, "pattern", out[0].Source)
}

func TestResolveEmails_ConventionUpgradesToMedium(t *testing.T) {
	crawler := &fakeScraper{markdown: strings.Join([]string{
		"a.smith@acme.com", "b.jones@acme.com", "c.wu@acme.com",
	}, " ")}
	r := newTestResolver(crawler, nil)

	out := r.ResolveEmails(context.Background(), []model.Contact{recruiterContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, "jane.doe@acme.com", out[0].Email)
	assert.Equal(t, model.ConfidenceMedium, out[0].Confidence)
	assert.Equal(t, "pattern", out[0].Source)
}

func TestResolveEmails_NoConventionIsLowConfidence(t *testing.T) {
	r := newTestResolver(nil, nil)

	out := r.ResolveEmails(context.Background(), []model.Contact{recruiterContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, "jane.doe@acme.com", out[0].Email)
	assert.Equal(t, model.ConfidenceLow, out[0].Confidence)
}

func TestResolveEmails_AlternativesExcludePrimary(t *testing.T) {
	r := newTestResolver(nil, nil)

	out := r.ResolveEmails(context.Background(), []model.Contact{recruiterContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.LessOrEqual(t, len(out[0].Alternatives), 2)
	assert.NotContains(t, out[0].Alternatives, out[0].Email)
}

func TestResolveEmails_AlternativesExcludePrimary_SingleInitialFirstName(t *testing.T) {
	// "j" collapses first.last and f.last into the same address, and a
	// dot convention fronts both copies. The duplicate must not survive
	// into the alternatives.
	crawler := &fakeScraper{markdown: strings.Join([]string{
		"a.smith@acme.com", "b.jones@acme.com", "c.wu@acme.com",
	}, " ")}
	r := newTestResolver(crawler, nil)

	out := r.ResolveEmails(context.Background(), []model.Contact{recruiterContact("J. Smith")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, "j.smith@acme.com", out[0].Email)
	assert.Equal(t, model.ConfidenceMedium, out[0].Confidence)
	assert.NotContains(t, out[0].Alternatives, out[0].Email)

	seen := map[string]bool{}
	for _, alt := range out[0].Alternatives {
		assert.False(t, seen[alt], "alternative %s repeated", alt)
		seen[alt] = true
	}
}

func TestResolveEmails_MissingMXIsNotFatal(t *testing.T) {
	domains := NewDomainResolver(nil, NewDomainCache())
	r := NewResolver(nil, nil, &fakeDNS{hasMX: false}, domains)

	out := r.ResolveEmails(context.Background(), []model.Contact{recruiterContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.NotEmpty(t, out[0].Email)
}

func TestResolveEmails_GitHubFailureFallsBackToPattern(t *testing.T) {
	r := newTestResolver(nil, &fakeGitHub{findErr: eris.New("rate limited")})

	out := r.ResolveEmails(context.Background(), []model.Contact{engineerContact("Jane Doe")}, "Acme", "https://acme.com")

	require.Len(t, out, 1)
	assert.Equal(t, "pattern", out[0].Source)
	assert.Equal(t, "jane.doe@acme.com", out[0].Email)
}

func TestResolveEmails_PreservesContactOrder(t *testing.T) {
	contacts := []model.Contact{
		recruiterContact("Jane Doe"),
		recruiterContact("Bob Smith"),
		recruiterContact("Carol Wu"),
	}
	r := newTestResolver(nil, nil)

	out := r.ResolveEmails(context.Background(), contacts, "Acme", "https://acme.com")

	require.Len(t, out, 3)
	assert.Equal(t, "Jane Doe", out[0].Name)
	assert.Equal(t, "Bob Smith", out[1].Name)
	assert.Equal(t, "Carol Wu", out[2].Name)
}

func TestResolveEmails_EmptyInput(t *testing.T) {
	r := newTestResolver(nil, nil)
	assert.Nil(t, r.ResolveEmails(context.Background(), nil, "Acme", ""))
}
