// Package github provides a minimal client for the GitHub users API,
// used to look up public email addresses for engineer contacts.
package github

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rotisserie/eris"
)

const defaultBaseURL = "https://api.github.com"

// Client performs GitHub user lookups.
type Client interface {
	SearchUsers(ctx context.Context, query string, perPage int) ([]UserRef, error)
	GetUser(ctx context.Context, login string) (*User, error)
}

// UserRef is a search hit from the users search API.
type UserRef struct {
	Login string `json:"login"`
}

// User is a full user profile.
type User struct {
	Login   string `json:"login"`
	Email   string `json:"email"`
	Bio     string `json:"bio"`
	Company string `json:"company"`
}

// ErrRateLimited is returned when GitHub responds 403 (unauthenticated
// search quota is tiny; callers treat this as a soft miss).
var ErrRateLimited = eris.New("github: rate limited")

// Option configures the client.
type Option func(*httpClient)

// WithBaseURL overrides the default API base URL.
func WithBaseURL(u string) Option {
	return func(c *httpClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *httpClient) {
		c.http = hc
	}
}

type httpClient struct {
	token   string
	baseURL string
	http    *http.Client
}

// NewClient creates a GitHub API client. The token is optional;
// unauthenticated requests work with lower rate limits.
func NewClient(token string, opts ...Option) Client {
	c := &httpClient{
		token:   token,
		baseURL: defaultBaseURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

type searchUsersResponse struct {
	Items []UserRef `json:"items"`
}

func (c *httpClient) SearchUsers(ctx context.Context, query string, perPage int) ([]UserRef, error) {
	path := fmt.Sprintf("/search/users?q=%s&per_page=%d", url.QueryEscape(query), perPage)
	var resp searchUsersResponse
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, eris.Wrap(err, "github: search users")
	}
	return resp.Items, nil
}

func (c *httpClient) GetUser(ctx context.Context, login string) (*User, error) {
	var user User
	if err := c.get(ctx, "/users/"+url.PathEscape(login), &user); err != nil {
		return nil, eris.Wrap(err, fmt.Sprintf("github: get user %s", login))
	}
	return &user, nil
}

func (c *httpClient) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return eris.Wrap(err, "create request")
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return eris.Wrap(err, "execute request")
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return eris.Wrap(err, "read response body")
	}

	if resp.StatusCode == http.StatusForbidden {
		return ErrRateLimited
	}
	if resp.StatusCode != http.StatusOK {
		return eris.Errorf("unexpected status %d: %s", resp.StatusCode, string(data))
	}

	if err := json.Unmarshal(data, out); err != nil {
		return eris.Wrap(err, "decode response")
	}

	return nil
}
