package github

import (
	"context"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/quota"
)

// Client reports GitHub API rate limits. It implements [quota.Source].
type Client struct {
	gh *github.Client
}

type options struct {
	baseURL   string
	transport http.RoundTripper
}

// Option configures a Client.
type Option func(*options)

// WithBaseURL points the client at a GitHub Enterprise or test server.
func WithBaseURL(u string) Option {
	return func(o *options) { o.baseURL = u }
}

// WithTransport sets the round tripper under the secondary rate-limit waiter.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// NewClient creates a GitHub client. An empty token makes unauthenticated
// requests, which GitHub limits to 60 per hour.
func NewClient(token string, opts ...Option) (*Client, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	httpClient, err := github_ratelimit.NewRateLimitWaiterClient(o.transport)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInternal, err, "create GitHub rate limit waiter")
	}

	gh := github.NewClient(httpClient)
	if token != "" {
		gh = gh.WithAuthToken(token)
	}
	if o.baseURL != "" {
		if err := apierrors.ValidateURL(o.baseURL); err != nil {
			return nil, err
		}
		u, err := url.Parse(strings.TrimSuffix(o.baseURL, "/") + "/")
		if err != nil {
			return nil, apierrors.Wrap(apierrors.ErrCodeInvalidInput, err, "GitHub base URL")
		}
		gh.BaseURL = u
	}
	return &Client{gh: gh}, nil
}

// RateLimits implements [quota.Source] using GET /rate_limit. Categories
// GitHub does not report are omitted.
func (c *Client) RateLimits(ctx context.Context) (map[quota.Category]quota.Rate, error) {
	limits, _, err := c.gh.RateLimit.Get(ctx)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeNetwork, err, "GET /rate_limit")
	}

	if limits == nil {
		return nil, apierrors.New(apierrors.ErrCodeNetwork, "GET /rate_limit: empty response")
	}

	out := make(map[quota.Category]quota.Rate, 4)
	for cat, r := range map[quota.Category]*github.Rate{
		quota.Core:   limits.Core,
		quota.Search: limits.Search,
		GraphQL:      limits.GraphQL,
		CodeSearch:   limits.CodeSearch,
	} {
		if r == nil {
			continue
		}
		out[cat] = quota.Rate{
			Limit:     r.Limit,
			Remaining: r.Remaining,
			Reset:     r.Reset.Time,
		}
	}
	return out, nil
}

// Additional categories reported by GitHub.
const (
	GraphQL    quota.Category = "graphql"
	CodeSearch quota.Category = "code_search"
)
