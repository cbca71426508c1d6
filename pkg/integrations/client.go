package integrations

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/httputil"
	"github.com/snyk-tech-services/snyk-sync/pkg/observability"
)

// Doer makes HTTP requests. *http.Client implements Doer.
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// Request describes one logical API call. Params are appended to URL;
// a non-nil Body is JSON-encoded once and replayed on every attempt.
type Request struct {
	Method string
	URL    string
	Header map[string]string
	Params url.Values
	Body   any
}

// Client executes API calls with shared headers, a retry policy and
// special handling for rate-limited responses. It keeps no state between
// calls other than its configuration and optional pacing limiter.
type Client struct {
	http     Doer
	headers  map[string]string
	policy   httputil.Policy
	coolDown time.Duration
	sleep    func(context.Context, time.Duration) error
	limiter  *rate.Limiter
	logger   *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithDoer sets the transport used for every attempt.
func WithDoer(d Doer) Option {
	return func(c *Client) {
		if d != nil {
			c.http = d
		}
	}
}

// WithRetryPolicy sets the retry/backoff policy applied around each call.
func WithRetryPolicy(p httputil.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// WithCoolDown sets the wait applied after a 429 before it is surfaced.
func WithCoolDown(d time.Duration) Option {
	return func(c *Client) { c.coolDown = d }
}

// WithSleep replaces the function used for the 429 cool-down. Tests use it
// to observe waits without blocking.
func WithSleep(fn func(context.Context, time.Duration) error) Option {
	return func(c *Client) {
		if fn != nil {
			c.sleep = fn
		}
	}
}

// WithRateLimit paces outgoing attempts to rps requests per second.
// A non-positive rps disables pacing.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), max(burst, 1))
	}
}

// WithLogger sets the logger used for request traces.
func WithLogger(l *log.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// NewClient creates a Client with the given default headers.
// Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed.
func NewClient(headers map[string]string, opts ...Option) *Client {
	c := &Client{
		http:     NewHTTPClient(),
		headers:  headers,
		policy:   httputil.DefaultPolicy,
		coolDown: DefaultCoolDown,
		sleep:    httputil.Sleep,
		logger:   log.Default(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Logger returns the client's logger.
func (c *Client) Logger() *log.Logger { return c.logger }

// Get performs a GET request for rawURL with the given query parameters.
func (c *Client) Get(ctx context.Context, rawURL string, params url.Values) (*Response, error) {
	return c.Execute(ctx, Request{Method: http.MethodGet, URL: rawURL, Params: params})
}

// Execute runs req under the client's retry policy.
//
// 5xx responses, missing responses, transport failures and 429 responses are
// retried; a 429 first waits out the cool-down. Any other response,
// including 4xx, is returned as-is with a nil error so the caller can decide.
// An error is returned only once the retry budget is spent, or when the
// request cannot be built.
func (c *Client) Execute(ctx context.Context, req Request) (*Response, error) {
	var body []byte
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, apierrors.Wrap(apierrors.ErrCodeInvalidInput, err, "encode body for %s %s", req.Method, req.URL)
		}
		body = b
	}
	target := AppendQuery(req.URL, req.Params)

	policy := c.policy
	if policy.OnRetry == nil {
		policy.OnRetry = func(attempt int, err error, wait time.Duration) {
			c.logger.Warn("request failed, retrying", "attempt", attempt, "wait", wait, "err", err)
		}
	}

	var resp *Response
	err := httputil.Retry(ctx, policy, func() error {
		r, err := c.do(ctx, req.Method, target, req.Header, body)
		if err != nil {
			return err
		}
		resp = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// do performs a single attempt and classifies the outcome.
func (c *Client) do(ctx context.Context, method, target string, headers map[string]string, body []byte) (*Response, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limit wait: %w", err)
		}
	}

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInvalidInput, err, "build request %s %s", method, target)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	host, path := req.URL.Host, req.URL.Path
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, method, host, path)
	c.logger.Debug(method, "url", target)

	start := time.Now()
	httpResp, err := c.http.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		hooks.OnError(ctx, method, host, path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: %s %s: %v", ErrNetwork, method, target, err))
	}
	if httpResp == nil {
		hooks.OnError(ctx, method, host, path, ErrEmptyResponse)
		return nil, httputil.Retryable(fmt.Errorf("%w: %s %s: %w", ErrNetwork, method, target, ErrEmptyResponse))
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		hooks.OnError(ctx, method, host, path, err)
		return nil, httputil.Retryable(fmt.Errorf("%w: read %s %s: %v", ErrNetwork, method, target, err))
	}
	hooks.OnResponse(ctx, method, host, path, httpResp.StatusCode, time.Since(start))

	resp := &Response{
		Method:     method,
		URL:        target,
		Class:      Classify(httpResp.StatusCode),
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       data,
	}

	switch resp.Class {
	case ClassRateLimited:
		c.logger.Debug("RESP", "status", resp.StatusCode, "headers", resp.Header)
		c.logger.Warn("hit 429, cooling down before erroring out", "wait", c.coolDown)
		hooks.OnRateLimited(ctx, method, host, path, c.coolDown)
		if err := c.sleep(ctx, c.coolDown); err != nil {
			return nil, err
		}
		return nil, httputil.Retryable(&apierrors.RateLimitedError{RetryAfter: c.coolDown, Status: resp.statusError()})
	case ClassServerError:
		c.logger.Debug("RESP", "status", resp.StatusCode, "headers", resp.Header)
		return nil, httputil.Retryable(fmt.Errorf("%w: %w", ErrNetwork, resp.statusError()))
	}
	return resp, nil
}
