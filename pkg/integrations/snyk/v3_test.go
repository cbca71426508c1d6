package snyk

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
)

func noSleep(waits *int) integrations.Option {
	return integrations.WithSleep(func(context.Context, time.Duration) error {
		*waits++
		return nil
	})
}

func newTestClient(t *testing.T, server *httptest.Server, cfg Config, opts ...integrations.Option) *Client {
	t.Helper()
	cfg.BaseURL = server.URL + "/v3"
	if cfg.Token == "" {
		cfg.Token = "secret"
	}
	c, err := NewClient(cfg, append([]integrations.Option{integrations.WithDoer(server.Client())}, opts...)...)
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	return c
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(Config{Token: "secret"})
	if err != nil {
		t.Fatalf("NewClient() error: %v", err)
	}
	cfg := c.Config()
	if cfg.BaseURL != DefaultBaseURL {
		t.Errorf("BaseURL = %q, want %q", cfg.BaseURL, DefaultBaseURL)
	}
	if cfg.Version != DefaultVersion {
		t.Errorf("Version = %q, want %q", cfg.Version, DefaultVersion)
	}
	if !strings.HasPrefix(cfg.UserAgent, "snyk-sync/") {
		t.Errorf("UserAgent = %q, want snyk-sync/ prefix", cfg.UserAgent)
	}
	if cfg.RetryAttempts != 1 || cfg.RetryDelay != time.Second || cfg.RetryBackoff != 2 {
		t.Errorf("retry = %d/%v/%v, want 1/1s/2", cfg.RetryAttempts, cfg.RetryDelay, cfg.RetryBackoff)
	}
	if cfg.MaxPages != DefaultMaxPages {
		t.Errorf("MaxPages = %d, want %d", cfg.MaxPages, DefaultMaxPages)
	}
	if c.basePath != "/v3" {
		t.Errorf("basePath = %q, want /v3", c.basePath)
	}
}

func TestNewClientValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"missing token", Config{}},
		{"bad base url", Config{Token: "x", BaseURL: "ftp://example.com"}},
		{"bad v1 url", Config{Token: "x", V1BaseURL: "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewClient(tt.cfg)
			if !apierrors.Is(err, apierrors.ErrCodeInvalidConfig) {
				t.Errorf("NewClient() error = %v, want INVALID_CONFIG", err)
			}
		})
	}
}

func TestClientGetHeadersAndVersion(t *testing.T) {
	var got *http.Request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Clone(context.Background())
		w.Write([]byte(`{"data":[]}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, Config{UserAgent: "snyk-sync/test"})
	params := map[string]any{"origin": "github", "archived": false, "name": ""}
	if _, err := c.Get(context.Background(), "orgs/abc/projects", params); err != nil {
		t.Fatalf("Get() error: %v", err)
	}

	if got.URL.Path != "/v3/orgs/abc/projects" {
		t.Errorf("path = %q, want /v3/orgs/abc/projects", got.URL.Path)
	}
	q := got.URL.Query()
	if q.Get("version") != DefaultVersion {
		t.Errorf("version = %q, want %q", q.Get("version"), DefaultVersion)
	}
	if q.Get("origin") != "github" || q.Get("archived") != "false" {
		t.Errorf("query = %v", q)
	}
	if q.Has("name") {
		t.Error("empty param should be omitted")
	}
	if got.Header.Get("Authorization") != "token secret" {
		t.Errorf("Authorization = %q", got.Header.Get("Authorization"))
	}
	if got.Header.Get("User-Agent") != "snyk-sync/test" {
		t.Errorf("User-Agent = %q", got.Header.Get("User-Agent"))
	}
	if len(params) != 3 {
		t.Error("Get() must not modify the caller's params")
	}
}

func TestClientGetExplicitVersion(t *testing.T) {
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, Config{})
	if _, err := c.Get(context.Background(), "/orgs", map[string]any{"version": "2022-01-01"}); err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if query != "version=2022-01-01" {
		t.Errorf("query = %q, want version=2022-01-01", query)
	}
}

func TestClientGetClientErrorNotRetried(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := newTestClient(t, server, Config{RetryAttempts: 3, RetryDelay: time.Millisecond})
	_, err := c.Get(context.Background(), "/orgs", nil)

	var se *apierrors.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusForbidden {
		t.Fatalf("Get() error = %v, want StatusError 403", err)
	}
	if !apierrors.Is(err, apierrors.ErrCodeUnauthorized) {
		t.Errorf("code = %s, want UNAUTHORIZED", apierrors.GetCode(err))
	}
	if n := calls.Load(); n != 1 {
		t.Errorf("calls = %d, want 1", n)
	}
}

func TestClientGetRateLimitedThenSuccess(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"data":[{"id":"1"}]}`))
	}))
	defer server.Close()

	waits := 0
	c := newTestClient(t, server, Config{RetryAttempts: 2, RetryDelay: time.Millisecond}, noSleep(&waits))
	resp, err := c.Get(context.Background(), "/orgs", nil)
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if !resp.OK() {
		t.Errorf("Class = %v, want success", resp.Class)
	}
	if waits != 1 {
		t.Errorf("cool-down sleeps = %d, want 1", waits)
	}
}

func TestClientPost(t *testing.T) {
	var contentType, query string
	var body map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		contentType = r.Header.Get("Content-Type")
		query = r.URL.RawQuery
		data, _ := io.ReadAll(r.Body)
		json.Unmarshal(data, &body)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"t1"}}`))
	}))
	defer server.Close()

	c := newTestClient(t, server, Config{})
	doc := map[string]any{"data": map[string]any{"type": "target"}}
	resp, err := c.Post(context.Background(), "orgs/abc/targets", doc)
	if err != nil {
		t.Fatalf("Post() error: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("status = %d, want 201", resp.StatusCode)
	}
	if !strings.HasPrefix(contentType, "application/vnd.api+json") {
		t.Errorf("Content-Type = %q", contentType)
	}
	if query != "version="+DefaultVersion {
		t.Errorf("query = %q", query)
	}
	if fmt.Sprint(body["data"]) != "map[type:target]" {
		t.Errorf("body = %v", body)
	}
}

func TestRelativePath(t *testing.T) {
	c := &Client{basePath: "/v3"}
	tests := []struct {
		in, want string
	}{
		{"/v3/orgs", "/orgs"},
		{"/orgs", "/orgs"},
		{"/v3", "/"},
		{"/v3beta/orgs", "/v3beta/orgs"},
		{"orgs", "/orgs"},
	}

	for _, tt := range tests {
		if got := c.relativePath(tt.in); got != tt.want {
			t.Errorf("relativePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
