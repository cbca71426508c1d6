package snyk

import (
	"context"
	"encoding/json"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
)

const jsonAPIContentType = "application/vnd.api+json; charset=utf-8"

// Client talks to the v3 REST API. Responses are JSON:API documents whose
// collections are paginated through links.next in the body.
type Client struct {
	api      *integrations.Client
	cfg      Config
	basePath string
	logger   *log.Logger
}

// NewClient creates a v3 client from cfg. Options are passed through to the
// underlying [integrations.Client].
func NewClient(cfg Config, opts ...integrations.Option) (*Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	api := newAPI(cfg, opts)

	var basePath string
	if u, err := url.Parse(cfg.BaseURL); err == nil {
		basePath = strings.TrimSuffix(u.Path, "/")
	}

	return &Client{
		api:      api,
		cfg:      cfg,
		basePath: basePath,
		logger:   api.Logger(),
	}, nil
}

// Config returns a copy of the client's effective configuration.
func (c *Client) Config() Config { return c.cfg }

// Get fetches path relative to the base URL. When params carries no
// "version" the configured tag is added to the path. params is not
// modified. A 4xx response is returned as a *errors.StatusError.
func (c *Client) Get(ctx context.Context, path string, params map[string]any) (*integrations.Response, error) {
	path = NormalizePath(path)
	if _, ok := params["version"]; !ok {
		path = EnsureVersionParam(path, c.cfg.Version)
	}

	resp, err := c.api.Get(ctx, c.cfg.BaseURL+path, integrations.SanitizeParams(params))
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err()
	}
	c.logger.Debug("RESP", "status", resp.StatusCode, "headers", resp.Header)
	return resp, nil
}

// Post sends body as a JSON:API document to path.
func (c *Client) Post(ctx context.Context, path string, body any) (*integrations.Response, error) {
	path = EnsureVersionParam(NormalizePath(path), c.cfg.Version)

	resp, err := c.api.Execute(ctx, integrations.Request{
		Method: http.MethodPost,
		URL:    c.cfg.BaseURL + path,
		Header: map[string]string{"Content-Type": jsonAPIContentType},
		Body:   body,
	})
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err()
	}
	return resp, nil
}

// GetAllPages follows links.next from path until the collection is
// exhausted and returns every record in server order. params must include
// "limit"; it is sent on every page request.
func (c *Client) GetAllPages(ctx context.Context, path string, params map[string]any) ([]json.RawMessage, error) {
	col, err := c.Paginator().Collect(ctx, PageRequest{Path: path, Params: params})
	if err != nil {
		return nil, err
	}
	return col.Records, nil
}

// Paginator returns the cursor paginator bound to this client.
func (c *Client) Paginator() *CursorPaginator {
	return &CursorPaginator{client: c}
}

// relativePath turns the path of a next link into one that can be joined
// onto the base URL again, dropping the base path if the link repeats it.
func (c *Client) relativePath(p string) string {
	if c.basePath != "" && (p == c.basePath || strings.HasPrefix(p, c.basePath+"/")) {
		p = strings.TrimPrefix(p, c.basePath)
	}
	return NormalizePath(p)
}

// mergeQuery copies the query parameters of a next link into params,
// overwriting same-named keys.
func mergeQuery(params map[string]any, q url.Values) map[string]any {
	out := maps.Clone(params)
	if out == nil {
		out = make(map[string]any, len(q))
	}
	for k, vs := range q {
		if len(vs) == 1 {
			out[k] = vs[0]
		} else if len(vs) > 1 {
			out[k] = vs
		}
	}
	return out
}
