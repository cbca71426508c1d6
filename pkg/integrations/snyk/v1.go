package snyk

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
)

// V1Client talks to the legacy v1 API, which paginates through Link headers.
type V1Client struct {
	api      *integrations.Client
	baseURL  string
	maxPages int
	logger   *log.Logger
}

// NewV1Client creates a v1 client from cfg, using cfg.V1BaseURL as its root.
func NewV1Client(cfg Config, opts ...integrations.Option) (*V1Client, error) {
	cfg = cfg.withDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	api := newAPI(cfg, opts)
	return &V1Client{
		api:      api,
		baseURL:  strings.TrimSuffix(cfg.V1BaseURL, "/"),
		maxPages: cfg.MaxPages,
		logger:   api.Logger(),
	}, nil
}

// Get fetches path, which is either relative to the v1 base or an absolute
// link previously returned by the API. A 4xx response is returned as a
// *errors.StatusError.
func (c *V1Client) Get(ctx context.Context, path string) (*integrations.Response, error) {
	resp, err := c.api.Get(ctx, c.resolve(path), nil)
	if err != nil {
		return nil, err
	}
	if !resp.OK() {
		return nil, resp.Err()
	}
	return resp, nil
}

// GetPagedCollection fetches every page of path and returns the last page's
// object with listField holding the concatenation of all pages' lists.
// Empty pageSizeParam and non-positive pageSize select perPage=100.
func (c *V1Client) GetPagedCollection(ctx context.Context, path, listField, pageSizeParam string, pageSize int) (map[string]json.RawMessage, error) {
	col, err := c.Paginator().Collect(ctx, PageRequest{
		Path:          path,
		ListField:     listField,
		PageSizeParam: pageSizeParam,
		PageSize:      pageSize,
	})
	if err != nil {
		return nil, err
	}
	return col.Object, nil
}

// Paginator returns the header paginator bound to this client.
func (c *V1Client) Paginator() *HeaderPaginator {
	return &HeaderPaginator{client: c}
}

func (c *V1Client) resolve(path string) string {
	path = StripLegacyPrefix(path)
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return integrations.JoinURL(c.baseURL, path)
}
