package snyk

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
)

var (
	// ErrMissingLimit is returned when a cursor walk is started without a
	// "limit" parameter.
	ErrMissingLimit = apierrors.New(apierrors.ErrCodeInvalidInput, "params must include a page-size limit")

	// ErrPageLimit is returned when a walk reaches the configured page cap
	// before the server stops sending next links.
	ErrPageLimit = apierrors.New(apierrors.ErrCodePageLimit, "pagination page limit reached")
)

// APIVersion selects which API, and so which pagination protocol, a walk targets.
type APIVersion string

const (
	V1 APIVersion = "v1"
	V3 APIVersion = "v3"
)

// PageRequest describes one collection walk. Params and the page size
// fields are only read; the caller's map is never modified.
type PageRequest struct {
	Path   string
	Params map[string]any

	// ListField, PageSizeParam and PageSize apply to v1 walks only.
	ListField     string
	PageSizeParam string
	PageSize      int
}

// Collection is the result of a completed walk. Records holds the merged
// list in server order. Object is set for v1 walks: the last page's
// top-level fields with the list field replaced by the merged list.
type Collection struct {
	Records []json.RawMessage
	Object  map[string]json.RawMessage
}

// Paginator exhausts a paginated collection. Partial results are discarded
// when any page fails.
type Paginator interface {
	Collect(ctx context.Context, req PageRequest) (*Collection, error)
}

// PaginatorFor returns the paginator for version, bound to the matching client.
func PaginatorFor(version APIVersion, v1 *V1Client, v3 *Client) (Paginator, error) {
	switch version {
	case V1:
		if v1 == nil {
			return nil, apierrors.New(apierrors.ErrCodeInvalidConfig, "no v1 client configured")
		}
		return v1.Paginator(), nil
	case V3:
		if v3 == nil {
			return nil, apierrors.New(apierrors.ErrCodeInvalidConfig, "no v3 client configured")
		}
		return v3.Paginator(), nil
	default:
		return nil, apierrors.New(apierrors.ErrCodeInvalidInput, "unknown API version %q", version)
	}
}

// Page is one v3 collection page.
type Page struct {
	Data  []json.RawMessage          `json:"data"`
	Links map[string]json.RawMessage `json:"links"`
}

// Next returns the next link of the page, or "" on the last page. The link
// may be a plain string or an object with an "href" member.
func (p *Page) Next() (string, error) {
	raw, ok := p.Links["next"]
	if !ok || string(raw) == "null" {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s, nil
	}
	var obj struct {
		Href string `json:"href"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return "", apierrors.Wrap(apierrors.ErrCodeDecode, err, "links.next")
	}
	return obj.Href, nil
}

// CursorPaginator walks v3 collections by following links.next in the body.
type CursorPaginator struct {
	client *Client
}

// Collect implements [Paginator].
func (p *CursorPaginator) Collect(ctx context.Context, req PageRequest) (*Collection, error) {
	limit, ok := req.Params["limit"]
	if !ok || limit == nil {
		return nil, ErrMissingLimit
	}
	if err := apierrors.ValidateAPIPath(req.Path); err != nil {
		return nil, err
	}

	c := p.client
	walk := uuid.NewString()
	params := mergeQuery(req.Params, nil)
	path := req.Path
	var records []json.RawMessage

	for n := 1; ; n++ {
		if n > c.cfg.MaxPages {
			return nil, fmt.Errorf("%w: %s after %d pages", ErrPageLimit, req.Path, c.cfg.MaxPages)
		}

		resp, err := c.Get(ctx, path, params)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", n, req.Path, err)
		}
		var page Page
		if err := resp.JSON(&page); err != nil {
			return nil, err
		}
		records = append(records, page.Data...)
		c.logger.Debug("page", "walk", walk, "n", n, "records", len(page.Data), "total", len(records))

		next, err := page.Next()
		if err != nil {
			return nil, err
		}
		if next == "" {
			break
		}
		u, err := url.Parse(next)
		if err != nil {
			return nil, apierrors.Wrap(apierrors.ErrCodeDecode, err, "parse next link %q", next)
		}
		params = mergeQuery(params, u.Query())
		params["limit"] = limit
		path = c.relativePath(u.Path)
	}

	return &Collection{Records: records}, nil
}

// HeaderPaginator walks v1 collections by following rel="next" Link headers.
type HeaderPaginator struct {
	client *V1Client
}

// Collect implements [Paginator]. Only req.ListField is merged across
// pages; every other top-level field reflects the last page fetched.
func (p *HeaderPaginator) Collect(ctx context.Context, req PageRequest) (*Collection, error) {
	if err := apierrors.ValidateListField(req.ListField); err != nil {
		return nil, err
	}
	path := StripLegacyPrefix(req.Path)
	if err := apierrors.ValidateAPIPath(path); err != nil {
		return nil, err
	}

	sizeParam := req.PageSizeParam
	if sizeParam == "" {
		sizeParam = DefaultPageSizeParam
	}
	size := req.PageSize
	if size <= 0 {
		size = DefaultPageSize
	}
	if q := integrations.SanitizeParams(req.Params); len(q) > 0 {
		path += integrations.QuerySeparator(lastSegment(path)) + q.Encode()
	}
	path = AppendQueryParam(path, sizeParam, strconv.Itoa(size))

	c := p.client
	walk := uuid.NewString()

	resp, err := c.Get(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("page 1 of %s: %w", req.Path, err)
	}
	obj, list, err := decodeListPage(resp, req.ListField)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("page", "walk", walk, "n", 1, "records", len(list))

	for n := 2; ; n++ {
		next, ok := resp.NextLink()
		if !ok {
			break
		}
		if n > c.maxPages {
			return nil, fmt.Errorf("%w: %s after %d pages", ErrPageLimit, req.Path, c.maxPages)
		}

		resp, err = c.Get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("page %d of %s: %w", n, req.Path, err)
		}
		pageObj, pageList, err := decodeListPage(resp, req.ListField)
		if err != nil {
			return nil, err
		}
		obj = pageObj
		list = append(list, pageList...)
		c.logger.Debug("page", "walk", walk, "n", n, "records", len(pageList), "total", len(list))
	}

	merged, err := json.Marshal(list)
	if err != nil {
		return nil, apierrors.Wrap(apierrors.ErrCodeInternal, err, "encode %s", req.ListField)
	}
	if list == nil {
		merged = []byte("[]")
	}
	obj[req.ListField] = merged
	return &Collection{Records: list, Object: obj}, nil
}

func decodeListPage(resp *integrations.Response, field string) (map[string]json.RawMessage, []json.RawMessage, error) {
	var obj map[string]json.RawMessage
	if err := resp.JSON(&obj); err != nil {
		return nil, nil, err
	}
	if obj == nil {
		return nil, nil, apierrors.New(apierrors.ErrCodeDecode, "%s: expected a JSON object", resp.URL)
	}
	raw, ok := obj[field]
	if !ok {
		return nil, nil, apierrors.New(apierrors.ErrCodeDecode, "%s: missing list field %q", resp.URL, field)
	}
	var list []json.RawMessage
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, nil, apierrors.Wrap(apierrors.ErrCodeDecode, err, "%s: field %q is not a list", resp.URL, field)
	}
	return obj, list, nil
}
