package integrations

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/tomnomnom/linkheader"

	apierrors "github.com/snyk-tech-services/snyk-sync/pkg/errors"
)

// StatusClass is the coarse classification of one HTTP attempt.
type StatusClass int

const (
	ClassSuccess StatusClass = iota
	ClassClientError
	ClassRateLimited
	ClassServerError
)

func (c StatusClass) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassClientError:
		return "client_error"
	case ClassRateLimited:
		return "rate_limited"
	case ClassServerError:
		return "server_error"
	default:
		return fmt.Sprintf("StatusClass(%d)", int(c))
	}
}

// Classify maps an HTTP status code to a StatusClass. A zero status stands
// for a missing response and counts as a server error.
func Classify(code int) StatusClass {
	switch {
	case code == http.StatusTooManyRequests:
		return ClassRateLimited
	case code == 0, code >= 500:
		return ClassServerError
	case code >= 400:
		return ClassClientError
	default:
		return ClassSuccess
	}
}

// Response is the outcome of one HTTP exchange, with the body fully read.
type Response struct {
	Method     string
	URL        string
	Class      StatusClass
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the response is a 2xx or 3xx.
func (r *Response) OK() bool {
	return r != nil && r.Class == ClassSuccess
}

// JSON decodes the response body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return apierrors.Wrap(apierrors.ErrCodeDecode, err, "decode %s %s", r.Method, r.URL)
	}
	return nil
}

// Err returns a *errors.StatusError for responses that are not OK, nil otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return r.statusError()
}

func (r *Response) statusError() *apierrors.StatusError {
	return &apierrors.StatusError{
		Method:     r.Method,
		URL:        r.URL,
		StatusCode: r.StatusCode,
		Header:     r.Header,
		Body:       r.Body,
	}
}

// Links returns the URLs of the response's Link header relations, keyed by rel.
// When a rel appears more than once the first occurrence wins.
func (r *Response) Links() map[string]string {
	if r == nil || r.Header == nil {
		return nil
	}
	links := linkheader.ParseMultiple(r.Header.Values("Link"))
	if len(links) == 0 {
		return nil
	}
	out := make(map[string]string, len(links))
	for _, l := range links {
		if _, seen := out[l.Rel]; !seen && l.URL != "" {
			out[l.Rel] = l.URL
		}
	}
	return out
}

// NextLink returns the URL of the rel="next" Link relation, if any.
func (r *Response) NextLink() (string, bool) {
	next, ok := r.Links()["next"]
	return next, ok
}
