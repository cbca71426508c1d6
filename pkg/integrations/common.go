package integrations

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"
)

const httpTimeout = 30 * time.Second

// DefaultCoolDown is the fixed wait applied once after a 429 response before
// the failure is handed back to the retry policy.
const DefaultCoolDown = 60 * time.Second

var (
	// ErrNetwork is returned for HTTP failures (timeouts, connection errors, 5xx responses).
	ErrNetwork = errors.New("network error")

	// ErrEmptyResponse is returned when the transport yields neither a response nor an error.
	ErrEmptyResponse = errors.New("empty response")
)

// NewHTTPClient creates an HTTP client with a standard timeout for API requests.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}

// SanitizeParams converts loosely typed query parameters into url.Values.
//
// Falsy values (nil, "", numeric zero, nil pointers, empty slices) are dropped
// entirely rather than serialized as empty strings. Booleans are written as
// lowercase "true"/"false" because the remote query parser expects that form.
// Slices and arrays become repeated parameters.
func SanitizeParams(params map[string]any) url.Values {
	out := url.Values{}
	for k, v := range params {
		for _, s := range paramValues(v) {
			out.Add(k, s)
		}
	}
	return out
}

func paramValues(v any) []string {
	if v == nil {
		return nil
	}

	switch x := v.(type) {
	case bool:
		return []string{strconv.FormatBool(x)}
	case string:
		if x == "" {
			return nil
		}
		return []string{x}
	case fmt.Stringer:
		if reflect.ValueOf(v).IsZero() {
			return nil
		}
		if s := x.String(); s != "" {
			return []string{s}
		}
		return nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array:
		var out []string
		for i := range rv.Len() {
			out = append(out, paramValues(rv.Index(i).Interface())...)
		}
		return out
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return nil
		}
		return paramValues(rv.Elem().Interface())
	}

	if rv.IsZero() {
		return nil
	}
	return []string{fmt.Sprint(v)}
}

// AppendQuery appends encoded query values to rawURL using the separator its
// current shape calls for: nothing after a trailing "?" or "&", "&" when a
// query string is already present, "?" otherwise.
func AppendQuery(rawURL string, values url.Values) string {
	if len(values) == 0 {
		return rawURL
	}
	return rawURL + QuerySeparator(rawURL) + values.Encode()
}

// QuerySeparator returns the text to insert between s and a new query
// parameter.
func QuerySeparator(s string) string {
	switch {
	case strings.HasSuffix(s, "?"), strings.HasSuffix(s, "&"):
		return ""
	case strings.Contains(s, "?"):
		return "&"
	default:
		return "?"
	}
}

// JoinURL joins a base URL and a request path with exactly one slash
// between them.
func JoinURL(base, path string) string {
	if path == "" {
		return base
	}
	return strings.TrimSuffix(base, "/") + "/" + strings.TrimPrefix(path, "/")
}
