package errors

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
)

// ValidateAPIPath validates a request path supplied by a caller before it is
// joined onto an API base URL.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 2048 characters
//   - No null bytes or control characters
//   - No path traversal sequences (..) before the query string
//   - No backslashes
//
// A leading slash is optional; absolute URLs are rejected unless they carry
// the legacy v1 prefix, which callers strip first.
func ValidateAPIPath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	const maxPathLength = 2048
	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "://") {
		return New(ErrCodeInvalidPath, "path must be relative to the API base URL")
	}

	route, _, _ := strings.Cut(path, "?")
	if strings.Contains(route, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// listFieldRegex matches JSON field names used as v1 collection keys
// (e.g. "projects", "orgs", "issues").
var listFieldRegex = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidateListField validates the name of the list field merged by the
// v1 header paginator.
func ValidateListField(name string) error {
	if name == "" {
		return New(ErrCodeInvalidInput, "list field cannot be empty")
	}
	if !listFieldRegex.MatchString(name) {
		return New(ErrCodeInvalidInput, "invalid list field name: %q", name)
	}
	return nil
}

// ValidateURL validates a base URL string for safety.
// It ensures the URL parses and has a safe scheme (http or https) and a host.
func ValidateURL(rawURL string) error {
	if rawURL == "" {
		return New(ErrCodeInvalidInput, "URL cannot be empty")
	}

	if !strings.HasPrefix(rawURL, "http://") && !strings.HasPrefix(rawURL, "https://") {
		return New(ErrCodeInvalidInput, "URL must use http or https scheme")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return Wrap(ErrCodeInvalidInput, err, "invalid URL %q", rawURL)
	}
	if u.Host == "" {
		return New(ErrCodeInvalidInput, "URL must include a host")
	}

	return nil
}
