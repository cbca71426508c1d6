package snyk

import (
	"net/url"
	"strings"

	"github.com/snyk-tech-services/snyk-sync/pkg/integrations"
)

// LegacyV1Prefix is the absolute base the v1 API embeds in its pagination links.
const LegacyV1Prefix = "https://app.snyk.io/api/v1/"

// NormalizePath returns path with exactly one leading slash added when it
// has none. Paths that already start with "/" are returned unchanged.
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	return "/" + path
}

// StripLegacyPrefix rewrites an absolute v1 link into a path relative to the
// v1 base. Anything without the prefix is returned unchanged.
func StripLegacyPrefix(path string) string {
	return strings.ReplaceAll(path, LegacyV1Prefix, "")
}

// EnsureVersionParam adds version=<version> to path unless its final
// segment already mentions a version (case-insensitive).
func EnsureVersionParam(path, version string) string {
	if strings.Contains(strings.ToLower(lastSegment(path)), "version") {
		return path
	}
	return AppendQueryParam(path, "version", version)
}

// AppendQueryParam appends key=value to path. Only the final "/"-separated
// segment decides the separator: none when it already ends in "?" or "&",
// "&" when it carries a query string, "?" otherwise.
func AppendQueryParam(path, key, value string) string {
	return path + integrations.QuerySeparator(lastSegment(path)) +
		url.QueryEscape(key) + "=" + url.QueryEscape(value)
}

func lastSegment(path string) string {
	return path[strings.LastIndex(path, "/")+1:]
}
