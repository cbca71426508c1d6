// Package integrations provides the shared HTTP executor used by the API
// clients under this tree.
//
// # Overview
//
// Each remote API has its own subpackage:
//
//   - [snyk]: Snyk v1 and v3 REST APIs, including both pagination styles
//   - [github]: GitHub rate-limit quota source
//
// # Request Executor
//
// [Client] runs one logical call under a [httputil.Policy]:
//
//	c := integrations.NewClient(headers, integrations.WithRetryPolicy(p))
//	resp, err := c.Get(ctx, url, integrations.SanitizeParams(params))
//
// Every attempt is classified with [Classify]:
//
//   - success (2xx/3xx) and client errors (4xx) are returned as a [Response]
//     with a nil error; the caller decides what a 4xx means
//   - 429 waits out a fixed cool-down ([DefaultCoolDown]) and is then retried
//   - 5xx, transport failures and missing responses are retried
//
// Once the attempt budget is spent the last failure is returned. A 429 that
// never clears surfaces as [errors.RateLimitedError].
//
// # Query Parameters
//
// [SanitizeParams] drops falsy values and writes booleans in lowercase.
// [AppendQuery] picks the right separator for URLs that already carry a
// query string.
//
// [snyk]: github.com/snyk-tech-services/snyk-sync/pkg/integrations/snyk
// [github]: github.com/snyk-tech-services/snyk-sync/pkg/integrations/github
// [httputil.Policy]: github.com/snyk-tech-services/snyk-sync/pkg/httputil.Policy
// [errors.RateLimitedError]: github.com/snyk-tech-services/snyk-sync/pkg/errors.RateLimitedError
package integrations
