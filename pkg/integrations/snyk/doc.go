// Package snyk provides clients for the Snyk v1 and v3 REST APIs.
//
// # Clients
//
// [Client] targets the v3 API. Every request carries the token, a
// User-Agent and a version query parameter:
//
//	c, err := snyk.NewClient(snyk.Config{Token: token})
//	projects, err := c.GetAllPages(ctx, "/orgs/"+org+"/projects", map[string]any{"limit": 100})
//
// [V1Client] targets the legacy v1 API:
//
//	v1, err := snyk.NewV1Client(snyk.Config{Token: token})
//	obj, err := v1.GetPagedCollection(ctx, "org/"+org+"/projects", "projects", "perPage", 100)
//
// Both share the retry and rate-limit handling of [integrations.Client].
// 4xx responses other than 429 are returned as errors without retry.
//
// # Pagination
//
// The two APIs paginate differently and each has its own [Paginator]:
//
//   - [CursorPaginator] follows links.next in the response body and merges
//     the next link's query into the working parameters. "limit" is
//     required and re-sent on every page.
//   - [HeaderPaginator] follows rel="next" Link headers and concatenates one
//     named list field. All other fields come from the last page.
//
// Walks stop with [ErrPageLimit] after Config.MaxPages pages. A failed page
// discards everything collected so far.
//
// [integrations.Client]: github.com/snyk-tech-services/snyk-sync/pkg/integrations.Client
package snyk
