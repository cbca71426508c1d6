// Package pkg holds the libraries behind snyk-sync.
//
// # Overview
//
// snyk-sync reads large collections from the Snyk API while staying inside
// the GitHub API quota that the surrounding sync workflow also spends.
// The pkg directory is organized as:
//
//  1. [integrations] - the retrying request executor shared by all clients
//  2. [integrations/snyk] - v1 and v3 clients with both pagination styles
//  3. [integrations/github] - GitHub rate-limit source
//  4. [quota] - tare-based quota governor
//  5. [httputil] - retry policy and context-aware sleep
//  6. [errors], [config], [observability], [buildinfo] - shared plumbing
//
// # Data Flow
//
//	workflow
//	   ↓  AddCalls / CheckPlanned (may sleep until reset)
//	[quota] Governor ← [integrations/github] RateLimits
//	   ↓
//	[integrations/snyk] Paginator (cursor or Link header)
//	   ↓  one call per page
//	[integrations] Client.Execute → [httputil] Retry
//	   ↓
//	workflow ← merged records, Governor.Update between batches
//
// # Quick Start
//
//	client, err := snyk.NewClient(snyk.Config{Token: os.Getenv("SNYK_TOKEN")})
//	if err != nil {
//	    return err
//	}
//	gh, err := github.NewClient(os.Getenv("GITHUB_TOKEN"))
//	if err != nil {
//	    return err
//	}
//	gov, err := quota.New(ctx, gh)
//	if err != nil {
//	    return err
//	}
//
//	gov.AddCalls(len(repos))
//	if _, err := gov.CheckPlanned(ctx, quota.Core); err != nil {
//	    return err
//	}
//	projects, err := client.GetAllPages(ctx, "/orgs/"+org+"/projects", map[string]any{"limit": 100})
//
// [integrations]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/integrations
// [integrations/snyk]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/integrations/snyk
// [integrations/github]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/integrations/github
// [quota]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/quota
// [httputil]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/httputil
// [errors]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/errors
// [config]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/config
// [observability]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/snyk-tech-services/snyk-sync/pkg/buildinfo
package pkg
