// Package github reports GitHub API rate limits for the quota governor.
//
// # Usage
//
//	client, err := github.NewClient(token)
//	if err != nil {
//	    return err
//	}
//	gov, err := quota.New(ctx, client)
//
// [Client.RateLimits] calls GET /rate_limit through go-github and returns
// limit, remaining and reset for each category GitHub reports (core,
// search, graphql, code_search).
//
// # Authentication
//
// A token is optional. Without one GitHub allows 60 requests per hour;
// with one, 5000.
//
// # Secondary Limits
//
// Requests go through a go-github-ratelimit waiter, which sleeps when
// GitHub signals a secondary (abuse) rate limit instead of failing.
package github
