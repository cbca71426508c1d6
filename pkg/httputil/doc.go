// Package httputil provides retry primitives for the API clients.
//
// # Retry
//
// [Retry] runs an operation under a [Policy]: a number of attempts, an
// initial delay and a backoff multiplier. Only errors wrapped with
// [Retryable] trigger another attempt; anything else is returned at once.
//
//	err := httputil.Retry(ctx, httputil.Policy{Attempts: 3, Delay: time.Second, Multiplier: 2}, func() error {
//	    resp, err := do()
//	    if err != nil {
//	        return httputil.Retryable(err)
//	    }
//	    ...
//	})
//
// [DefaultPolicy] is a single attempt. Callers opt into retries by raising
// Attempts.
//
// # Sleep
//
// [Sleep] is a context-aware sleep used for rate-limit cool-downs and quota
// waits. Cancelling the context interrupts it.
package httputil
