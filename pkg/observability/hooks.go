// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers can register hooks at startup
// to receive events about API calls, retries and remote quota consumption.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetHTTPHooks(&myHTTPHooks{})
//	    observability.SetQuotaHooks(&myQuotaHooks{})
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.HTTP().OnRequest(ctx, http.MethodGet, host, path)
//	// ... do request ...
//	observability.HTTP().OnResponse(ctx, http.MethodGet, host, path, status, duration)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request attempt.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)

	// OnRateLimited records a 429 response and the cool-down applied.
	OnRateLimited(ctx context.Context, method, host, path string, coolDown time.Duration)
}

// =============================================================================
// Quota Hooks
// =============================================================================

// QuotaHooks receives events from the remote quota governor.
type QuotaHooks interface {
	// OnCheckpoint records cumulative consumption for a quota category.
	OnCheckpoint(ctx context.Context, category string, cumulative, delta int)

	// OnThrottle records a proactive sleep until the quota window resets.
	OnThrottle(ctx context.Context, category string, needed, remaining int, wait time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
func (NoopHTTPHooks) OnRateLimited(context.Context, string, string, string, time.Duration)   {}

// NoopQuotaHooks is a no-op implementation of QuotaHooks.
type NoopQuotaHooks struct{}

func (NoopQuotaHooks) OnCheckpoint(context.Context, string, int, int)                  {}
func (NoopQuotaHooks) OnThrottle(context.Context, string, int, int, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	quotaHooks QuotaHooks = NoopQuotaHooks{}
	hooksMu    sync.RWMutex
)

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// SetQuotaHooks registers custom quota hooks.
func SetQuotaHooks(h QuotaHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		quotaHooks = h
	}
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Quota returns the registered quota hooks.
func Quota() QuotaHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return quotaHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	httpHooks = NoopHTTPHooks{}
	quotaHooks = NoopQuotaHooks{}
}
