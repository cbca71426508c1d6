package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.snyk.io", "/v3/orgs")
	h.OnResponse(ctx, "GET", "api.snyk.io", "/v3/orgs", 200, time.Second)
	h.OnError(ctx, "GET", "api.snyk.io", "/v3/orgs", nil)
	h.OnRateLimited(ctx, "GET", "api.snyk.io", "/v3/orgs", time.Minute)

	// Quota hooks
	q := NoopQuotaHooks{}
	q.OnCheckpoint(ctx, "core", 10, 2)
	q.OnThrottle(ctx, "search", 30, 5, time.Minute)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}
	if _, ok := Quota().(NoopQuotaHooks); !ok {
		t.Error("Quota() should return NoopQuotaHooks by default")
	}

	customHTTP := &testHTTPHooks{name: "http"}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	customQuota := &testQuotaHooks{name: "quota"}
	SetQuotaHooks(customQuota)
	if Quota() != customQuota {
		t.Error("SetQuotaHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("Reset() should restore NoopHTTPHooks")
	}
	if _, ok := Quota().(NoopQuotaHooks); !ok {
		t.Error("Reset() should restore NoopQuotaHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testQuotaHooks{name: "quota"}
	SetQuotaHooks(custom)

	// Setting nil should be ignored
	SetQuotaHooks(nil)

	if Quota() != custom {
		t.Error("SetQuotaHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testHTTPHooks struct {
	NoopHTTPHooks
	name string
}

type testQuotaHooks struct {
	NoopQuotaHooks
	name string
}
