package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	r := NoopResolverHooks{}
	r.OnResolveStart(ctx, "compatible_versions", "newtonsoft.json")
	r.OnResolveComplete(ctx, "compatible_versions", "newtonsoft.json", 3, time.Second, nil)

	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "nuget")
	c.OnCacheMiss(ctx, "nuget")
	c.OnCacheSet(ctx, "maven", 1024)

	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "api.nuget.org", "/v3/registration5-gz-semver2/serilog/index.json")
	h.OnResponse(ctx, "GET", "api.nuget.org", "/v3/registration5-gz-semver2/serilog/index.json", 200, time.Second)
	h.OnError(ctx, "GET", "api.nuget.org", "/", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	if _, ok := Resolver().(NoopResolverHooks); !ok {
		t.Error("Resolver() should return NoopResolverHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	customResolver := &testResolverHooks{}
	SetResolverHooks(customResolver)
	if Resolver() != customResolver {
		t.Error("SetResolverHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	Reset()
	if _, ok := Resolver().(NoopResolverHooks); !ok {
		t.Error("Reset() should restore NoopResolverHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	custom := &testResolverHooks{}
	SetResolverHooks(custom)
	SetResolverHooks(nil)
	if Resolver() != custom {
		t.Error("SetResolverHooks(nil) should be ignored")
	}
}

type testResolverHooks struct{ NoopResolverHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testHTTPHooks struct{ NoopHTTPHooks }

func TestStats(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	stats := NewStats()
	stats.Install()
	ctx := context.Background()

	Resolver().OnResolveComplete(ctx, "compatible", "serilog net48", 4, 20*time.Millisecond, nil)
	Resolver().OnResolveComplete(ctx, "compatible", "serilog net48", 0, 10*time.Millisecond, context.DeadlineExceeded)
	Cache().OnCacheMiss(ctx, "nuget")
	Cache().OnCacheSet(ctx, "nuget", 512)
	Cache().OnCacheHit(ctx, "nuget")
	HTTP().OnRequest(ctx, "GET", "api.nuget.org", "/")
	HTTP().OnResponse(ctx, "GET", "api.nuget.org", "/", 200, time.Millisecond)

	snap := stats.Snapshot()
	op := snap.Operations["compatible"]
	if op.Calls != 2 || op.Errors != 1 || op.Results != 4 || op.Total != 30*time.Millisecond {
		t.Errorf("compatible stats = %+v", op)
	}
	if snap.Cache != (CacheStats{Hits: 1, Misses: 1, Sets: 1, Bytes: 512}) {
		t.Errorf("cache stats = %+v", snap.Cache)
	}
	if snap.HTTP.Requests != 1 || snap.HTTP.ByStatus[200] != 1 {
		t.Errorf("http stats = %+v", snap.HTTP)
	}

	snap.HTTP.ByStatus[200] = 99
	if stats.Snapshot().HTTP.ByStatus[200] != 1 {
		t.Error("Snapshot should not alias internal maps")
	}
}
