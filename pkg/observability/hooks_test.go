package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Render hooks
	r := NoopRenderHooks{}
	r.OnPassStart(ctx, 1140, 2.5)
	r.OnPassComplete(ctx, 120, time.Millisecond, nil)
	r.OnArtifactStart(ctx, "svg")
	r.OnArtifactComplete(ctx, "svg", 4096, time.Second, nil)

	// Cache hooks
	c := NoopCacheHooks{}
	c.OnCacheHit(ctx, "snapshot")
	c.OnCacheMiss(ctx, "snapshot")
	c.OnCacheSet(ctx, "artifact", 1024)

	// Session hooks
	s := NoopSessionHooks{}
	s.OnPublish(ctx, "memory", "default", nil)
	s.OnCoalesced(ctx, 3)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "/api/v1/snapshot")
	h.OnResponse(ctx, "GET", "/api/v1/snapshot", 200, time.Second)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Render() should return NoopRenderHooks by default")
	}
	if _, ok := Cache().(NoopCacheHooks); !ok {
		t.Error("Cache() should return NoopCacheHooks by default")
	}
	if _, ok := Session().(NoopSessionHooks); !ok {
		t.Error("Session() should return NoopSessionHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customRender := &testRenderHooks{}
	SetRenderHooks(customRender)
	if Render() != customRender {
		t.Error("SetRenderHooks should set custom hooks")
	}

	customCache := &testCacheHooks{}
	SetCacheHooks(customCache)
	if Cache() != customCache {
		t.Error("SetCacheHooks should set custom hooks")
	}

	customSession := &testSessionHooks{}
	SetSessionHooks(customSession)
	if Session() != customSession {
		t.Error("SetSessionHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Render().(NoopRenderHooks); !ok {
		t.Error("Reset() should restore NoopRenderHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testRenderHooks{}
	SetRenderHooks(custom)

	// Setting nil should be ignored
	SetRenderHooks(nil)

	if Render() != custom {
		t.Error("SetRenderHooks(nil) should be ignored")
	}

	Reset()
}

// Test implementations
type testRenderHooks struct{ NoopRenderHooks }
type testCacheHooks struct{ NoopCacheHooks }
type testSessionHooks struct{ NoopSessionHooks }
type testHTTPHooks struct{ NoopHTTPHooks }
