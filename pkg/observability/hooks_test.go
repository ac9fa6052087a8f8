package observability

import (
	"context"
	"testing"
	"time"
)

func TestNoopHooksDoNotPanic(t *testing.T) {
	ctx := context.Background()

	// Generator hooks
	g := NoopGeneratorHooks{}
	g.OnPageStart(ctx, 1, "front")
	g.OnCellSkipped(ctx, 3)
	g.OnGenerateComplete(ctx, 24, 4, 1, time.Second, nil)

	// HTTP hooks
	h := NoopHTTPHooks{}
	h.OnRequest(ctx, "GET", "www.youtube.com", "/oembed")
	h.OnResponse(ctx, "GET", "www.youtube.com", "/oembed", 200, time.Second)
	h.OnError(ctx, "GET", "www.youtube.com", "/oembed", nil)
}

func TestGlobalHooksRegistry(t *testing.T) {
	// Reset to known state
	Reset()

	// Verify defaults are noop
	if _, ok := Generator().(NoopGeneratorHooks); !ok {
		t.Error("Generator() should return NoopGeneratorHooks by default")
	}
	if _, ok := HTTP().(NoopHTTPHooks); !ok {
		t.Error("HTTP() should return NoopHTTPHooks by default")
	}

	// Set custom hooks
	customGenerator := &testGeneratorHooks{}
	SetGeneratorHooks(customGenerator)
	if Generator() != customGenerator {
		t.Error("SetGeneratorHooks should set custom hooks")
	}

	customHTTP := &testHTTPHooks{}
	SetHTTPHooks(customHTTP)
	if HTTP() != customHTTP {
		t.Error("SetHTTPHooks should set custom hooks")
	}

	// Reset and verify
	Reset()
	if _, ok := Generator().(NoopGeneratorHooks); !ok {
		t.Error("Reset() should restore NoopGeneratorHooks")
	}
}

func TestSetNilHooksIsIgnored(t *testing.T) {
	Reset()

	custom := &testGeneratorHooks{}
	SetGeneratorHooks(custom)
	SetGeneratorHooks(nil)
	if Generator() != custom {
		t.Error("SetGeneratorHooks(nil) should keep previous hooks")
	}
}

func TestCustomHooksReceiveEvents(t *testing.T) {
	Reset()
	defer Reset()

	custom := &testGeneratorHooks{}
	SetGeneratorHooks(custom)

	ctx := context.Background()
	Generator().OnPageStart(ctx, 1, "front")
	Generator().OnPageStart(ctx, 1, "back")
	Generator().OnCellSkipped(ctx, 7)
	Generator().OnGenerateComplete(ctx, 12, 1, 1, time.Millisecond, nil)

	if custom.pageStarts != 2 {
		t.Errorf("pageStarts = %d, want 2", custom.pageStarts)
	}
	if custom.skipped != 1 {
		t.Errorf("skipped = %d, want 1", custom.skipped)
	}
	if custom.completes != 1 {
		t.Errorf("completes = %d, want 1", custom.completes)
	}
}

// testGeneratorHooks counts received events.
type testGeneratorHooks struct {
	pageStarts int
	skipped    int
	completes  int
}

func (h *testGeneratorHooks) OnPageStart(context.Context, int, string) { h.pageStarts++ }
func (h *testGeneratorHooks) OnCellSkipped(context.Context, int)       { h.skipped++ }
func (h *testGeneratorHooks) OnGenerateComplete(context.Context, int, int, int, time.Duration, error) {
	h.completes++
}

// testHTTPHooks is a minimal custom HTTPHooks implementation.
type testHTTPHooks struct{}

func (*testHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (*testHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (*testHTTPHooks) OnError(context.Context, string, string, string, error)                 {}
