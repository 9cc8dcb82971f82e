// Package observability carries pipeline, cache and HTTP events to whatever
// the binary wants to record them with.
//
// Every hook defaults to a no-op, so pkg/pipeline and pkg/cache never import
// a metrics library. The HTTP server installs its Prometheus collector at
// startup:
//
//	restore := observability.Install(observability.Hooks{
//	    Pipeline: metrics,
//	    Cache:    metrics,
//	    HTTP:     metrics,
//	})
//	defer restore()
//
// and the pipeline reports through the accessors:
//
//	observability.Pipeline().OnParseStart(ctx, "debruijn", len(expr))
//	observability.Cache().OnCacheHit(ctx, observability.KeyLayout)
package observability

import (
	"context"
	"sync"
	"time"
)

// Cache key kinds passed to [CacheHooks].
const (
	KeyLayout   = "layout"
	KeyArtifact = "artifact"
)

// =============================================================================
// Hook interfaces
// =============================================================================

// PipelineHooks receives one start and one complete event per stage.
// vizType is "tromp" or "tree"; termSize counts term nodes.
type PipelineHooks interface {
	OnParseStart(ctx context.Context, notation string, inputBytes int)
	OnParseComplete(ctx context.Context, notation string, termSize int, duration time.Duration, err error)
	OnLayoutStart(ctx context.Context, vizType string, termSize int)
	OnLayoutComplete(ctx context.Context, vizType string, duration time.Duration, err error)
	OnRenderStart(ctx context.Context, formats []string)
	OnRenderComplete(ctx context.Context, formats []string, duration time.Duration, err error)
}

// CacheHooks receives lookups and writes made by the pipeline runner.
// keyType is [KeyLayout] or [KeyArtifact].
type CacheHooks interface {
	OnCacheHit(ctx context.Context, keyType string)
	OnCacheMiss(ctx context.Context, keyType string)
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// HTTPHooks receives server traffic. route is the matched route pattern
// (for example "/v1/render.{format}"), not the raw path.
type HTTPHooks interface {
	OnRequest(ctx context.Context, method, route string)
	OnResponse(ctx context.Context, method, route string, statusCode int, duration time.Duration)
	OnError(ctx context.Context, method, route string, err error)
}

// =============================================================================
// No-op implementations
// =============================================================================

type NoopPipelineHooks struct{}

func (NoopPipelineHooks) OnParseStart(context.Context, string, int)                          {}
func (NoopPipelineHooks) OnParseComplete(context.Context, string, int, time.Duration, error) {}
func (NoopPipelineHooks) OnLayoutStart(context.Context, string, int)                         {}
func (NoopPipelineHooks) OnLayoutComplete(context.Context, string, time.Duration, error)     {}
func (NoopPipelineHooks) OnRenderStart(context.Context, []string)                            {}
func (NoopPipelineHooks) OnRenderComplete(context.Context, []string, time.Duration, error)   {}

type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, error)                 {}

// =============================================================================
// Registry
// =============================================================================

// Hooks bundles one implementation per event family. Nil fields leave the
// current registration in place.
type Hooks struct {
	Pipeline PipelineHooks
	Cache    CacheHooks
	HTTP     HTTPHooks
}

func noop() Hooks {
	return Hooks{Pipeline: NoopPipelineHooks{}, Cache: NoopCacheHooks{}, HTTP: NoopHTTPHooks{}}
}

var (
	mu      sync.RWMutex
	current = noop()
)

// Install registers the non-nil hooks in h and returns a function that
// puts back whatever was registered before.
func Install(h Hooks) (restore func()) {
	mu.Lock()
	defer mu.Unlock()
	prev := current
	if h.Pipeline != nil {
		current.Pipeline = h.Pipeline
	}
	if h.Cache != nil {
		current.Cache = h.Cache
	}
	if h.HTTP != nil {
		current.HTTP = h.HTTP
	}
	return func() {
		mu.Lock()
		defer mu.Unlock()
		current = prev
	}
}

// SetPipelineHooks registers h; nil is ignored.
func SetPipelineHooks(h PipelineHooks) { Install(Hooks{Pipeline: h}) }

// SetCacheHooks registers h; nil is ignored.
func SetCacheHooks(h CacheHooks) { Install(Hooks{Cache: h}) }

// SetHTTPHooks registers h; nil is ignored.
func SetHTTPHooks(h HTTPHooks) { Install(Hooks{HTTP: h}) }

func Pipeline() PipelineHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.Pipeline
}

func Cache() CacheHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.Cache
}

func HTTP() HTTPHooks {
	mu.RLock()
	defer mu.RUnlock()
	return current.HTTP
}

// Reset restores the no-op hooks.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	current = noop()
}
