// Package observability provides hooks for metrics, tracing, and logging.
//
// Libraries in this module never import a metrics backend directly. They
// emit events through the hook interfaces below, and the binary decides at
// startup what receives them: nothing (the default no-op hooks), the
// Prometheus collectors in this package, or a custom implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    prom := observability.NewPrometheus(prometheus.DefaultRegisterer)
//	    prom.Install()
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	observability.Draw().OnDrawStart(ctx, scope, algorithm)
//	// ... draw regions ...
//	observability.Draw().OnDrawComplete(ctx, scope, features, time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Draw Hooks
// =============================================================================

// DrawHooks receives events from map drawing.
type DrawHooks interface {
	// OnDrawStart is called before the region layer of a new map is drawn.
	OnDrawStart(ctx context.Context, scope, algorithm string)
	// OnDrawComplete is called once the region layer is drawn (or failed).
	OnDrawComplete(ctx context.Context, scope string, features int, duration time.Duration, err error)

	// OnLayer records one plugin layer call with its enter/exit counts.
	OnLayer(ctx context.Context, layer string, entered, exited int, duration time.Duration, err error)

	// OnChoropleth records a choropleth update and how many regions changed.
	OnChoropleth(ctx context.Context, regions int)
}

// =============================================================================
// Cache Hooks
// =============================================================================

// CacheHooks receives events from cache operations.
type CacheHooks interface {
	// OnCacheHit records a cache hit.
	OnCacheHit(ctx context.Context, keyType string)

	// OnCacheMiss records a cache miss.
	OnCacheMiss(ctx context.Context, keyType string)

	// OnCacheSet records a cache write.
	OnCacheSet(ctx context.Context, keyType string, size int)
}

// =============================================================================
// HTTP Hooks
// =============================================================================

// HTTPHooks receives events from HTTP client operations.
type HTTPHooks interface {
	// OnRequest records an outgoing HTTP request.
	OnRequest(ctx context.Context, method, host, path string)

	// OnResponse records an HTTP response.
	OnResponse(ctx context.Context, method, host, path string, statusCode int, duration time.Duration)

	// OnError records an HTTP error (network failure, timeout).
	OnError(ctx context.Context, method, host, path string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopDrawHooks is a no-op implementation of DrawHooks.
type NoopDrawHooks struct{}

func (NoopDrawHooks) OnDrawStart(context.Context, string, string)                       {}
func (NoopDrawHooks) OnDrawComplete(context.Context, string, int, time.Duration, error) {}
func (NoopDrawHooks) OnLayer(context.Context, string, int, int, time.Duration, error)   {}
func (NoopDrawHooks) OnChoropleth(context.Context, int)                                 {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopHTTPHooks is a no-op implementation of HTTPHooks.
type NoopHTTPHooks struct{}

func (NoopHTTPHooks) OnRequest(context.Context, string, string, string)                      {}
func (NoopHTTPHooks) OnResponse(context.Context, string, string, string, int, time.Duration) {}
func (NoopHTTPHooks) OnError(context.Context, string, string, string, error)                 {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	drawHooks  DrawHooks  = NoopDrawHooks{}
	cacheHooks CacheHooks = NoopCacheHooks{}
	httpHooks  HTTPHooks  = NoopHTTPHooks{}
	hooksMu    sync.RWMutex
)

// SetDrawHooks registers custom draw hooks.
// This should be called once at application startup before any map is drawn.
func SetDrawHooks(h DrawHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		drawHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
// This should be called once at application startup before any cache operations.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetHTTPHooks registers custom HTTP hooks.
// This should be called once at application startup before any HTTP operations.
func SetHTTPHooks(h HTTPHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		httpHooks = h
	}
}

// Draw returns the registered draw hooks.
func Draw() DrawHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return drawHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// HTTP returns the registered HTTP hooks.
func HTTP() HTTPHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return httpHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	drawHooks = NoopDrawHooks{}
	cacheHooks = NoopCacheHooks{}
	httpHooks = NoopHTTPHooks{}
}
