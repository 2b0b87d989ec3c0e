// Package observability provides hooks for metrics and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers register hooks at startup to
// receive events about graph edits and storage operations.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// The HTTP server registers Prometheus-backed hooks; the CLI leaves the
// no-op defaults in place.
//
// # Usage
//
// Register hooks at application startup:
//
//	func main() {
//	    observability.SetEditHooks(metrics)
//	    observability.SetStoreHooks(metrics)
//	    // ... run application
//	}
//
// Libraries call hooks to emit events:
//
//	start := time.Now()
//	// ... apply edit ...
//	observability.Edit().OnEdit(ctx, graph, "connect", time.Since(start), err)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Edit Hooks
// =============================================================================

// EditHooks receives events from the editor service.
type EditHooks interface {
	// OnEdit records one completed edit operation (successful or not).
	OnEdit(ctx context.Context, graph, op string, duration time.Duration, err error)

	// OnDenied records a connection refused by the validity engine.
	OnDenied(ctx context.Context, graph, reason string)

	// OnSevered records edges removed as a side effect of a type change.
	OnSevered(ctx context.Context, graph string, count int)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from storage backends.
type StoreHooks interface {
	// OnLoad records a graph load.
	OnLoad(ctx context.Context, backend, graph string, duration time.Duration, err error)

	// OnSave records a graph write of a graph with the given node count.
	OnSave(ctx context.Context, backend, graph string, nodes int, duration time.Duration, err error)

	// OnDelete records a graph removal.
	OnDelete(ctx context.Context, backend, graph string, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditHooks is a no-op implementation of EditHooks.
type NoopEditHooks struct{}

func (NoopEditHooks) OnEdit(context.Context, string, string, time.Duration, error) {}
func (NoopEditHooks) OnDenied(context.Context, string, string)                     {}
func (NoopEditHooks) OnSevered(context.Context, string, int)                       {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnLoad(context.Context, string, string, time.Duration, error) {}
func (NoopStoreHooks) OnSave(context.Context, string, string, int, time.Duration, error) {
}
func (NoopStoreHooks) OnDelete(context.Context, string, string, error) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	editHooks  EditHooks  = NoopEditHooks{}
	storeHooks StoreHooks = NoopStoreHooks{}
	hooksMu    sync.RWMutex
)

// SetEditHooks registers custom edit hooks.
// This should be called once at application startup before any edits.
func SetEditHooks(h EditHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		editHooks = h
	}
}

// SetStoreHooks registers custom store hooks.
// This should be called once at application startup before any store operations.
func SetStoreHooks(h StoreHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		storeHooks = h
	}
}

// Edit returns the registered edit hooks.
func Edit() EditHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return editHooks
}

// Store returns the registered store hooks.
func Store() StoreHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return storeHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	editHooks = NoopEditHooks{}
	storeHooks = NoopStoreHooks{}
}
