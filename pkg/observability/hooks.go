// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard
// dependencies on a specific backend to the core packages. Consumers register
// hooks at startup to receive events about the search, the worker pool, the
// tree cache and the enumerator.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Allow registration of custom implementations at startup
//
// [Metrics] is the bundled Prometheus implementation.
//
// # Usage
//
// Register hooks at application startup:
//
//	m := observability.NewMetrics()
//	observability.SetSearchHooks(m)
//	observability.SetPoolHooks(m)
//	observability.SetCacheHooks(m)
//	observability.SetEnumHooks(m)
//
// Libraries call hooks to emit events:
//
//	observability.Search().OnBest(ctx, length, elapsed)
package observability

import (
	"context"
	"sync"
	"time"
)

// =============================================================================
// Search Hooks
// =============================================================================

// SearchHooks receives events from the backtracking search.
type SearchHooks interface {
	// OnBest records a new longest bad sequence.
	OnBest(ctx context.Context, length int, elapsed time.Duration)

	// OnCandidate records one candidate tree checked against the sequence.
	OnCandidate(ctx context.Context, depth int, accepted bool)
}

// =============================================================================
// Pool Hooks
// =============================================================================

// PoolHooks receives events from the embedding worker pool.
type PoolHooks interface {
	// OnSubmit records a task entering the queue.
	OnSubmit(ctx context.Context, queued int)

	// OnComplete records a finished task and how long it took to evaluate.
	OnComplete(ctx context.Context, result bool, duration time.Duration)

	// OnWorkerFailure records a task whose evaluation panicked.
	OnWorkerFailure(ctx context.Context, taskID uint64, err error)
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
// Enumeration Hooks
// =============================================================================

// EnumHooks receives events from the tree enumerator.
type EnumHooks interface {
	// OnSizeEnumerated records that all trees of one size were produced.
	OnSizeEnumerated(ctx context.Context, size, labels, count int, cached bool, duration time.Duration)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopSearchHooks is a no-op implementation of SearchHooks.
type NoopSearchHooks struct{}

func (NoopSearchHooks) OnBest(context.Context, int, time.Duration) {}
func (NoopSearchHooks) OnCandidate(context.Context, int, bool)     {}

// NoopPoolHooks is a no-op implementation of PoolHooks.
type NoopPoolHooks struct{}

func (NoopPoolHooks) OnSubmit(context.Context, int)                   {}
func (NoopPoolHooks) OnComplete(context.Context, bool, time.Duration) {}
func (NoopPoolHooks) OnWorkerFailure(context.Context, uint64, error)  {}

// NoopCacheHooks is a no-op implementation of CacheHooks.
type NoopCacheHooks struct{}

func (NoopCacheHooks) OnCacheHit(context.Context, string)      {}
func (NoopCacheHooks) OnCacheMiss(context.Context, string)     {}
func (NoopCacheHooks) OnCacheSet(context.Context, string, int) {}

// NoopEnumHooks is a no-op implementation of EnumHooks.
type NoopEnumHooks struct{}

func (NoopEnumHooks) OnSizeEnumerated(context.Context, int, int, int, bool, time.Duration) {}

// =============================================================================
// Global Hook Registry
// =============================================================================

var (
	searchHooks SearchHooks = NoopSearchHooks{}
	poolHooks   PoolHooks   = NoopPoolHooks{}
	cacheHooks  CacheHooks  = NoopCacheHooks{}
	enumHooks   EnumHooks   = NoopEnumHooks{}
	hooksMu     sync.RWMutex
)

// SetSearchHooks registers custom search hooks.
// This should be called once at application startup before the search starts.
func SetSearchHooks(h SearchHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		searchHooks = h
	}
}

// SetPoolHooks registers custom pool hooks.
func SetPoolHooks(h PoolHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		poolHooks = h
	}
}

// SetCacheHooks registers custom cache hooks.
func SetCacheHooks(h CacheHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		cacheHooks = h
	}
}

// SetEnumHooks registers custom enumeration hooks.
func SetEnumHooks(h EnumHooks) {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	if h != nil {
		enumHooks = h
	}
}

// Search returns the registered search hooks.
func Search() SearchHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return searchHooks
}

// Pool returns the registered pool hooks.
func Pool() PoolHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return poolHooks
}

// Cache returns the registered cache hooks.
func Cache() CacheHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return cacheHooks
}

// Enum returns the registered enumeration hooks.
func Enum() EnumHooks {
	hooksMu.RLock()
	defer hooksMu.RUnlock()
	return enumHooks
}

// Reset restores all hooks to their no-op defaults.
// This is primarily useful for testing.
func Reset() {
	hooksMu.Lock()
	defer hooksMu.Unlock()
	searchHooks = NoopSearchHooks{}
	poolHooks = NoopPoolHooks{}
	cacheHooks = NoopCacheHooks{}
	enumHooks = NoopEnumHooks{}
}
