package enum

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"github.com/matzehuels/treeseq/pkg/cache"
	"github.com/matzehuels/treeseq/pkg/combin"
	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/observability"
	"github.com/matzehuels/treeseq/pkg/tree"
)

type sizeKey struct {
	size, n int
}

// Engine produces and memoizes tree lists. It is safe for concurrent use;
// concurrent requests for the same (size, n) share one computation.
//
// Returned slices are shared between callers and must not be modified.
type Engine struct {
	store      *cache.TreeStore
	persistent bool
	logger     *log.Logger

	mu      sync.RWMutex
	memo    map[sizeKey][]*tree.Tree
	maxSize map[int]int // largest size known to be stored, per n
	scanned map[int]bool
	group   singleflight.Group
}

// NewEngine creates an engine backed by store. A nil store disables
// persistence; a nil logger uses log.Default(). A store that does not persist
// (the null backend) is still consulted but never counts as holding a size.
func NewEngine(store *cache.TreeStore, logger *log.Logger) *Engine {
	if logger == nil {
		logger = log.Default()
	}
	return &Engine{
		store:      store,
		persistent: store.Persistent(),
		logger:     logger,
		memo:       make(map[sizeKey][]*tree.Tree),
		maxSize:    make(map[int]int),
		scanned:    make(map[int]bool),
	}
}

// TreesOfSize returns every tree with exactly size nodes and labels in 1..n,
// without duplicates, in a deterministic order.
//
// Store failures are returned as CACHE_ERROR; an empty list is never
// substituted for a failed read.
func (e *Engine) TreesOfSize(ctx context.Context, size, n int) ([]*tree.Tree, error) {
	if err := errors.ValidateSize(size); err != nil {
		return nil, err
	}
	if err := errors.ValidateLabels(n); err != nil {
		return nil, err
	}
	return e.treesOfSize(ctx, size, n)
}

func (e *Engine) treesOfSize(ctx context.Context, size, n int) ([]*tree.Tree, error) {
	k := sizeKey{size, n}
	if trees, ok := e.memoized(k); ok {
		return trees, nil
	}

	v, err, _ := e.group.Do(strconv.Itoa(size)+":"+strconv.Itoa(n), func() (any, error) {
		if trees, ok := e.memoized(k); ok {
			return trees, nil
		}
		return e.load(ctx, k)
	})
	if err != nil {
		return nil, err
	}
	return v.([]*tree.Tree), nil
}

func (e *Engine) memoized(k sizeKey) ([]*tree.Tree, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	trees, ok := e.memo[k]
	return trees, ok
}

// load consults the store, computing and persisting on a miss.
func (e *Engine) load(ctx context.Context, k sizeKey) ([]*tree.Tree, error) {
	start := time.Now()

	if e.store != nil {
		trees, hit, err := e.store.Get(ctx, k.size, k.n)
		if err != nil {
			return nil, err
		}
		if hit {
			e.remember(k, trees)
			observability.Enum().OnSizeEnumerated(ctx, k.size, k.n, len(trees), true, time.Since(start))
			e.logger.Debug("loaded trees from cache", "size", k.size, "labels", k.n, "count", len(trees))
			return trees, nil
		}
	}

	trees, err := e.build(ctx, k)
	if err != nil {
		return nil, err
	}

	if e.store != nil {
		if err := e.store.Put(ctx, k.size, k.n, trees); err != nil {
			return nil, err
		}
	}
	e.remember(k, trees)

	elapsed := time.Since(start)
	observability.Enum().OnSizeEnumerated(ctx, k.size, k.n, len(trees), false, elapsed)
	e.logger.Debug("enumerated trees", "size", k.size, "labels", k.n, "count", len(trees), "duration", elapsed)
	return trees, nil
}

func (e *Engine) remember(k sizeKey, trees []*tree.Tree) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.memo[k] = trees
	if e.persistent && k.size > e.maxSize[k.n] {
		e.maxSize[k.n] = k.size
	}
}

// build enumerates the trees for k from the lists of smaller sizes.
func (e *Engine) build(ctx context.Context, k sizeKey) ([]*tree.Tree, error) {
	if k.size == 1 {
		leaves := make([]*tree.Tree, k.n)
		for i := range leaves {
			leaves[i] = tree.Leaf(i + 1)
		}
		return leaves, nil
	}

	// Child-list combinations depend only on the composition, not on the
	// root label, so they are computed once per composition.
	var forests [][]*tree.Tree
	for parts := range combin.EachComposition(k.size - 1) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lists := make([][]*tree.Tree, len(parts))
		for i, p := range parts {
			sub, err := e.treesOfSize(ctx, p, k.n)
			if err != nil {
				return nil, err
			}
			lists[i] = sub
		}
		forests = append(forests, combin.Cartesian(lists)...)
	}

	seen := tree.NewSet(k.n * len(forests))
	for label := 1; label <= k.n; label++ {
		for _, kids := range forests {
			seen.Add(tree.New(label, kids...))
		}
	}
	return seen.Trees(), nil
}

// Resume returns the largest size stored for n, or 0 if none. The store is
// scanned once per n; later sizes written by this engine are tracked in
// memory.
func (e *Engine) Resume(ctx context.Context, n int) (int, error) {
	if !e.persistent {
		return 0, nil
	}

	e.mu.RLock()
	known, scanned := e.maxSize[n], e.scanned[n]
	e.mu.RUnlock()
	if scanned {
		return known, nil
	}

	stored, err := e.store.MaxCachedSize(ctx, n)
	if err != nil {
		return 0, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.scanned[n] = true
	if stored > e.maxSize[n] {
		e.maxSize[n] = stored
	}
	return e.maxSize[n], nil
}
