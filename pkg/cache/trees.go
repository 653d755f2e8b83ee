package cache

import (
	"context"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/observability"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// keyTypeTrees labels tree-list operations in cache hooks.
const keyTypeTrees = "trees"

// TreeStore persists the list of all trees of one size over n labels.
type TreeStore struct {
	cache  Cache
	keyer  Keyer
	logger *log.Logger
}

// NewTreeStore wraps c. A nil keyer uses the "trees:" namespace; a nil
// logger uses log.Default().
func NewTreeStore(c Cache, keyer Keyer, logger *log.Logger) *TreeStore {
	if keyer == nil {
		keyer = NewScopedKeyer(NewDefaultKeyer(), DefaultNamespace)
	}
	if logger == nil {
		logger = log.Default()
	}
	return &TreeStore{cache: c, keyer: keyer, logger: logger}
}

// Cache returns the underlying cache.
func (s *TreeStore) Cache() Cache { return s.cache }

// Persistent reports whether writes to the store can be read back. It is
// false for a nil store and for the null backend.
func (s *TreeStore) Persistent() bool {
	if s == nil {
		return false
	}
	_, null := s.cache.(nullCache)
	return !null
}

// Get loads the trees stored for (size, n). An entry that fails to decode,
// or holds a tree of another size or with a label outside 1..n, is logged and
// reported as a miss so the caller recomputes and overwrites it.
func (s *TreeStore) Get(ctx context.Context, size, n int) ([]*tree.Tree, bool, error) {
	key := s.keyer.TreesKey(size, n)
	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeCache, err, "read %s", key)
	}
	if !ok {
		observability.Cache().OnCacheMiss(ctx, keyTypeTrees)
		return nil, false, nil
	}
	trees, err := tree.UnmarshalList(data)
	if err != nil {
		s.logger.Warn("discarding undecodable cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, keyTypeTrees)
		return nil, false, nil
	}
	if err := checkTrees(trees, size, n); err != nil {
		s.logger.Warn("discarding mismatched cache entry", "key", key, "error", err)
		observability.Cache().OnCacheMiss(ctx, keyTypeTrees)
		return nil, false, nil
	}
	observability.Cache().OnCacheHit(ctx, keyTypeTrees)
	return trees, true, nil
}

func checkTrees(trees []*tree.Tree, size, n int) error {
	if len(trees) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "empty tree list")
	}
	for _, t := range trees {
		if t.Size() != size {
			return errors.New(errors.ErrCodeInvalidInput, "tree %s has size %d, want %d", t, t.Size(), size)
		}
		if err := t.Validate(n); err != nil {
			return err
		}
	}
	return nil
}

// Put stores the trees for (size, n) without expiry.
func (s *TreeStore) Put(ctx context.Context, size, n int, trees []*tree.Tree) error {
	key := s.keyer.TreesKey(size, n)
	data, err := tree.MarshalList(trees)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "encode %s", key)
	}
	if err := s.cache.Set(ctx, key, data, NoExpiry); err != nil {
		return errors.Wrap(errors.ErrCodeCache, err, "write %s", key)
	}
	observability.Cache().OnCacheSet(ctx, keyTypeTrees, len(data))
	return nil
}

// MaxCachedSize returns the largest size stored for n, or 0 when none is
// stored or the backend cannot list its keys.
func (s *TreeStore) MaxCachedSize(ctx context.Context, n int) (int, error) {
	keys, ok, err := s.keys(ctx)
	if err != nil || !ok {
		return 0, err
	}
	best := 0
	for _, k := range keys {
		size, kn, ok := s.keyer.ParseTreesKey(k)
		if ok && kn == n && size > best {
			best = size
		}
	}
	return best, nil
}

// Entry identifies one stored tree list.
type Entry struct {
	Size   int
	Labels int
	Key    string
}

// Entries lists every tree list in the store's namespace. ok is false when
// the backend cannot list its keys.
func (s *TreeStore) Entries(ctx context.Context) ([]Entry, bool, error) {
	keys, ok, err := s.keys(ctx)
	if err != nil || !ok {
		return nil, ok, err
	}
	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		if size, n, ok := s.keyer.ParseTreesKey(k); ok {
			entries = append(entries, Entry{Size: size, Labels: n, Key: k})
		}
	}
	return entries, true, nil
}

// Clear deletes every tree list in the store's namespace and returns how many
// were removed.
func (s *TreeStore) Clear(ctx context.Context) (int, error) {
	entries, ok, err := s.Entries(ctx)
	if err != nil {
		return 0, err
	}
	if !ok {
		return 0, errors.New(errors.ErrCodeUnsupported, "cache backend cannot list keys")
	}
	for i, e := range entries {
		if err := s.cache.Delete(ctx, e.Key); err != nil {
			return i, errors.Wrap(errors.ErrCodeCache, err, "delete %s", e.Key)
		}
	}
	return len(entries), nil
}

func (s *TreeStore) keys(ctx context.Context) ([]string, bool, error) {
	sc, ok := s.cache.(Scanner)
	if !ok {
		return nil, false, nil
	}
	keys, err := sc.Keys(ctx, s.keyer.Prefix())
	if err != nil {
		return nil, true, errors.Wrap(errors.ErrCodeCache, err, "list cached trees")
	}
	return keys, true, nil
}
