package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	treeerrors "github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/tree"
)

func TestTreeStoreRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := NewTreeStore(NewMemoryCache(), nil, nil)

	trees := []*tree.Tree{tree.MustParse("1(1)"), tree.MustParse("1(2)"), tree.MustParse("2(1)"), tree.MustParse("2(2)")}
	require.NoError(t, store.Put(ctx, 2, 2, trees))

	got, ok, err := store.Get(ctx, 2, 2)
	require.NoError(t, err)
	require.True(t, ok)
	if diff := cmp.Diff(tree.Keys(trees), tree.Keys(got)); diff != "" {
		t.Errorf("trees mismatch (-want +got):\n%s", diff)
	}

	_, ok, err = store.Get(ctx, 3, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTreeStoreUsesNamespace(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	store := NewTreeStore(mem, nil, nil)
	require.NoError(t, store.Put(ctx, 1, 3, []*tree.Tree{tree.Leaf(1), tree.Leaf(2), tree.Leaf(3)}))

	_, hit, err := mem.Get(ctx, "trees:1:3")
	require.NoError(t, err)
	assert.True(t, hit)
}

func TestTreeStoreMaxCachedSize(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	store := NewTreeStore(mem, nil, nil)

	size, err := store.MaxCachedSize(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	for _, s := range []int{1, 2, 4} {
		require.NoError(t, store.Put(ctx, s, 2, nil))
	}
	require.NoError(t, store.Put(ctx, 7, 3, nil))
	require.NoError(t, mem.Set(ctx, "unrelated", []byte("x"), NoExpiry))

	size, err = store.MaxCachedSize(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, 4, size)

	size, err = store.MaxCachedSize(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 7, size)
}

// blindCache is a Cache without the Scanner capability.
type blindCache struct{ Cache }

func TestTreeStoreMaxCachedSizeWithoutScanner(t *testing.T) {
	store := NewTreeStore(blindCache{NewMemoryCache()}, nil, nil)
	size, err := store.MaxCachedSize(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, 0, size)

	_, err = store.Clear(context.Background())
	assert.True(t, treeerrors.Is(err, treeerrors.ErrCodeUnsupported))
}

func TestTreeStoreUndecodableEntryIsMiss(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	store := NewTreeStore(mem, nil, nil)
	require.NoError(t, mem.Set(ctx, "trees:2:2", []byte("garbage"), NoExpiry))

	_, ok, err := store.Get(ctx, 2, 2)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestTreeStoreMismatchedEntryIsMiss(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "wrong size", data: `[{"label":1}]`},
		{name: "label out of range", data: `[{"label":1,"children":[{"label":3}]}]`},
		{name: "mixed sizes", data: `[{"label":1,"children":[{"label":2}]},{"label":2}]`},
		{name: "empty list", data: `[]`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			mem := NewMemoryCache()
			store := NewTreeStore(mem, nil, nil)
			require.NoError(t, mem.Set(ctx, "trees:2:2", []byte(tt.data), NoExpiry))

			_, ok, err := store.Get(ctx, 2, 2)
			require.NoError(t, err)
			assert.False(t, ok)
		})
	}
}

func TestTreeStorePersistent(t *testing.T) {
	var nilStore *TreeStore
	assert.False(t, nilStore.Persistent())
	assert.False(t, NewTreeStore(NewNullCache(), nil, nil).Persistent())
	assert.True(t, NewTreeStore(NewMemoryCache(), nil, nil).Persistent())
}

// failingCache fails every operation.
type failingCache struct{}

var errDisk = errors.New("disk on fire")

func (failingCache) Get(context.Context, string) ([]byte, bool, error) { return nil, false, errDisk }
func (failingCache) Set(context.Context, string, []byte, time.Duration) error {
	return errDisk
}
func (failingCache) Delete(context.Context, string) error { return errDisk }
func (failingCache) Keys(context.Context, string) ([]string, error) {
	return nil, errDisk
}
func (failingCache) Close() error { return nil }

func TestTreeStorePropagatesErrors(t *testing.T) {
	ctx := context.Background()
	store := NewTreeStore(failingCache{}, nil, nil)

	_, _, err := store.Get(ctx, 1, 1)
	assert.True(t, treeerrors.Is(err, treeerrors.ErrCodeCache))
	assert.ErrorIs(t, err, errDisk)

	err = store.Put(ctx, 1, 1, []*tree.Tree{tree.Leaf(1)})
	assert.True(t, treeerrors.Is(err, treeerrors.ErrCodeCache))

	_, err = store.MaxCachedSize(ctx, 1)
	assert.True(t, treeerrors.Is(err, treeerrors.ErrCodeCache))
}

func TestTreeStoreClear(t *testing.T) {
	ctx := context.Background()
	mem := NewMemoryCache()
	store := NewTreeStore(mem, nil, nil)
	require.NoError(t, store.Put(ctx, 1, 1, []*tree.Tree{tree.Leaf(1)}))
	require.NoError(t, store.Put(ctx, 2, 1, []*tree.Tree{tree.MustParse("1(1)")}))
	require.NoError(t, mem.Set(ctx, "keep", []byte("x"), NoExpiry))

	entries, ok, err := store.Entries(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Len(t, entries, 2)

	n, err := store.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 1, mem.Len())
}
