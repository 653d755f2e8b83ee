package enum

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/matzehuels/treeseq/pkg/cache"
	"github.com/matzehuels/treeseq/pkg/tree"
)

func drain(t *testing.T, c *Cursor) []*tree.Tree {
	t.Helper()
	var out []*tree.Tree
	for {
		tr, err := c.Next(context.Background())
		if stderrors.Is(err, ErrExhausted) {
			return out
		}
		if err != nil {
			t.Fatalf("Next error: %v", err)
		}
		out = append(out, tr)
	}
}

func TestCursorBounded(t *testing.T) {
	e := NewEngine(nil, nil)
	cur, err := e.AllTrees(context.Background(), 2, CursorOptions{MaxSize: 3})
	if err != nil {
		t.Fatal(err)
	}
	got := drain(t, cur)

	var want []*tree.Tree
	for size := 1; size <= 3; size++ {
		trees, _ := e.TreesOfSize(context.Background(), size, 2)
		want = append(want, trees...)
	}
	if diff := cmp.Diff(tree.Keys(want), tree.Keys(got)); diff != "" {
		t.Errorf("cursor stream (-want +got):\n%s", diff)
	}

	if _, err := cur.Next(context.Background()); !stderrors.Is(err, ErrExhausted) {
		t.Errorf("Next after exhaustion = %v, want ErrExhausted", err)
	}
}

func TestCursorUnboundedAdvancesSize(t *testing.T) {
	cur, err := NewEngine(nil, nil).AllTrees(context.Background(), 1, CursorOptions{})
	if err != nil {
		t.Fatal(err)
	}
	// n=1: one tree of size 1, one of size 2, two of size 3, five of size 4.
	for i := 0; i < 1+1+2; i++ {
		if _, err := cur.Next(context.Background()); err != nil {
			t.Fatal(err)
		}
	}
	if cur.Size() != 3 {
		t.Errorf("Size() = %d, want 3", cur.Size())
	}
	tr, err := cur.Next(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if tr.Size() != 4 || cur.Size() != 4 {
		t.Errorf("expected first size-4 tree, got %s at cursor size %d", tr, cur.Size())
	}
}

func TestCursorResume(t *testing.T) {
	ctx := context.Background()
	e := NewEngine(cache.NewTreeStore(cache.NewMemoryCache(), nil, nil), nil)
	if _, err := e.TreesOfSize(ctx, 3, 2); err != nil {
		t.Fatal(err)
	}

	cur, err := e.AllTrees(ctx, 2, CursorOptions{Resume: true})
	if err != nil {
		t.Fatal(err)
	}
	if cur.Size() != 3 {
		t.Errorf("resumed cursor starts at %d, want 3", cur.Size())
	}
	tr, err := cur.Next(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if tr.Size() != 3 {
		t.Errorf("first resumed tree %s has size %d", tr, tr.Size())
	}

	noResume, err := e.AllTrees(ctx, 2, CursorOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if noResume.Size() != 1 {
		t.Errorf("cursor without resume starts at %d, want 1", noResume.Size())
	}

	clamped, err := e.AllTrees(ctx, 2, CursorOptions{Resume: true, MaxSize: 2})
	if err != nil {
		t.Fatal(err)
	}
	if clamped.Size() != 2 {
		t.Errorf("resume start should clamp to MaxSize, got %d", clamped.Size())
	}
}

func TestCursorResumeEmptyStoreStartsAtOne(t *testing.T) {
	e := NewEngine(cache.NewTreeStore(cache.NewMemoryCache(), nil, nil), nil)
	cur, err := e.AllTrees(context.Background(), 2, CursorOptions{Resume: true})
	if err != nil {
		t.Fatal(err)
	}
	if cur.Size() != 1 {
		t.Errorf("Size() = %d, want 1", cur.Size())
	}
}

func TestAllTreesRejectsBadInput(t *testing.T) {
	e := NewEngine(nil, nil)
	if _, err := e.AllTrees(context.Background(), 0, CursorOptions{}); err == nil {
		t.Error("n=0 should be rejected")
	}
	if _, err := e.AllTrees(context.Background(), 1, CursorOptions{MaxSize: -1}); err == nil {
		t.Error("negative MaxSize should be rejected")
	}
}
