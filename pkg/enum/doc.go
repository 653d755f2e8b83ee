// Package enum enumerates every labeled rooted tree of a given size.
//
// [Engine.TreesOfSize] builds the trees of size s over labels 1..n from the
// trees of smaller sizes: for each root label and each composition of s-1
// into child sizes, the Cartesian product of the per-part tree lists gives
// the ordered child lists. Results are memoized in process and persisted to
// a [cache.TreeStore] so later runs start where earlier ones stopped.
//
// A [Cursor] walks sizes 1, 2, 3, ... lazily and is the source of candidate
// trees for the search:
//
//	cur, err := engine.AllTrees(ctx, n, enum.CursorOptions{Resume: true})
//	for {
//		t, err := cur.Next(ctx)
//		if errors.Is(err, enum.ErrExhausted) {
//			break
//		}
//		...
//	}
package enum
