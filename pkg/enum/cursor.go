package enum

import (
	"context"
	stderrors "errors"

	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// ErrExhausted is returned by [Cursor.Next] once a bounded cursor has yielded
// every tree up to its maximum size.
var ErrExhausted = stderrors.New("enum: cursor exhausted")

// CursorOptions configures [Engine.AllTrees].
type CursorOptions struct {
	// Resume starts at the largest size already stored for n instead of 1.
	Resume bool

	// MaxSize stops the cursor after the last tree of this size.
	// Zero means the cursor never ends.
	MaxSize int
}

// Cursor yields every tree over n labels in order of increasing size, pulling
// each size from the engine only when the previous one is used up.
type Cursor struct {
	engine  *Engine
	n       int
	maxSize int

	size  int
	index int
	trees []*tree.Tree
}

// AllTrees returns a cursor over all trees with labels in 1..n.
//
// With opts.Resume the first size is max(1, Resume(n)), clamped to
// opts.MaxSize when that is set.
func (e *Engine) AllTrees(ctx context.Context, n int, opts CursorOptions) (*Cursor, error) {
	if err := errors.ValidateLabels(n); err != nil {
		return nil, err
	}
	if err := errors.ValidateBound("max size", opts.MaxSize); err != nil {
		return nil, err
	}

	start := 1
	if opts.Resume {
		stored, err := e.Resume(ctx, n)
		if err != nil {
			return nil, err
		}
		start = max(start, stored)
		if opts.MaxSize > 0 {
			start = min(start, opts.MaxSize)
		}
	}
	return &Cursor{engine: e, n: n, maxSize: opts.MaxSize, size: start}, nil
}

// Next returns the next tree. Engine errors are returned as is and leave the
// cursor positioned to retry the same size.
func (c *Cursor) Next(ctx context.Context) (*tree.Tree, error) {
	for c.trees == nil || c.index >= len(c.trees) {
		if c.trees != nil {
			c.size++
			c.index = 0
			c.trees = nil
		}
		if c.maxSize > 0 && c.size > c.maxSize {
			return nil, ErrExhausted
		}
		trees, err := c.engine.TreesOfSize(ctx, c.size, c.n)
		if err != nil {
			return nil, err
		}
		c.trees = trees
	}
	t := c.trees[c.index]
	c.index++
	return t, nil
}

// Size reports the size of the trees currently being yielded.
func (c *Cursor) Size() int { return c.size }

// Labels reports the label count n.
func (c *Cursor) Labels() int { return c.n }
