// Package search looks for long bad sequences of labeled trees.
//
// A sequence t1, t2, ... is bad when no earlier tree embeds into a later one.
// The [Controller] extends the sequence depth first: every candidate from a
// tree cursor is tested against all current elements on the worker pool, and
// a candidate that no element embeds into is appended before the search
// descends. When a cursor runs dry the last element is removed and its
// parent cursor continues.
//
// With an unbounded cursor the search never finishes and [Controller.Run]
// returns only when its context ends. Setting [Options.MaxSize] makes the
// search space finite.
package search

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeseq/pkg/enum"
	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/observability"
	"github.com/matzehuels/treeseq/pkg/pool"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// Options configures a search.
type Options struct {
	// Labels is the alphabet size n; tree labels are drawn from 1..n.
	Labels int

	// MaxSize bounds candidate tree sizes. Zero means unbounded.
	MaxSize int

	// MaxDepth stops extending a sequence at this length. Zero means
	// unbounded.
	MaxDepth int

	// Resume starts each cursor at the largest cached tree size.
	Resume bool

	// OnBest is called on the control goroutine whenever the best length
	// rises.
	OnBest func(Progress)

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Progress describes a new best sequence.
type Progress struct {
	Length   int
	Sequence []string
	Tested   uint64
	Elapsed  time.Duration
}

// Result is returned when a search ends.
type Result struct {
	Best     int
	Sequence []*tree.Tree
	Tested   uint64
	Elapsed  time.Duration
}

// Submitter is the part of the worker pool the controller uses.
type Submitter interface {
	Submit(pattern, target *tree.Tree) (*pool.Future, error)
}

// Controller runs a backtracking search.
type Controller struct {
	engine *enum.Engine
	pool   Submitter
	opts   Options
	logger *log.Logger

	best    Best
	seq     []*tree.Tree
	bestSeq []*tree.Tree
	tested  uint64
	start   time.Time
}

// New creates a controller. It validates opts but does not start the search.
func New(engine *enum.Engine, p Submitter, opts Options) (*Controller, error) {
	if err := errors.ValidateLabels(opts.Labels); err != nil {
		return nil, err
	}
	if err := errors.ValidateBound("max size", opts.MaxSize); err != nil {
		return nil, err
	}
	if err := errors.ValidateBound("max depth", opts.MaxDepth); err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	return &Controller{engine: engine, pool: p, opts: opts, logger: logger}, nil
}

// Best returns the best length found so far. Only safe to call from the
// goroutine running Run, or after Run returns.
func (c *Controller) Best() int { return c.best.Value() }

// IsValidExtension reports whether candidate can be appended to seq while
// keeping it bad. One embedding test per element is submitted up front; the
// results are then awaited in sequence order and the first embedding found
// ends the wait. Tasks still running are left to finish.
func (c *Controller) IsValidExtension(ctx context.Context, seq []*tree.Tree, candidate *tree.Tree) (bool, error) {
	if len(seq) == 0 {
		return true, nil
	}
	futures := make([]*pool.Future, len(seq))
	for i, s := range seq {
		f, err := c.pool.Submit(s, candidate)
		if err != nil {
			return false, err
		}
		futures[i] = f
	}
	for _, f := range futures {
		embeds, err := f.Wait(ctx)
		if err != nil {
			return false, err
		}
		if embeds {
			return false, nil
		}
	}
	return true, nil
}

// frame is one level of the search: the cursor proposing the next element.
type frame struct {
	cursor *enum.Cursor
}

// Run searches until the space is exhausted, ctx ends, or the engine or pool
// fails. On cancellation the partial result is returned with ctx.Err().
func (c *Controller) Run(ctx context.Context) (Result, error) {
	c.start = time.Now()
	c.seq = c.seq[:0]

	root, err := c.enter(ctx)
	if err != nil {
		return c.result(), err
	}
	stack := []*frame{root}

	for len(stack) > 0 {
		if err := ctx.Err(); err != nil {
			return c.result(), err
		}
		top := stack[len(stack)-1]

		candidate, err := top.cursor.Next(ctx)
		if stderrors.Is(err, enum.ErrExhausted) {
			stack = stack[:len(stack)-1]
			if len(c.seq) > 0 {
				c.seq = c.seq[:len(c.seq)-1]
			}
			continue
		}
		if err != nil {
			return c.result(), fmt.Errorf("next candidate at depth %d: %w", len(c.seq), err)
		}

		c.tested++
		ok, err := c.IsValidExtension(ctx, c.seq, candidate)
		if err != nil {
			return c.result(), fmt.Errorf("test candidate %s: %w", candidate, err)
		}
		observability.Search().OnCandidate(ctx, len(c.seq), ok)
		if !ok {
			continue
		}

		c.seq = append(c.seq, candidate)
		if c.opts.MaxDepth > 0 && len(c.seq) >= c.opts.MaxDepth {
			c.observe(ctx)
			c.seq = c.seq[:len(c.seq)-1]
			continue
		}
		child, err := c.enter(ctx)
		if err != nil {
			return c.result(), err
		}
		stack = append(stack, child)
	}

	res := c.result()
	c.logger.Info("search finished", "best", res.Best, "tested", res.Tested, "elapsed", res.Elapsed.Round(time.Millisecond))
	return res, nil
}

// enter records the current sequence length and opens a frame for its
// extensions.
func (c *Controller) enter(ctx context.Context) (*frame, error) {
	c.observe(ctx)
	cur, err := c.engine.AllTrees(ctx, c.opts.Labels, enum.CursorOptions{
		Resume:  c.opts.Resume,
		MaxSize: c.opts.MaxSize,
	})
	if err != nil {
		return nil, fmt.Errorf("open cursor at depth %d: %w", len(c.seq), err)
	}
	return &frame{cursor: cur}, nil
}

func (c *Controller) observe(ctx context.Context) {
	if !c.best.Observe(len(c.seq)) {
		return
	}
	c.bestSeq = append(c.bestSeq[:0], c.seq...)
	elapsed := time.Since(c.start)

	p := Progress{
		Length:   c.best.Value(),
		Sequence: tree.Keys(c.seq),
		Tested:   c.tested,
		Elapsed:  elapsed,
	}
	c.logger.Info("new best", "length", p.Length, "sequence", p.Sequence, "tested", p.Tested)
	observability.Search().OnBest(ctx, p.Length, elapsed)
	if c.opts.OnBest != nil {
		c.opts.OnBest(p)
	}
}

func (c *Controller) result() Result {
	return Result{
		Best:     c.best.Value(),
		Sequence: append([]*tree.Tree(nil), c.bestSeq...),
		Tested:   c.tested,
		Elapsed:  time.Since(c.start),
	}
}
