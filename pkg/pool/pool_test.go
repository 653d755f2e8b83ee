package pool

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/observability"
	"github.com/matzehuels/treeseq/pkg/tree"
)

func TestSubmitMatchesDirectEvaluation(t *testing.T) {
	p := New(Config{Workers: 2})
	defer p.Terminate()

	trees := []*tree.Tree{
		tree.MustParse("1"), tree.MustParse("2"), tree.MustParse("1(2)"),
		tree.MustParse("1(3,2)"), tree.MustParse("1(2,3)"), tree.MustParse("3(1(2))"),
	}
	type pair struct{ a, b *tree.Tree }
	var pairs []pair
	var futures []*Future
	for _, a := range trees {
		for _, b := range trees {
			f, err := p.Submit(a, b)
			require.NoError(t, err)
			pairs = append(pairs, pair{a, b})
			futures = append(futures, f)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	// Await in reverse to make sure results are routed by id, not by order.
	for i := len(futures) - 1; i >= 0; i-- {
		got, err := futures[i].Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, tree.Embeds(pairs[i].a, pairs[i].b), got, "Embeds(%s, %s)", pairs[i].a, pairs[i].b)
	}

	s := p.Stats()
	assert.Equal(t, uint64(len(futures)), s.Submitted)
	assert.Equal(t, uint64(len(futures)), s.Completed)
	assert.Zero(t, s.Failed)
}

func TestIDsStartAtOneAndIncrease(t *testing.T) {
	p := New(Config{Workers: 1})
	defer p.Terminate()

	leaf := tree.Leaf(1)
	for want := uint64(1); want <= 5; want++ {
		f, err := p.Submit(leaf, leaf)
		require.NoError(t, err)
		assert.Equal(t, want, f.ID())
	}
}

func TestDefaultWorkers(t *testing.T) {
	p := New(Config{})
	defer p.Terminate()
	assert.Positive(t, p.Stats().Workers)
}

func TestMoreTasksThanWorkers(t *testing.T) {
	var mu sync.Mutex
	active, peak := 0, 0
	eval := func(a, b *tree.Tree) bool {
		mu.Lock()
		active++
		peak = max(peak, active)
		mu.Unlock()
		time.Sleep(time.Millisecond)
		mu.Lock()
		active--
		mu.Unlock()
		return a.Label() == b.Label()
	}

	p := New(Config{Workers: 3, Eval: eval})
	defer p.Terminate()

	const k = 20
	futures := make([]*Future, k)
	for i := range futures {
		f, err := p.Submit(tree.Leaf(i%2+1), tree.Leaf(1))
		require.NoError(t, err)
		futures[i] = f
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	for i, f := range futures {
		got, err := f.Wait(ctx)
		require.NoError(t, err)
		assert.Equal(t, i%2 == 0, got)
	}
	assert.LessOrEqual(t, peak, 3)
}

type failureRecorder struct {
	observability.NoopPoolHooks
	mu  sync.Mutex
	ids []uint64
}

func (r *failureRecorder) OnWorkerFailure(_ context.Context, id uint64, _ error) {
	r.mu.Lock()
	r.ids = append(r.ids, id)
	r.mu.Unlock()
}

func (r *failureRecorder) failures() []uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]uint64(nil), r.ids...)
}

func TestPanickingEvalNeverResolves(t *testing.T) {
	rec := &failureRecorder{}
	observability.SetPoolHooks(rec)
	defer observability.Reset()

	eval := func(a, b *tree.Tree) bool {
		if a.Label() == 9 {
			panic("bad pattern")
		}
		return true
	}
	p := New(Config{Workers: 1, Eval: eval})
	defer p.Terminate()

	bad, err := p.Submit(tree.Leaf(9), tree.Leaf(1))
	require.NoError(t, err)
	good, err := p.Submit(tree.Leaf(1), tree.Leaf(1))
	require.NoError(t, err)

	// The worker survives the panic and serves the next task.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	got, err := good.Wait(ctx)
	require.NoError(t, err)
	assert.True(t, got)

	short, cancelShort := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancelShort()
	_, err = bad.Wait(short)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	select {
	case <-bad.Done():
		t.Fatal("failed task must not resolve")
	default:
	}

	assert.Equal(t, []uint64{bad.ID()}, rec.failures())
	assert.Equal(t, uint64(1), p.Stats().Failed)
}

func TestSubmitAfterTerminate(t *testing.T) {
	p := New(Config{Workers: 1})
	p.Terminate()
	p.Terminate() // idempotent

	_, err := p.Submit(tree.Leaf(1), tree.Leaf(1))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodePoolClosed))
}

func TestTerminateDropsQueuedTasks(t *testing.T) {
	release := make(chan struct{})
	eval := func(a, b *tree.Tree) bool {
		<-release
		return true
	}
	p := New(Config{Workers: 1, Eval: eval})

	first, err := p.Submit(tree.Leaf(1), tree.Leaf(1))
	require.NoError(t, err)
	queued, err := p.Submit(tree.Leaf(1), tree.Leaf(1))
	require.NoError(t, err)

	go func() {
		time.Sleep(10 * time.Millisecond)
		close(release)
	}()
	p.Terminate()

	for _, f := range []*Future{first, queued} {
		select {
		case <-f.Done():
			t.Errorf("task %d resolved after terminate", f.ID())
		default:
		}
	}
}

func TestWaitHonoursContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	p := New(Config{Workers: 1, Eval: func(a, b *tree.Tree) bool { <-block; return true }})
	defer func() {
		go p.Terminate()
	}()

	f, err := p.Submit(tree.Leaf(1), tree.Leaf(1))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
