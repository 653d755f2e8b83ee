// Package pool runs embedding tests on a fixed set of worker goroutines.
//
// A single dispatcher goroutine owns the idle-worker set, the FIFO task queue
// and the table of pending futures. Whenever a worker is idle and a task is
// queued, the two are paired; the worker's response is routed back to the
// task's [Future] by id.
//
//	p := pool.New(pool.Config{Workers: 4})
//	defer p.Terminate()
//
//	f, err := p.Submit(pattern, target)
//	if err != nil {
//		return err
//	}
//	embeds, err := f.Wait(ctx)
//
// Tasks are never cancelled. A task whose evaluation panics is logged and
// reported through [observability.PoolHooks]; its future is never resolved.
package pool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/treeseq/pkg/errors"
	"github.com/matzehuels/treeseq/pkg/observability"
	"github.com/matzehuels/treeseq/pkg/tree"
)

// EvalFunc decides one task. It must be safe for concurrent use.
type EvalFunc func(pattern, target *tree.Tree) bool

// Config configures a Pool.
type Config struct {
	// Workers is the number of worker goroutines. Zero or negative uses
	// runtime.NumCPU().
	Workers int

	// Eval evaluates each task. Nil uses tree.Embeds.
	Eval EvalFunc

	// Logger receives worker failures. Nil uses log.Default().
	Logger *log.Logger
}

// Request is the message sent to a worker.
type Request struct {
	ID      uint64
	Pattern *tree.Tree
	Target  *tree.Tree
}

// Response is the message a worker sends back.
type Response struct {
	ID     uint64
	Result bool
}

// Stats is a snapshot of pool counters.
type Stats struct {
	Workers   int
	Submitted uint64
	Completed uint64
	Failed    uint64
	Queued    int
	Idle      int
}

// Future is a one-shot handle on a task's result.
type Future struct {
	id     uint64
	done   chan struct{}
	result bool
}

// ID returns the task id.
func (f *Future) ID() uint64 { return f.id }

// Done is closed when the result is available.
func (f *Future) Done() <-chan struct{} { return f.done }

// Wait blocks until the result is available or ctx ends. Ending ctx does not
// cancel the task.
func (f *Future) Wait(ctx context.Context) (bool, error) {
	select {
	case <-f.done:
		return f.result, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}

func (f *Future) resolve(result bool) {
	f.result = result
	close(f.done)
}

type task struct {
	req    Request
	future *Future
}

type outcome struct {
	worker   int
	resp     Response
	duration time.Duration
	failure  error
}

// Pool is a fixed-size worker pool for embedding tests.
type Pool struct {
	eval    EvalFunc
	logger  *log.Logger
	workers int

	submit  chan *task
	results chan outcome
	inboxes []chan Request
	quit    chan struct{}
	stopped chan struct{}
	once    sync.Once
	wg      sync.WaitGroup

	nextID    atomic.Uint64
	submitted atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	queued    atomic.Int64
	idle      atomic.Int64
}

// New starts the dispatcher and the workers.
func New(cfg Config) *Pool {
	workers := cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	eval := cfg.Eval
	if eval == nil {
		eval = tree.Embeds
	}
	logger := cfg.Logger
	if logger == nil {
		logger = log.Default()
	}

	p := &Pool{
		eval:    eval,
		logger:  logger,
		workers: workers,
		submit:  make(chan *task),
		results: make(chan outcome),
		inboxes: make([]chan Request, workers),
		quit:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	for w := range p.inboxes {
		p.inboxes[w] = make(chan Request, 1)
		p.wg.Add(1)
		go p.work(w)
	}
	go p.dispatch()
	return p
}

// Submit queues an embedding test of pattern into target and returns its
// future. Ids start at 1 and increase by one per task.
func (p *Pool) Submit(pattern, target *tree.Tree) (*Future, error) {
	select {
	case <-p.quit:
		return nil, errors.New(errors.ErrCodePoolClosed, "submit to terminated pool")
	default:
	}

	t := &task{future: &Future{done: make(chan struct{})}}
	t.req = Request{ID: p.nextID.Add(1), Pattern: pattern, Target: target}
	t.future.id = t.req.ID

	select {
	case p.submit <- t:
		p.submitted.Add(1)
		return t.future, nil
	case <-p.quit:
		return nil, errors.New(errors.ErrCodePoolClosed, "submit to terminated pool")
	}
}

// Terminate stops the dispatcher and the workers. Queued tasks are dropped
// and their futures stay unresolved. Safe to call more than once.
func (p *Pool) Terminate() {
	p.once.Do(func() {
		close(p.quit)
		<-p.stopped
		p.wg.Wait()
	})
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() Stats {
	return Stats{
		Workers:   p.workers,
		Submitted: p.submitted.Load(),
		Completed: p.completed.Load(),
		Failed:    p.failed.Load(),
		Queued:    int(p.queued.Load()),
		Idle:      int(p.idle.Load()),
	}
}

func (p *Pool) dispatch() {
	defer close(p.stopped)

	ctx := context.Background()
	idle := make([]int, p.workers)
	for w := range idle {
		idle[w] = w
	}
	var queue []*task
	pending := make(map[uint64]*Future)

	pair := func() {
		for len(idle) > 0 && len(queue) > 0 {
			w := idle[0]
			idle = idle[1:]
			t := queue[0]
			queue[0] = nil
			queue = queue[1:]
			p.inboxes[w] <- t.req
		}
		p.queued.Store(int64(len(queue)))
		p.idle.Store(int64(len(idle)))
	}
	pair()

	for {
		select {
		case <-p.quit:
			return

		case t := <-p.submit:
			pending[t.req.ID] = t.future
			queue = append(queue, t)
			observability.Pool().OnSubmit(ctx, len(queue))
			pair()

		case o := <-p.results:
			fut := pending[o.resp.ID]
			delete(pending, o.resp.ID)
			if o.failure != nil {
				p.failed.Add(1)
				p.logger.Error("embedding worker failed", "task", o.resp.ID, "worker", o.worker, "error", o.failure)
				observability.Pool().OnWorkerFailure(ctx, o.resp.ID, o.failure)
			} else {
				p.completed.Add(1)
				observability.Pool().OnComplete(ctx, o.resp.Result, o.duration)
				if fut != nil {
					fut.resolve(o.resp.Result)
				}
			}
			idle = append(idle, o.worker)
			pair()
		}
	}
}

func (p *Pool) work(w int) {
	defer p.wg.Done()
	for {
		select {
		case <-p.quit:
			return
		case req := <-p.inboxes[w]:
			o := p.evaluate(w, req)
			select {
			case p.results <- o:
			case <-p.quit:
				return
			}
		}
	}
}

func (p *Pool) evaluate(w int, req Request) (o outcome) {
	o.worker = w
	o.resp.ID = req.ID
	start := time.Now()
	defer func() {
		o.duration = time.Since(start)
		if r := recover(); r != nil {
			o.failure = &errors.WorkerFailure{TaskID: req.ID, Worker: w, Panic: r}
		}
	}()
	o.resp.Result = p.eval(req.Pattern, req.Target)
	return o
}

// String describes the pool for log output.
func (p *Pool) String() string {
	s := p.Stats()
	return fmt.Sprintf("pool(workers=%d submitted=%d completed=%d failed=%d queued=%d)",
		s.Workers, s.Submitted, s.Completed, s.Failed, s.Queued)
}
