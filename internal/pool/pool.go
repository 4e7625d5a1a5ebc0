// Package pool runs deferred zero-argument jobs on a fixed set of worker
// goroutines.
//
// A pool keeps one FIFO queue. Jobs that have started always run to
// completion; jobs that have not started can be discarded in bulk with Flush,
// which is how a directory teardown cancels renders for tiles that are about
// to disappear. There is no per-job cancellation and no result channel:
// callers observe completion through the state the job itself publishes.
package pool

import (
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	"github.com/atomicstack/fabella/internal/logging"
	"github.com/atomicstack/fabella/internal/logging/events"
)

// ErrClosed is reported (via the log) when work is scheduled on a closed pool.
var ErrClosed = errors.New("pool closed")

// Pool is a bounded set of workers sharing one ordered queue.
type Pool struct {
	name    string
	workers int

	mu       sync.Mutex
	work     *sync.Cond // signalled when jobs arrive, a flush ends, or the pool closes
	idle     *sync.Cond // signalled when the running count drops to zero
	queue    []func()
	running  int
	flushing bool
	closed   bool
	onDone   func()

	wg sync.WaitGroup
}

// New starts a pool with the given number of workers. Counts below one are
// raised to one.
func New(name string, workers int) *Pool {
	if workers <= 0 {
		logging.Warn("pool %s: invalid worker count %d, using 1", name, workers)
		workers = 1
	}
	p := &Pool{name: name, workers: workers}
	p.work = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)
	p.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go p.worker()
	}
	return p
}

// Name returns the pool name used in logs.
func (p *Pool) Name() string { return p.name }

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int { return p.workers }

// Schedule appends job to the tail of the queue and returns immediately.
func (p *Pool) Schedule(job func()) {
	if job == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		logging.Error(fmt.Errorf("pool %s: %w", p.name, ErrClosed))
		events.Pool.Drop(p.name)
		return
	}
	p.queue = append(p.queue, job)
	p.work.Signal()
}

// Flush discards every job that has not started yet and blocks until no job
// is executing. Jobs scheduled while the flush waits are kept and run after
// it returns. Flush must not be called from a job running on the same pool.
func (p *Pool) Flush() {
	p.mu.Lock()
	discarded := len(p.queue)
	p.queue = nil
	p.flushing = true
	for p.running > 0 {
		p.idle.Wait()
	}
	p.flushing = false
	if len(p.queue) > 0 {
		p.work.Broadcast()
	}
	p.mu.Unlock()
	events.Pool.Flush(p.name, discarded)
}

// Close discards pending jobs, waits for running ones and stops the workers.
// Calling Close more than once is harmless.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	p.queue = nil
	p.work.Broadcast()
	p.mu.Unlock()
	p.wg.Wait()
	events.Pool.Close(p.name)
}

// SetOnDone installs fn to run on the worker after every job, including
// one that panicked. A nil fn removes the hook.
func (p *Pool) SetOnDone(fn func()) {
	p.mu.Lock()
	p.onDone = fn
	p.mu.Unlock()
}

// Pending returns the number of queued jobs that have not started.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// Running returns the number of jobs currently executing.
func (p *Pool) Running() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		p.mu.Lock()
		for !p.closed && (len(p.queue) == 0 || p.flushing) {
			p.work.Wait()
		}
		if p.closed {
			p.mu.Unlock()
			return
		}
		job := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.running++
		p.mu.Unlock()

		p.run(job)

		p.mu.Lock()
		onDone := p.onDone
		p.mu.Unlock()
		if onDone != nil {
			onDone()
		}

		p.mu.Lock()
		p.running--
		if p.running == 0 {
			p.idle.Broadcast()
		}
		p.mu.Unlock()
	}
}

func (p *Pool) run(job func()) {
	defer func() {
		if r := recover(); r != nil {
			logging.Error(fmt.Errorf("pool %s: job panicked: %v\n%s", p.name, r, debug.Stack()))
			events.Pool.Panic(p.name, fmt.Sprint(r))
		}
	}()
	job()
}
