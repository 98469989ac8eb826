package crawl

import (
	"context"
	"fmt"
	"sync"

	"github.com/fwojciec/linkcrawl"
	"golang.org/x/sync/errgroup"
)

// Job is a unit of work executed by a Pool.
type Job interface {
	// Run executes the job. ctx is canceled when the pool is force-stopped.
	Run(ctx context.Context)

	// Cancel is called instead of Run when the pool drops a queued job.
	Cancel()
}

// Pool runs jobs on a fixed number of worker goroutines fed from an
// unbounded FIFO queue.
type Pool struct {
	name string

	mu     sync.Mutex
	cond   *sync.Cond
	queue  []Job
	closed bool

	ctx    context.Context
	cancel context.CancelFunc
	g      errgroup.Group
	done   chan struct{}
}

// NewPool starts a pool with the given number of workers.
func NewPool(name string, workers int) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		name:   name,
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	for range workers {
		p.g.Go(p.work)
	}
	go func() {
		_ = p.g.Wait()
		close(p.done)
	}()
	return p
}

// Submit enqueues job. It never blocks and never runs job inline.
// Once the pool is shut down Submit returns ECLOSED and the caller keeps
// ownership of job.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return linkcrawl.Errorf(linkcrawl.ECLOSED, "%s pool is closed", p.name)
	}
	p.queue = append(p.queue, job)
	p.cond.Signal()
	return nil
}

// Len returns the number of queued jobs.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

func (p *Pool) work() error {
	for {
		job, ok := p.next()
		if !ok {
			return nil
		}
		job.Run(p.ctx)
	}
}

// next blocks until a job is available. It returns false once the pool is
// stopped, or shut down with an empty queue.
func (p *Pool) next() (Job, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for len(p.queue) == 0 && !p.closed && p.ctx.Err() == nil {
		p.cond.Wait()
	}
	if p.ctx.Err() != nil || len(p.queue) == 0 {
		return nil, false
	}
	job := p.queue[0]
	p.queue[0] = nil
	p.queue = p.queue[1:]
	return job, true
}

// Shutdown stops accepting jobs and waits until the queue is drained and
// every worker has exited, or ctx is done.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.cond.Broadcast()
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s pool shutdown: %w", p.name, ctx.Err())
	}
}

// Stop cancels the context of running jobs, calls Cancel on every queued job
// and waits for the workers to exit or ctx to be done.
func (p *Pool) Stop(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.cancel()
	dropped := p.queue
	p.queue = nil
	p.cond.Broadcast()
	p.mu.Unlock()

	for _, job := range dropped {
		job.Cancel()
	}

	select {
	case <-p.done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%s pool stop: %w", p.name, ctx.Err())
	}
}
