package download

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// Pool errors.
var (
	// ErrQueueFull is returned when the job queue has no room.
	ErrQueueFull = errors.New("download queue full")

	// ErrPoolClosed is returned when the pool is shutting down.
	ErrPoolClosed = errors.New("download pool closed")
)

// Runnable is a queued unit of work.
type Runnable interface {
	Run(ctx context.Context) error
}

// Pool runs download jobs on a fixed set of workers behind a bounded
// queue. New jobs are rejected, never blocked on, when the queue is
// full or the pool is shutting down.
type Pool struct {
	queue chan Runnable
	wg    sync.WaitGroup
	log   *slog.Logger

	mu     sync.Mutex
	closed bool
}

// NewPool starts workers draining a queue of the given depth.
func NewPool(ctx context.Context, workers, depth int, log *slog.Logger) *Pool {
	if log == nil {
		log = slog.Default()
	}
	p := &Pool{
		queue: make(chan Runnable, depth),
		log:   log.With("component", "pool"),
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker(ctx)
	}
	return p
}

// Submit enqueues a job. Returns ErrQueueFull or ErrPoolClosed instead
// of blocking.
func (p *Pool) Submit(job Runnable) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrPoolClosed
	}
	select {
	case p.queue <- job:
		return nil
	default:
		return ErrQueueFull
	}
}

// Shutdown stops accepting jobs and waits for queued and in-flight work
// to drain.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.queue)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *Pool) worker(ctx context.Context) {
	defer p.wg.Done()
	for job := range p.queue {
		if err := job.Run(ctx); err != nil {
			p.log.Error("job failed", "error", err)
		}
	}
}
