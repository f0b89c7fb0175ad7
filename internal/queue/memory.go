package queue

import (
	"context"
	"sync"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// MemoryQueue is a buffered in-process job queue drained by a fixed pool of
// workers. Jobs are lost if the process exits; unprocessed Results can be
// re-enqueued on startup.
type MemoryQueue struct {
	proc    Processor
	workers int
	jobs    chan string

	mu      sync.Mutex
	pending map[string]struct{}
	closed  bool
	sending sync.WaitGroup
}

// NewMemoryQueue creates a queue with the given worker count and buffer size.
func NewMemoryQueue(proc Processor, workers, buffer int) *MemoryQueue {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = 100
	}
	return &MemoryQueue{
		proc:    proc,
		workers: workers,
		jobs:    make(chan string, buffer),
		pending: make(map[string]struct{}),
	}
}

// Enqueue adds a job, blocking while the buffer is full.
func (q *MemoryQueue) Enqueue(ctx context.Context, resultID string) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrClosed
	}
	if _, ok := q.pending[resultID]; ok {
		q.mu.Unlock()
		zap.L().Debug("queue: job already pending", zap.String("result_id", resultID))
		return nil
	}
	q.pending[resultID] = struct{}{}
	q.sending.Add(1)
	q.mu.Unlock()
	defer q.sending.Done()

	select {
	case q.jobs <- resultID:
		return nil
	case <-ctx.Done():
		q.done(resultID)
		return eris.Wrap(ctx.Err(), "queue: enqueue")
	}
}

// Pending returns the number of queued or running jobs.
func (q *MemoryQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Run starts the workers and blocks until ctx is cancelled. Enqueue fails
// with ErrClosed as soon as ctx ends. Jobs already running are allowed to
// finish; queued jobs are dropped and their Results stay unprocessed.
func (q *MemoryQueue) Run(ctx context.Context) error {
	jobCtx := context.WithoutCancel(ctx)

	g := new(errgroup.Group)
	g.Go(func() error {
		<-ctx.Done()
		q.mu.Lock()
		q.closed = true
		q.mu.Unlock()
		return nil
	})
	for i := 0; i < q.workers; i++ {
		worker := i
		g.Go(func() error {
			for {
				if ctx.Err() != nil {
					return nil
				}
				select {
				case <-ctx.Done():
					return nil
				case id := <-q.jobs:
					q.handle(jobCtx, worker, id)
				}
			}
		})
	}
	zap.L().Info("queue: workers started", zap.Int("workers", q.workers))
	err := g.Wait()

	if dropped := q.drain(); dropped > 0 {
		zap.L().Warn("queue: dropped queued jobs on shutdown", zap.Int("jobs", dropped))
	}
	zap.L().Info("queue: workers stopped")
	return err
}

// drain empties the buffer once the queue is closed, including sends that
// passed the closed check before shutdown, and releases their pending
// entries.
func (q *MemoryQueue) drain() int {
	senders := make(chan struct{})
	go func() {
		q.sending.Wait()
		close(senders)
	}()

	n := 0
	for {
		select {
		case id := <-q.jobs:
			q.done(id)
			n++
		case <-senders:
			for {
				select {
				case id := <-q.jobs:
					q.done(id)
					n++
				default:
					return n
				}
			}
		}
	}
}

func (q *MemoryQueue) handle(ctx context.Context, worker int, id string) {
	defer q.done(id)

	log := zap.L().With(zap.Int("worker", worker), zap.String("result_id", id))
	log.Info("queue: processing result")
	if err := q.proc.ProcessID(ctx, id, false); err != nil {
		log.Error("queue: process failed", zap.Error(err))
		return
	}
	log.Info("queue: result processed")
}

func (q *MemoryQueue) done(id string) {
	q.mu.Lock()
	delete(q.pending, id)
	q.mu.Unlock()
}
