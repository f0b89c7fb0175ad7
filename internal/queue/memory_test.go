package queue

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProcessor struct {
	mu      sync.Mutex
	seen    []string
	err     error
	started chan string
	release chan struct{}
	ctxErrs []error
}

func (f *fakeProcessor) ProcessID(ctx context.Context, id string, force bool) error {
	if f.started != nil {
		f.started <- id
	}
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen = append(f.seen, id)
	f.ctxErrs = append(f.ctxErrs, ctx.Err())
	return f.err
}

func (f *fakeProcessor) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func runQueue(t *testing.T, q *MemoryQueue) (context.CancelFunc, <-chan error) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- q.Run(ctx) }()
	t.Cleanup(cancel)
	return cancel, done
}

func TestMemoryQueue_ProcessesJobs(t *testing.T) {
	proc := &fakeProcessor{}
	q := NewMemoryQueue(proc, 2, 10)
	cancel, done := runQueue(t, q)

	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(context.Background(), id))
	}

	require.Eventually(t, func() bool { return len(proc.ids()) == 3 }, time.Second, 5*time.Millisecond)
	assert.ElementsMatch(t, []string{"a", "b", "c"}, proc.ids())
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestMemoryQueue_DeduplicatesPending(t *testing.T) {
	proc := &fakeProcessor{}
	q := NewMemoryQueue(proc, 1, 10)

	require.NoError(t, q.Enqueue(context.Background(), "a"))
	require.NoError(t, q.Enqueue(context.Background(), "a"))
	assert.Equal(t, 1, q.Pending())

	cancel, done := runQueue(t, q)
	require.Eventually(t, func() bool { return q.Pending() == 0 }, time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	assert.Equal(t, []string{"a"}, proc.ids())
}

func TestMemoryQueue_RequeueAfterCompletion(t *testing.T) {
	proc := &fakeProcessor{}
	q := NewMemoryQueue(proc, 1, 10)
	cancel, done := runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), "a"))
	require.Eventually(t, func() bool { return len(proc.ids()) == 1 && q.Pending() == 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, q.Enqueue(context.Background(), "a"))
	require.Eventually(t, func() bool { return len(proc.ids()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestMemoryQueue_ErrorDoesNotStopWorkers(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("recognition failed")}
	q := NewMemoryQueue(proc, 1, 10)
	cancel, done := runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), "a"))
	require.NoError(t, q.Enqueue(context.Background(), "b"))
	require.Eventually(t, func() bool { return len(proc.ids()) == 2 }, time.Second, 5*time.Millisecond)

	cancel()
	require.NoError(t, <-done)
}

func TestMemoryQueue_InFlightJobFinishesOnShutdown(t *testing.T) {
	proc := &fakeProcessor{started: make(chan string, 1), release: make(chan struct{})}
	q := NewMemoryQueue(proc, 1, 10)
	cancel, done := runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), "a"))
	<-proc.started
	cancel()

	select {
	case <-done:
		t.Fatal("Run returned while a job was running")
	case <-time.After(20 * time.Millisecond):
	}

	close(proc.release)
	require.NoError(t, <-done)
	require.Len(t, proc.ctxErrs, 1)
	assert.NoError(t, proc.ctxErrs[0])
}

func TestMemoryQueue_EnqueueAfterShutdown(t *testing.T) {
	q := NewMemoryQueue(&fakeProcessor{}, 1, 10)
	cancel, done := runQueue(t, q)
	cancel()
	require.NoError(t, <-done)

	err := q.Enqueue(context.Background(), "a")
	assert.ErrorIs(t, err, ErrClosed)
}

func TestMemoryQueue_ClosesWhenCancelledWhileJobRuns(t *testing.T) {
	proc := &fakeProcessor{started: make(chan string, 2), release: make(chan struct{})}
	q := NewMemoryQueue(proc, 1, 10)
	cancel, done := runQueue(t, q)

	require.NoError(t, q.Enqueue(context.Background(), "a"))
	<-proc.started
	require.NoError(t, q.Enqueue(context.Background(), "b"))
	cancel()

	require.Eventually(t, func() bool {
		q.mu.Lock()
		defer q.mu.Unlock()
		return q.closed
	}, time.Second, 5*time.Millisecond)
	assert.ErrorIs(t, q.Enqueue(context.Background(), "c"), ErrClosed)

	close(proc.release)
	require.NoError(t, <-done)
	assert.Equal(t, []string{"a"}, proc.ids())
	assert.Zero(t, q.Pending())
	assert.Zero(t, len(q.jobs))
}

func TestMemoryQueue_EnqueueFullBufferCancelled(t *testing.T) {
	q := NewMemoryQueue(&fakeProcessor{}, 1, 1)
	require.NoError(t, q.Enqueue(context.Background(), "a"))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := q.Enqueue(ctx, "b")
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, q.Pending())
}

func TestNewMemoryQueue_Defaults(t *testing.T) {
	q := NewMemoryQueue(&fakeProcessor{}, 0, 0)
	assert.Equal(t, 1, q.workers)
	assert.Equal(t, 100, cap(q.jobs))
}
