// Package queue runs the entity pipeline for each new Result as a deferred
// job, either on an in-process worker pool or on Temporal.
package queue

import (
	"context"

	"github.com/rotisserie/eris"
)

// ErrClosed is returned when a job is enqueued after shutdown began.
var ErrClosed = eris.New("queue: closed")

// Processor runs the pipeline for one stored Result.
type Processor interface {
	ProcessID(ctx context.Context, id string, force bool) error
}

// Dispatcher schedules the pipeline for a Result. Enqueuing a Result whose
// job is already pending is a no-op.
type Dispatcher interface {
	Enqueue(ctx context.Context, resultID string) error
}
