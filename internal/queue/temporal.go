package queue

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
	"go.uber.org/zap"
)

// TemporalConfig locates the Temporal frontend and task queue.
type TemporalConfig struct {
	HostPort  string
	Namespace string
	TaskQueue string
}

const processWorkflowPrefix = "process-result-"

// DialTemporal connects to the Temporal frontend, logging through zap.
func DialTemporal(cfg TemporalConfig) (client.Client, error) {
	c, err := client.Dial(client.Options{
		HostPort:  cfg.HostPort,
		Namespace: cfg.Namespace,
		Logger:    newTemporalLogger(zap.L()),
	})
	if err != nil {
		return nil, eris.Wrap(err, "queue: dial temporal")
	}
	return c, nil
}

// TemporalDispatcher starts one workflow per Result. The workflow id is
// derived from the Result id so a second Enqueue while a run is open
// attaches to the running workflow instead of starting another.
type TemporalDispatcher struct {
	client    client.Client
	taskQueue string
}

// NewTemporalDispatcher creates a dispatcher on the given task queue.
func NewTemporalDispatcher(c client.Client, taskQueue string) *TemporalDispatcher {
	return &TemporalDispatcher{client: c, taskQueue: taskQueue}
}

// Enqueue starts ProcessResultWorkflow for resultID.
func (d *TemporalDispatcher) Enqueue(ctx context.Context, resultID string) error {
	run, err := d.client.ExecuteWorkflow(ctx, client.StartWorkflowOptions{
		ID:        processWorkflowPrefix + resultID,
		TaskQueue: d.taskQueue,
	}, ProcessResultWorkflow, resultID)
	if err != nil {
		return eris.Wrapf(err, "queue: start workflow for %s", resultID)
	}
	zap.L().Info("queue: workflow started",
		zap.String("result_id", resultID),
		zap.String("workflow_id", run.GetID()),
		zap.String("run_id", run.GetRunID()),
	)
	return nil
}

// ProcessResultWorkflow runs the pipeline activity once. A failed run is
// not retried; the Result stays readable in its last saved state.
func ProcessResultWorkflow(ctx workflow.Context, resultID string) error {
	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 15 * time.Minute,
		RetryPolicy:         &temporal.RetryPolicy{MaximumAttempts: 1},
	})

	var a *Activities
	return workflow.ExecuteActivity(ctx, a.ProcessResult, resultID).Get(ctx, nil)
}

// Activities exposes the pipeline to Temporal workers.
type Activities struct {
	Processor Processor
}

// ProcessResult runs the pipeline for one Result.
func (a *Activities) ProcessResult(ctx context.Context, resultID string) error {
	activity.GetLogger(ctx).Info("processing result", "result_id", resultID)
	if err := a.Processor.ProcessID(ctx, resultID, false); err != nil {
		return temporal.NewNonRetryableApplicationError(err.Error(), "ProcessFailed", err)
	}
	return nil
}

// NewTemporalWorker registers the workflow and activities on the task queue.
func NewTemporalWorker(c client.Client, taskQueue string, proc Processor, concurrency int) worker.Worker {
	w := worker.New(c, taskQueue, worker.Options{
		MaxConcurrentActivityExecutionSize: concurrency,
	})
	w.RegisterWorkflow(ProcessResultWorkflow)
	w.RegisterActivity(&Activities{Processor: proc})
	return w
}
