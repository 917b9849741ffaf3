package orchestration

import (
	"context"
	"fmt"

	enums "go.temporal.io/api/enums/v1"
	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/client"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"
)

const runWorkflowName = "orchestration.RunWorkflow"

func workflowRegisterOptions() workflow.RegisterOptions {
	return workflow.RegisterOptions{Name: runWorkflowName}
}

func activityRegisterOptions() activity.RegisterOptions {
	return activity.RegisterOptions{Name: ResumeRunActivityName}
}

// WorkerOptions configures the worker bootstrap. TaskQueue is required; the
// rest mirror Temporal's own worker.Options so callers can tune concurrency
// without this package growing its own knob for every Temporal setting.
type WorkerOptions struct {
	TaskQueue string
	Options   worker.Options
}

// Worker wraps a Temporal worker registered with this package's single
// RunWorkflow/ResumeRun pair. Scaled down from a general-purpose
// multi-workflow registry (section 6's external-interfaces list names one
// orchestration surface: trigger a run) to exactly what this module needs.
type Worker struct {
	client client.Client
	worker worker.Worker
	queue  string
}

// NewWorker constructs and registers the worker but does not start it; call
// Start to begin polling the task queue.
func NewWorker(c client.Client, opts WorkerOptions, shell *Shell) (*Worker, error) {
	if opts.TaskQueue == "" {
		return nil, fmt.Errorf("orchestration: worker options must include a task queue")
	}
	w := worker.New(c, opts.TaskQueue, opts.Options)
	w.RegisterWorkflowWithOptions(RunWorkflow, workflowRegisterOptions())

	activities := NewActivities(shell)
	w.RegisterActivityWithOptions(activities.ResumeRun, activityRegisterOptions())

	return &Worker{client: c, worker: w, queue: opts.TaskQueue}, nil
}

// Start begins polling the configured task queue and blocks until the
// process receives an interrupt signal (worker.InterruptCh), matching
// Temporal's own run-until-interrupted convention for long-lived workers.
func (w *Worker) Start() error {
	return w.worker.Run(worker.InterruptCh())
}

// Stop requests a graceful shutdown.
func (w *Worker) Stop() {
	w.worker.Stop()
}

// StartRun triggers a scout run by starting (or, given an already-used
// RunID, idempotently re-attaching to) the RunWorkflow execution. Using the
// run ID as the Temporal workflow ID means a second StartRun call for a run
// already in flight returns a handle to the existing execution instead of
// racing a duplicate, matching section 5's "no event is processed twice".
func StartRun(ctx context.Context, c client.Client, taskQueue string, input RunInput) (client.WorkflowRun, error) {
	opts := client.StartWorkflowOptions{
		ID:                    "scout-run-" + input.RunID.String(),
		TaskQueue:             taskQueue,
		WorkflowIDReusePolicy: enums.WORKFLOW_ID_REUSE_POLICY_ALLOW_DUPLICATE_FAILED_ONLY,
	}
	return c.ExecuteWorkflow(ctx, opts, runWorkflowName, input)
}
