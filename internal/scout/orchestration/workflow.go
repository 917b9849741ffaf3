package orchestration

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// RunWorkflowTimeout bounds each attempt of the run activity: it is the
// activity's StartToCloseTimeout, so Temporal ends an attempt that runs
// past it. Nothing appends a RunCancelled event when it elapses.
const RunWorkflowTimeout = 65 * time.Minute

// RunInput is the Temporal workflow's input: enough to seed a brand-new
// run, or to identify an existing one being resumed after a worker crash.
type RunInput struct {
	RunID  uuid.UUID
	Region events.RegionRef
}

// RunWorkflow is the Temporal workflow function: the entire pipeline runs
// from `engine.append(run_id, parent=None, [RunStarted{region}])`, per
// section 4.12, and this function's only job is to run that single
// append-and-dispatch step as one activity, retried up to five attempts.
// Everything past the seed event — phase sequencing, handler fan-out — is
// the dispatcher's, not the workflow's.
func RunWorkflow(ctx workflow.Context, input RunInput) (RunResult, error) {
	ao := workflow.ActivityOptions{
		StartToCloseTimeout: RunWorkflowTimeout,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval:    time.Second,
			BackoffCoefficient: 2.0,
			MaximumInterval:    time.Minute,
			MaximumAttempts:    5,
		},
	}
	ctx = workflow.WithActivityOptions(ctx, ao)

	var result RunResult
	err := workflow.ExecuteActivity(ctx, ResumeRunActivityName, input).Get(ctx, &result)
	if err != nil {
		return RunResult{}, err
	}
	return result, nil
}

// ResumeRunActivityName is the registered activity name; a string constant
// rather than activity.GetInfo-derived reflection, so the workflow and the
// worker registration stay in lockstep without relying on package-path
// stability across refactors.
const ResumeRunActivityName = "orchestration.ResumeRun"

// Activities bundles the shell behind Temporal's activity-registration
// convention (a receiver struct whose exported methods become activities),
// the same shape runtime/agent/engine/temporal uses for activity binding.
type Activities struct {
	shell *Shell
}

// NewActivities constructs the activity bundle over an already-wired Shell.
func NewActivities(shell *Shell) *Activities {
	return &Activities{shell: shell}
}

// ResumeRun is the Temporal activity body: it delegates entirely to
// Shell.Resume, whose replay-then-seed logic is what makes a worker crash
// mid-run (and Temporal's subsequent activity retry) safe to re-enter.
func (a *Activities) ResumeRun(ctx context.Context, input RunInput) (RunResult, error) {
	seed := []events.Event{events.NewRunStartedEvent(input.RunID, input.Region)}
	return a.shell.Resume(ctx, input.RunID, input.Region, seed)
}
