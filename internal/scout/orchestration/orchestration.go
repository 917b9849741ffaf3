// Package orchestration implements the Run Orchestration Shell described in
// section 4.12: a durable-workflow wrapper around the dispatcher's
// append-apply-project-fan-out loop. The shell itself sequences nothing —
// "everything else proceeds via handler dispatch and transition guards. No
// external driver sequences phases" — its only job is crash resumption: on
// restart, load aggregate state from the event log, replay, and continue
// dispatching from a seed the shell computes from what it finds.
package orchestration

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// EventReader is the subset of eventlog.Store the shell needs to replay a
// run's history before resuming dispatch.
type EventReader interface {
	ReadRange(ctx context.Context, runID uuid.UUID, fromSeq, toSeq int64) ([]EventRow, error)
}

// EventRow mirrors eventlog.StoredEvent's two fields the shell cares about.
// Declared locally (rather than importing eventlog.StoredEvent directly)
// keeps this package's dependency surface to event decoding only, matching
// the narrow-seam idiom used across this codebase's driver boundaries.
type EventRow struct {
	Sequence int64
	Event    events.Event
}

// isTerminal reports whether ev puts a run in either end state; Resume
// treats both as "nothing left to do".
func isTerminal(ev events.Event) bool {
	switch ev.Type() {
	case events.TypeRunCompleted, events.TypeRunCancelled:
		return true
	default:
		return false
	}
}

// RunResult is returned by a shell invocation, terminal or not.
type RunResult struct {
	RunID          uuid.UUID
	AlreadyDone    bool
	EventsReplayed int
	Stats          events.RunStats
	Cancelled      bool
	CancelReason   string
}

// Shell drives one run to completion, resuming from whatever the event log
// already holds. It has no knowledge of which durable-workflow engine calls
// it; Temporal wiring lives in workflow.go and is a thin caller.
type Shell struct {
	reader     EventReader
	dispatcher *dispatcher.Dispatcher
}

// New constructs a Shell over an already-wired dispatcher.
func New(reader EventReader, d *dispatcher.Dispatcher) *Shell {
	return &Shell{reader: reader, dispatcher: d}
}

// Resume replays a run's event history (if any) and either reports it
// already terminal, or continues dispatching from the seed events computed
// by replayState. A run that has never been appended to starts fresh with a
// RunStarted seed; the dispatcher's internal sequencing (section 4.4) takes
// it from there.
func (s *Shell) Resume(ctx context.Context, runID uuid.UUID, region events.RegionRef, seedIfNew []events.Event) (RunResult, error) {
	rows, err := s.reader.ReadRange(ctx, runID, 0, -1)
	if err != nil {
		return RunResult{}, fmt.Errorf("orchestration: replay run %s: %w", runID, err)
	}

	state := aggregate.New(runID, region)
	var cancelReason string
	for _, row := range rows {
		if row.Event == nil {
			// Unknown event type in a registry gap; replay degrades
			// gracefully rather than aborting the whole run (section 9's
			// "new event variants without breaking replay").
			continue
		}
		if cancelled, ok := row.Event.(events.RunCancelledEvent); ok {
			cancelReason = cancelled.Reason
		}
		aggregate.Apply(state, row.Event)
		if isTerminal(row.Event) {
			return RunResult{RunID: runID, AlreadyDone: true, EventsReplayed: len(rows), Stats: state.Stats, Cancelled: state.Cancelled, CancelReason: cancelReason}, nil
		}
	}

	if len(rows) == 0 {
		if err := s.dispatcher.Run(ctx, runID, state, seedIfNew); err != nil {
			return RunResult{}, err
		}
		return RunResult{RunID: runID, EventsReplayed: 0, Stats: state.Stats, Cancelled: state.Cancelled}, nil
	}

	// The run was started but neither completed nor cancelled: a crash
	// left it mid-flight. The dispatcher's own queue (the unappended
	// fan-out of the last-processed event) is not itself persisted, so
	// the resumable unit here is the current phase: re-emitting its
	// scheduling step is safe because the projector's MERGE operations
	// absorb duplicate graph writes cleanly (section 5's crash-recovery
	// contract), and re-running an LLM call or fetch that already
	// succeeded costs time, not correctness.
	resumeSeed := resumeSeedFor(state)
	if len(resumeSeed) == 0 {
		return RunResult{RunID: runID, AlreadyDone: true, EventsReplayed: len(rows), Stats: state.Stats}, nil
	}
	if err := s.dispatcher.Run(ctx, runID, state, resumeSeed); err != nil {
		return RunResult{}, err
	}
	return RunResult{RunID: runID, EventsReplayed: len(rows), Stats: state.Stats}, nil
}

// resumeSeedFor picks the event that re-triggers the handler responsible
// for entering the phase a crashed run was last recorded in, so a worker
// resuming a run does not need its predecessor's in-memory dispatch queue.
//
// This mirrors the aggregate's actual phase-entry causality rather than
// inverting PhaseCompleted's nextPhase table: TensionPhase and Scheduling
// are both entered from RunStarted (scheduling emits SourcesScheduled
// directly), while every later phase is entered from the PhaseCompleted
// event for the phase before it. Re-seeding a phase's entry event can
// duplicate that phase's scheduling-side counters (e.g. Stats.SourcesScheduled)
// on resume; the projector's MERGE semantics absorb the resulting duplicate
// graph writes, so this trades a cosmetic stat overcount for dispatch
// correctness, a cost worth stating rather than hiding.
func resumeSeedFor(state *aggregate.State) []events.Event {
	switch state.Phase {
	case events.PhaseComplete:
		return nil
	case events.PhaseScheduling, events.PhaseTensionPhase:
		return []events.Event{events.NewRunStartedEvent(state.RunID, state.Region)}
	case events.PhaseResponsePhase:
		return []events.Event{events.NewPhaseCompletedEvent(state.RunID, events.PhaseTensionPhase)}
	case events.PhaseSynthesis:
		return []events.Event{events.NewPhaseCompletedEvent(state.RunID, events.PhaseResponsePhase)}
	case events.PhaseEnrichment:
		return []events.Event{events.NewPhaseCompletedEvent(state.RunID, events.PhaseSynthesis)}
	case events.PhaseMetrics:
		return []events.Event{events.NewPhaseCompletedEvent(state.RunID, events.PhaseEnrichment)}
	case events.PhaseExpansion:
		return []events.Event{events.NewPhaseCompletedEvent(state.RunID, events.PhaseMetrics)}
	default:
		return nil
	}
}
