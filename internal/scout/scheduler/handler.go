package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// FullReader is the graph.Reader slice the scheduling handler needs: the
// phase-scoped due-list (via SourceReader, embedded) plus the full
// source snapshot BuildPlan's opportunistic tiers sample from.
type FullReader interface {
	SourceReader
	ActiveSources(ctx context.Context) ([]graph.Source, error)
}

// schedulingHandler drives the two scheduling entries of the run's
// control flow (section 2): the tension-phase worklist at RunStarted,
// and the response-phase worklist once the tension phase settles. The
// cold-tier and exploration tiers are folded into the response-phase
// worklist rather than given a phase of their own — a documented
// simplification, since the aggregate's Phase field only names the two
// fetch phases the dispatcher actually gates on.
type schedulingHandler struct {
	reader  FullReader
	planner *Planner
	budget  Budget

	mu      sync.Mutex
	pending map[uuid.UUID][]graph.Source // response+cold+exploration tiers, held between the two entries
}

// NewSchedulingHandler builds the dispatcher.Handler that reacts to
// RunStarted and to PhaseCompleted(TensionPhase), emitting each phase's
// SourcesScheduled + SourceQueued events per section 4.11.
func NewSchedulingHandler(reader FullReader, planner *Planner, budget Budget) dispatcher.Handler {
	h := &schedulingHandler{reader: reader, planner: planner, budget: budget, pending: make(map[uuid.UUID][]graph.Source)}
	return dispatcher.Handler{
		ID:       "scheduler",
		Priority: 1,
		Match: func(ev events.Event) bool {
			if ev.Type() == events.TypeRunStarted {
				return true
			}
			if ev.Type() != events.TypePhaseCompleted {
				return false
			}
			pc, ok := ev.(events.PhaseCompletedEvent)
			return ok && pc.Phase == events.PhaseTensionPhase
		},
		Handle: h.handle,
	}
}

func (h *schedulingHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	switch ev.Type() {
	case events.TypeRunStarted:
		return h.scheduleTensionPhase(ctx, state)
	case events.TypePhaseCompleted:
		return h.scheduleResponsePhase(state)
	default:
		return nil, nil
	}
}

func (h *schedulingHandler) scheduleTensionPhase(ctx context.Context, state *aggregate.State) ([]events.Event, error) {
	all, err := h.reader.ActiveSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("scheduler: active sources: %w", err)
	}
	plan, err := h.planner.BuildPlan(ctx, h.budget, all)
	if err != nil {
		return nil, fmt.Errorf("scheduler: build plan: %w", err)
	}

	rest := make([]graph.Source, 0, len(plan.ResponseSources)+len(plan.ColdTierSources)+len(plan.ExplorationSources))
	rest = append(rest, plan.ResponseSources...)
	rest = append(rest, plan.ColdTierSources...)
	rest = append(rest, plan.ExplorationSources...)

	h.mu.Lock()
	h.pending[state.RunID] = rest
	h.mu.Unlock()

	return scheduleSources(state.RunID, events.PhaseTensionPhase, plan.TensionSources), nil
}

func (h *schedulingHandler) scheduleResponsePhase(state *aggregate.State) ([]events.Event, error) {
	h.mu.Lock()
	rest := h.pending[state.RunID]
	delete(h.pending, state.RunID)
	h.mu.Unlock()

	return scheduleSources(state.RunID, events.PhaseResponsePhase, rest), nil
}

func scheduleSources(runID uuid.UUID, phase events.Phase, sources []graph.Source) []events.Event {
	ids := make([]uuid.UUID, 0, len(sources))
	for _, s := range sources {
		ids = append(ids, s.ID)
	}
	out := make([]events.Event, 0, len(sources)+2)
	out = append(out, events.NewSourcesScheduledEvent(runID, phase, ids))
	for _, s := range sources {
		out = append(out, events.NewSourceQueuedEvent(runID, s.ID, s.URL))
	}
	if len(sources) == 0 {
		// No UrlProcessed will ever fire to trip the phase-settlement
		// guard, so an empty worklist settles its own phase immediately.
		out = append(out, events.NewPhaseCompletedEvent(runID, phase))
	}
	return out
}
