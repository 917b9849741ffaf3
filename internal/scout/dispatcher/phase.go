package dispatcher

import (
	"context"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// NewPhaseSettlementHandler watches UrlProcessed events and emits
// PhaseCompleted the moment a phase's last queued source finishes
// processing, per section 4.4's "transition guards" note. It is
// phase-agnostic: the phase that just settled is read off next.Phase,
// since aggregate.Apply only advances Phase on an explicit
// PhaseCompletedEvent, so Phase still names the phase whose sources just
// hit zero.
func NewPhaseSettlementHandler() Handler {
	return Handler{
		ID:       "phase-settlement",
		Priority: 1,
		Match:    func(ev events.Event) bool { return ev.Type() == events.TypeUrlProcessed },
		Guard: func(prev, next *aggregate.State) bool {
			return prev.SourcesRemaining > 0 && next.SourcesRemaining == 0
		},
		Handle: func(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
			return []events.Event{events.NewPhaseCompletedEvent(state.RunID, state.Phase)}, nil
		},
	}
}

// NewRunCompletionHandler emits RunCompleted once the Expansion phase
// settles, closing the run's control-flow diagram (section 2).
func NewRunCompletionHandler() Handler {
	return Handler{
		ID:       "run-completion",
		Priority: 1,
		Match:    func(ev events.Event) bool { return ev.Type() == events.TypePhaseCompleted },
		Filter: func(ev events.Event) bool {
			e, ok := ev.(events.PhaseCompletedEvent)
			return ok && e.Phase == events.PhaseExpansion
		},
		Handle: func(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
			return []events.Event{events.NewRunCompletedEvent(state.RunID, state.Stats)}, nil
		},
	}
}
