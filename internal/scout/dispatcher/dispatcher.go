// Package dispatcher implements the Scout Engine's Handler Registry &
// Dispatcher, per section 4.4: handlers register against an event-type
// match plus optional filter and transition guard, and fire in priority
// order as each event is appended and applied.
package dispatcher

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/telemetry"
)

// Appender is the subset of eventlog.Store the dispatcher needs: one
// transactional append per dispatch step.
type Appender interface {
	Append(ctx context.Context, runID uuid.UUID, causedBy *int64, evs []events.Event) (firstSeq int64, err error)
}

// Guard is a predicate over (prev, next) aggregate state, used to fire a
// handler on exactly one state transition (phase settlement, per section
// 4.4's "transition guards" note).
type Guard func(prev, next *aggregate.State) bool

// HandleFunc performs a handler's work and returns child events to
// enqueue. It may perform I/O; the dispatcher does not hold any lock
// across this call.
type HandleFunc func(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error)

// Handler is one registered reaction to appended events.
type Handler struct {
	// ID is a stable identifier used to break priority ties
	// deterministically (sorted lexically).
	ID       string
	Priority int
	Match    func(events.Event) bool
	Filter   func(events.Event) bool
	Guard    Guard
	Handle   HandleFunc
}

func (h Handler) matches(ev events.Event, prev, next *aggregate.State) bool {
	if h.Match != nil && !h.Match(ev) {
		return false
	}
	if h.Filter != nil && !h.Filter(ev) {
		return false
	}
	if h.Guard != nil && !h.Guard(prev, next) {
		return false
	}
	return true
}

// Registry holds registered handlers, kept sorted by (priority, id) so
// dispatch order is deterministic. The projector registers at priority 0;
// every other handler runs strictly after it, per section 4.3.
type Registry struct {
	handlers []Handler
	sorted   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry { return &Registry{} }

// Register adds a handler. Re-registering the same ID replaces the prior
// registration, so tests can override handlers without restarting a
// dispatcher.
func (r *Registry) Register(h Handler) {
	for i, existing := range r.handlers {
		if existing.ID == h.ID {
			r.handlers[i] = h
			r.sorted = false
			return
		}
	}
	r.handlers = append(r.handlers, h)
	r.sorted = false
}

func (r *Registry) ordered() []Handler {
	if !r.sorted {
		sort.SliceStable(r.handlers, func(i, j int) bool {
			if r.handlers[i].Priority != r.handlers[j].Priority {
				return r.handlers[i].Priority < r.handlers[j].Priority
			}
			return r.handlers[i].ID < r.handlers[j].ID
		})
		r.sorted = true
	}
	return r.handlers
}

// Dispatcher drives the append-apply-project-fan-out loop described in
// section 4.4. It is single-threaded per run (section 5): one event is
// appended, applied, and dispatched to completion before the next.
type Dispatcher struct {
	appender Appender
	registry *Registry
	logger   telemetry.Logger
}

// New constructs a Dispatcher.
func New(appender Appender, registry *Registry, logger telemetry.Logger) *Dispatcher {
	if logger == nil {
		logger = telemetry.NoopLogger{}
	}
	return &Dispatcher{appender: appender, registry: registry, logger: logger}
}

// pendingEvent is one entry in the dispatcher's explicit work queue: an
// event not yet appended, plus the sequence of the event that caused it
// (nil for the run's seed event).
type pendingEvent struct {
	event    events.Event
	causedBy *int64
}

// Run drives dispatch for a run to completion (or cancellation), starting
// from a seed event (typically RunStarted). It mutates state in place.
//
// The work queue is an explicit slice, not the call stack: child events
// returned by a handler are prepended (not appended) to the remaining
// queue, which preserves sibling order while still visiting a subtree
// depth-first before moving to the next sibling — matching "recursion is
// depth-first" (section 4.4) without recursive calls, so dispatch depth
// is unbounded in logic but bounded in heap, not stack, memory (section 9).
func (d *Dispatcher) Run(ctx context.Context, runID uuid.UUID, state *aggregate.State, seed []events.Event) error {
	queue := make([]pendingEvent, 0, len(seed))
	for _, ev := range seed {
		queue = append(queue, pendingEvent{event: ev})
	}

	for len(queue) > 0 {
		if state.Cancelled {
			// RunCancelled short-circuits: already-dispatched handlers
			// have completed; no further queued events are dispatched.
			d.logger.Info(ctx, "dispatch halted: run cancelled", "run_id", runID.String(), "queued_remaining", len(queue))
			return nil
		}

		item := queue[0]
		queue = queue[1:]

		firstSeq, err := d.appender.Append(ctx, runID, item.causedBy, []events.Event{item.event})
		if err != nil {
			return fmt.Errorf("dispatcher: append %s: %w", item.event.Type(), err)
		}
		stamped := item.event.WithSequence(firstSeq, item.causedBy, item.event.Timestamp())

		prev := snapshot(state)
		aggregate.Apply(state, stamped)
		next := state

		children, err := d.fanOut(ctx, stamped, prev, next)
		if err != nil {
			return fmt.Errorf("dispatcher: handle %s: %w", stamped.Type(), err)
		}

		seq := stamped.Sequence()
		front := make([]pendingEvent, 0, len(children))
		for _, child := range children {
			front = append(front, pendingEvent{event: child, causedBy: &seq})
		}
		queue = append(front, queue...)
	}
	return nil
}

// fanOut invokes the priority-0 projector (if registered) and then every
// other matching handler in (priority, id) order, collecting child events
// in handler order with each handler's own return order preserved.
func (d *Dispatcher) fanOut(ctx context.Context, ev events.Event, prev, next *aggregate.State) ([]events.Event, error) {
	var children []events.Event
	for _, h := range d.registry.ordered() {
		if !h.matches(ev, prev, next) {
			continue
		}
		out, err := h.Handle(ctx, ev, next)
		if err != nil {
			if h.Priority == 0 {
				// Projector failure aborts this event's dispatch entirely;
				// downstream handlers do not run (section 4.3).
				return nil, fmt.Errorf("projector %s: %w", h.ID, err)
			}
			d.logger.Error(ctx, "handler failed", "handler_id", h.ID, "event_type", string(ev.Type()), "error", err.Error())
			continue
		}
		children = append(children, out...)
	}
	return children, nil
}

// snapshot returns a shallow copy of state sufficient for transition
// guards to compare prev vs. next; maps are intentionally shared (guards
// only compare scalar fields such as Phase and SourcesRemaining).
func snapshot(s *aggregate.State) *aggregate.State {
	cp := *s
	return &cp
}
