// Package aggregate implements the Scout Engine's pure state reducer: the
// single source of truth for in-run counters, phase, and cross-handler
// accumulation state, per section 4.2. It performs no I/O.
package aggregate

import (
	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// ExtractedBatch accumulates extractor output for a URL between extraction
// and the dedup decision that follows it.
type ExtractedBatch struct {
	SourceID uuid.UUID
	URL      string
	Signals  []events.CandidateSignal
}

// IdentifiedActor records one actor sighting, so the Enrichment handler can
// check this run's new actors for near-duplicates without a full table
// scan.
type IdentifiedActor struct {
	ID   uuid.UUID
	Name string
}

// RunStats is an alias of events.RunStats, so the reducer's running
// counters and the RunCompleted payload share one type.
type RunStats = events.RunStats

// State is the run's reduced state, per section 4.2's field list.
type State struct {
	RunID  uuid.UUID
	Region events.RegionRef
	Phase  events.Phase

	// SourcesRemaining is decremented on each UrlProcessed; reaching zero
	// is the transition the dispatcher's phase-complete guard watches for.
	SourcesRemaining int

	ExtractedBatches  map[string]ExtractedBatch // keyed by URL
	EmbedCache        map[uuid.UUID][]float32   // cross-batch dedup memory within the run
	SignalCountsPerSource map[string]int        // keyed by source URL
	ExpansionQueries  []string
	IdentifiedActors  []IdentifiedActor

	// ScheduledSourceIDs is the union, across both fetch phases, of every
	// source this run scheduled — the Metrics handler's iteration set.
	ScheduledSourceIDs []uuid.UUID
	// SignalYieldPerSource counts extracted signals by source id, so
	// Metrics can tell a silent source from one that simply yielded
	// nothing dated (both fetched fine, only one backs off).
	SignalYieldPerSource map[uuid.UUID]int

	Stats RunStats

	Cancelled bool
}

// New returns the zero-value state for a freshly started run.
func New(runID uuid.UUID, region events.RegionRef) *State {
	return &State{
		RunID:                 runID,
		Region:                region,
		Phase:                 events.PhaseScheduling,
		ExtractedBatches:      make(map[string]ExtractedBatch),
		EmbedCache:            make(map[uuid.UUID][]float32),
		SignalCountsPerSource: make(map[string]int),
		SignalYieldPerSource:  make(map[uuid.UUID]int),
	}
}

// Apply folds one event into the state, returning the (mutated) state.
// Apply never performs I/O and never fails: events it does not recognize
// are no-ops on the aggregate (they may still matter to the projector or
// other handlers).
func Apply(s *State, ev events.Event) *State {
	switch e := ev.(type) {
	case events.RunStartedEvent:
		s.Phase = events.PhaseScheduling
		s.Region = e.Region

	case events.SourcesScheduledEvent:
		s.Phase = e.Phase
		s.SourcesRemaining = len(e.Sources)
		s.Stats.SourcesScheduled += len(e.Sources)
		s.ScheduledSourceIDs = append(s.ScheduledSourceIDs, e.Sources...)

	case events.UrlProcessedEvent:
		if s.SourcesRemaining > 0 {
			s.SourcesRemaining--
		}

	case events.PhaseCompletedEvent:
		s.Phase = nextPhase(e.Phase)

	case events.SignalsExtractedEvent:
		s.ExtractedBatches[e.URL] = ExtractedBatch{SourceID: e.SourceID, URL: e.URL, Signals: e.Signals}
		s.SignalCountsPerSource[e.URL] += len(e.Signals)
		s.SignalYieldPerSource[e.SourceID] += len(e.Signals)
		s.Stats.SignalsExtracted += len(e.Signals)
		for _, sig := range e.Signals {
			s.ExpansionQueries = append(s.ExpansionQueries, sig.ImpliedQueries...)
		}

	case events.ActorIdentifiedEvent:
		s.IdentifiedActors = append(s.IdentifiedActors, IdentifiedActor{ID: e.ActorID, Name: e.Name})

	case events.NodeCreatedEvent:
		s.Stats.NodesCreated++

	case events.NodeCorroboratedEvent:
		s.Stats.NodesCorroborated++

	case events.NodeRefreshedEvent:
		s.Stats.NodesRefreshed++

	case events.ContentFetchFailedEvent:
		s.Stats.FetchFailures++

	case events.LintQuarantineIssuedEvent:
		s.Stats.Quarantines++

	case events.SituationIdentifiedEvent:
		s.Stats.SituationsFormed++

	case events.RunCancelledEvent:
		s.Cancelled = true
		s.Phase = events.PhaseComplete

	case events.RunCompletedEvent:
		s.Phase = events.PhaseComplete
		s.Stats = e.Stats
	}
	return s
}

// CacheEmbedding records an embedding for cross-batch dedup within the
// run. It is written only by the dedup handler, and only while the
// dispatcher is processing a single event (no concurrent writers).
func (s *State) CacheEmbedding(id uuid.UUID, v []float32) {
	s.EmbedCache[id] = v
}

// nextPhase advances the phase machine on PhaseCompleted. Synthesis runs
// once after both fetch phases settle; Enrichment, Metrics, and Expansion
// follow in the order described by the control-flow diagram in section 2.
func nextPhase(completed events.Phase) events.Phase {
	switch completed {
	case events.PhaseTensionPhase:
		return events.PhaseResponsePhase
	case events.PhaseResponsePhase:
		return events.PhaseSynthesis
	case events.PhaseSynthesis:
		return events.PhaseEnrichment
	case events.PhaseEnrichment:
		return events.PhaseMetrics
	case events.PhaseMetrics:
		return events.PhaseExpansion
	case events.PhaseExpansion:
		return events.PhaseComplete
	default:
		return completed
	}
}
