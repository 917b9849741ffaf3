package aggregate

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

func TestApply_SourcesRemainingSettlesToZero(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{Slug: "minneapolis"})

	sources := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	s = Apply(s, events.NewSourcesScheduledEvent(runID, events.PhaseTensionPhase, sources))
	require.Equal(t, 3, s.SourcesRemaining)

	for range sources {
		s = Apply(s, events.NewUrlProcessedEvent(runID, uuid.New(), "https://example.org"))
	}
	assert.Equal(t, 0, s.SourcesRemaining)
}

func TestApply_SourcesRemainingNeverGoesNegative(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{})
	s = Apply(s, events.NewUrlProcessedEvent(runID, uuid.New(), "https://example.org"))
	assert.Equal(t, 0, s.SourcesRemaining)
}

func TestApply_PhaseAdvancesInOrder(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{})

	order := []events.Phase{
		events.PhaseTensionPhase,
		events.PhaseResponsePhase,
		events.PhaseSynthesis,
		events.PhaseEnrichment,
		events.PhaseMetrics,
		events.PhaseExpansion,
	}
	expectedNext := []events.Phase{
		events.PhaseResponsePhase,
		events.PhaseSynthesis,
		events.PhaseEnrichment,
		events.PhaseMetrics,
		events.PhaseExpansion,
		events.PhaseComplete,
	}
	for i, phase := range order {
		s = Apply(s, events.NewPhaseCompletedEvent(runID, phase))
		assert.Equal(t, expectedNext[i], s.Phase)
	}
}

func TestApply_ExtractedBatchesAccumulateByURL(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{})
	sourceID := uuid.New()

	signals := []events.CandidateSignal{{NodeType: events.NodeAid, Title: "Free Legal Clinic"}}
	s = Apply(s, events.NewSignalsExtractedEvent(runID, sourceID, "https://localorg.org/events", signals))

	batch, ok := s.ExtractedBatches["https://localorg.org/events"]
	require.True(t, ok)
	assert.Len(t, batch.Signals, 1)
	assert.Equal(t, 1, s.Stats.SignalsExtracted)
}

func TestApply_ImpliedQueriesCollectedForExpansion(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{})

	signals := []events.CandidateSignal{
		{NodeType: events.NodeTension, ImpliedQueries: []string{"legal aid for detained families"}},
		{NodeType: events.NodeNeed, ImpliedQueries: []string{"volunteer drivers minneapolis"}},
	}
	s = Apply(s, events.NewSignalsExtractedEvent(runID, uuid.New(), "https://x", signals))
	assert.ElementsMatch(t, []string{"legal aid for detained families", "volunteer drivers minneapolis"}, s.ExpansionQueries)
}

func TestApply_RunCancelledSetsTerminalPhase(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{})
	s = Apply(s, events.NewRunCancelledEvent(runID, "budget exceeded"))
	assert.True(t, s.Cancelled)
	assert.Equal(t, events.PhaseComplete, s.Phase)
}

func TestApply_NodeLifecycleCountersIncrement(t *testing.T) {
	runID := uuid.New()
	s := New(runID, events.RegionRef{})
	nodeID := uuid.New()

	s = Apply(s, events.NewNodeCreatedEvent(runID, nodeID, events.NodeAid))
	s = Apply(s, events.NewNodeCorroboratedEvent(runID, nodeID, "https://second-source.org"))
	s = Apply(s, events.NewNodeRefreshedEvent(runID, nodeID))

	assert.Equal(t, 1, s.Stats.NodesCreated)
	assert.Equal(t, 1, s.Stats.NodesCorroborated)
	assert.Equal(t, 1, s.Stats.NodesRefreshed)
}
