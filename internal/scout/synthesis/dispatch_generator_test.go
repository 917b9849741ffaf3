package synthesis

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

func TestGenerateDispatch_ErrorsWithNoSignals(t *testing.T) {
	s := newSynthesizer(`{}`)
	_, err := s.GenerateDispatch(context.Background(), uuid.New(), "eviction-wave", nil)
	require.Error(t, err)
}

func TestGenerateDispatch_ErrorsWhenDraftCitesNoValidSignal(t *testing.T) {
	s := newSynthesizer(`{"text": "Something happened.", "cited_signal_ids": ["not-a-uuid"]}`)
	signal := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "eviction wave"}

	_, err := s.GenerateDispatch(context.Background(), uuid.New(), "eviction-wave", []graph.Signal{signal})
	require.Error(t, err)
}

func TestGenerateDispatch_ReturnsEventWithCitedSignals(t *testing.T) {
	signalID := uuid.New()
	s := newSynthesizer(`{"text": "Evictions are rising near downtown.", "cited_signal_ids": ["` + signalID.String() + `"]}`)
	signal := graph.Signal{ID: signalID, NodeType: events.NodeTension, Title: "eviction wave", Summary: "rising filings"}

	runID := uuid.New()
	event, err := s.GenerateDispatch(context.Background(), runID, "eviction-wave", []graph.Signal{signal})
	require.NoError(t, err)
	assert.Equal(t, events.TypeDispatchCreated, event.Type())
}
