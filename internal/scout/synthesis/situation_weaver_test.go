package synthesis

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

func TestWeaveSituation_NilWhenBelowMinRespondents(t *testing.T) {
	s := New(nil, nil, nil, nil)
	tension := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "eviction wave"}
	respondent := graph.Signal{ID: uuid.New(), NodeType: events.NodeAid}

	result := s.WeaveSituation(uuid.New(), tension, []graph.Signal{respondent}, "", false)
	assert.Nil(t, result)
}

func TestWeaveSituation_ConfirmedWhenDiverseAndMultipleEntities(t *testing.T) {
	s := New(nil, nil, nil, nil)
	tension := graph.Signal{
		ID: uuid.New(), NodeType: events.NodeTension, Title: "eviction wave",
		AboutLocation: &events.GeoPoint{Lat: 44.9, Lng: -93.2}, Sensitivity: "high",
	}
	respondents := []graph.Signal{
		{ID: uuid.New(), NodeType: events.NodeAid, AboutLocation: &events.GeoPoint{Lat: 44.95, Lng: -93.25}},
		{ID: uuid.New(), NodeType: events.NodeGathering},
	}

	result := s.WeaveSituation(uuid.New(), tension, respondents, "", false)
	require.NotNil(t, result)
	assert.Equal(t, "confirmed", result.Status)
	assert.Equal(t, events.TypeSituationIdentified, result.Event.Type())
}

func TestWeaveSituation_EchoWhenSingleTypeButEnoughSignals(t *testing.T) {
	s := New(nil, nil, nil, nil)
	tension := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "rent hikes"}
	respondents := []graph.Signal{
		{ID: uuid.New(), NodeType: events.NodeAid},
		{ID: uuid.New(), NodeType: events.NodeAid},
		{ID: uuid.New(), NodeType: events.NodeAid},
		{ID: uuid.New(), NodeType: events.NodeAid},
	}

	result := s.WeaveSituation(uuid.New(), tension, respondents, "", false)
	require.NotNil(t, result)
	assert.Equal(t, "echo", result.Status)
}

func TestWeaveSituation_EmitsSituationChangedWhenAmending(t *testing.T) {
	s := New(nil, nil, nil, nil)
	tension := graph.Signal{ID: uuid.New(), NodeType: events.NodeTension, Title: "rent hikes"}
	respondents := []graph.Signal{
		{ID: uuid.New(), NodeType: events.NodeAid},
		{ID: uuid.New(), NodeType: events.NodeGathering},
	}

	result := s.WeaveSituation(uuid.New(), tension, respondents, "rent-hikes", true)
	require.NotNil(t, result)
	assert.Equal(t, events.TypeSituationChanged, result.Event.Type())
}

func TestArcStatus_MatchesExactRule(t *testing.T) {
	assert.Equal(t, "confirmed", arcStatus(2, 2, 2))
	assert.Equal(t, "echo", arcStatus(1, 1, 5))
	assert.Equal(t, "emerging", arcStatus(1, 1, 2))
}

func TestComputeTemperature_TracksMaxSensitivity(t *testing.T) {
	signals := []graph.Signal{
		{Sensitivity: "low"},
		{Sensitivity: "high"},
		{Sensitivity: "medium"},
	}
	assert.Equal(t, float32(1), computeTemperature(signals))
}

func TestCentroidOf_IgnoresSignalsWithoutLocation(t *testing.T) {
	signals := []graph.Signal{
		{AboutLocation: &events.GeoPoint{Lat: 10, Lng: 20}},
		{},
		{AboutLocation: &events.GeoPoint{Lat: 30, Lng: 40}},
	}
	centroid := centroidOf(signals)
	assert.Equal(t, 20.0, centroid.Lat)
	assert.Equal(t, 30.0, centroid.Lng)
}
