package extractor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

type fakeModelClient struct{ response string }

func (f *fakeModelClient) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: []llm.Message{{
		Role: llm.ConversationRoleAssistant, Parts: []llm.Part{llm.TextPart{Text: f.response}},
	}}}, nil
}

func (f *fakeModelClient) Stream(ctx context.Context, req *llm.Request) (llm.Streamer, error) {
	return nil, llm.ErrStreamingUnsupported
}

func newTestExtractor(t *testing.T, response string) *Extractor {
	t.Helper()
	e, err := New(llm.NewExtractor(&fakeModelClient{response: response}))
	require.NoError(t, err)
	return e
}

var testProfile = region.Profile{Slug: "minneapolis", Name: "Minneapolis"}

func TestExtract_ParsesASignalWithExplicitLocation(t *testing.T) {
	e := newTestExtractor(t, `{"signals": [{
		"node_type": "Gathering", "title": "Block Party", "summary": "neighbors gathering", "is_firsthand": true,
		"about_location": {"lat": 44.95, "lng": -93.2, "precision": "exact"},
		"starts_at": "2026-08-01T18:00:00Z", "gathering_type": "community"
	}]}`)

	result, err := e.Extract(context.Background(), Content{SourceURL: "https://source.example", ContentType: "page"}, testProfile)
	require.NoError(t, err)
	require.Len(t, result.Signals, 1)
	assert.Empty(t, result.Dropped)

	s := result.Signals[0]
	assert.Equal(t, events.NodeGathering, s.NodeType)
	assert.Equal(t, "Block Party", s.Title)
	require.NotNil(t, s.AboutLocation)
	assert.Equal(t, events.PrecisionExact, s.AboutLocation.Precision)
	assert.NotNil(t, s.StartsAt)
}

func TestExtract_DropsGatheringWithNoStartsAt(t *testing.T) {
	e := newTestExtractor(t, `{"signals": [{
		"node_type": "Gathering", "title": "Mystery Meetup", "summary": "tbd", "is_firsthand": true
	}]}`)

	result, err := e.Extract(context.Background(), Content{SourceURL: "https://source.example", ContentType: "page"}, testProfile)
	require.NoError(t, err)
	assert.Empty(t, result.Signals)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "no date", result.Dropped[0].Reason)
}

func TestExtract_DropsNonFirsthandFeedContentFromUntrustedSource(t *testing.T) {
	e := newTestExtractor(t, `{"signals": [{
		"node_type": "Notice", "title": "City council meeting", "summary": "recap", "is_firsthand": false
	}]}`)

	result, err := e.Extract(context.Background(), Content{SourceURL: "https://source.example", ContentType: "feed", Trusted: false}, testProfile)
	require.NoError(t, err)
	assert.Empty(t, result.Signals)
	require.Len(t, result.Dropped, 1)
	assert.Equal(t, "not firsthand", result.Dropped[0].Reason)
}

func TestExtract_TrustedSourceSkipsFirsthandFilter(t *testing.T) {
	e := newTestExtractor(t, `{"signals": [{
		"node_type": "Notice", "title": "City council meeting", "summary": "recap", "is_firsthand": false
	}]}`)

	result, err := e.Extract(context.Background(), Content{SourceURL: "https://source.example", ContentType: "feed", Trusted: true}, testProfile)
	require.NoError(t, err)
	require.Len(t, result.Signals, 1)
}

func TestExtract_ActorLocationFallbackAppliesWhenNoContentLocation(t *testing.T) {
	actorLoc := &events.GeoPoint{Lat: 44.9, Lng: -93.3, Precision: events.PrecisionCity}
	e := newTestExtractor(t, `{"signals": [{
		"node_type": "Need", "title": "Need winter coats", "summary": "family needs coats", "is_firsthand": true
	}]}`)

	result, err := e.Extract(context.Background(), Content{
		SourceURL: "https://source.example", ContentType: "page", KnownActorLocation: actorLoc,
	}, testProfile)
	require.NoError(t, err)
	require.Len(t, result.Signals, 1)

	s := result.Signals[0]
	require.NotNil(t, s.FromLocation)
	require.NotNil(t, s.AboutLocation)
	assert.Equal(t, *actorLoc, *s.FromLocation)
	assert.Equal(t, *actorLoc, *s.AboutLocation)
}

func TestExtract_NoLocationAndNoActorLeavesLocationNil(t *testing.T) {
	e := newTestExtractor(t, `{"signals": [{
		"node_type": "Need", "title": "Thinking about my trip", "summary": "no place mentioned", "is_firsthand": true
	}]}`)

	result, err := e.Extract(context.Background(), Content{SourceURL: "https://source.example", ContentType: "page"}, testProfile)
	require.NoError(t, err)
	require.Len(t, result.Signals, 1)
	assert.Nil(t, result.Signals[0].AboutLocation)
}
