package graph

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

func newTestReader(signals *fakeCollection) *MongoReader {
	return &MongoReader{collections: collections{
		signals:    signals,
		actors:     newFakeCollection(),
		sources:    newFakeCollection(),
		places:     newFakeCollection(),
		resources:  newFakeCollection(),
		citations:  newFakeCollection(),
		situations: newFakeCollection(),
	}}
}

func TestMongoReader_SignalByID_NotFoundReturnsNilNil(t *testing.T) {
	r := newTestReader(newFakeCollection())
	s, err := r.SignalByID(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMongoReader_SignalByID_ReturnsDecodedSignal(t *testing.T) {
	id := uuid.New()
	signals := newFakeCollection(bson.M{
		"id": id, "node_type": "Gathering", "title": "Block Party", "summary": "a gathering",
		"confidence": 0.9, "corroboration_count": 3,
	})
	r := newTestReader(signals)

	s, err := r.SignalByID(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, "Block Party", s.Title)
	assert.Equal(t, events.NodeGathering, s.NodeType)
	assert.Equal(t, 3, s.CorroborationCount)
}

func TestMongoReader_SourceByURL_NotFoundReturnsNilNil(t *testing.T) {
	r := newTestReader(newFakeCollection())
	s, err := r.SourceByURL(context.Background(), "https://absent.example")
	require.NoError(t, err)
	assert.Nil(t, s)
}

func TestMongoReader_ContentHashProcessed_TrueWhenCitationExists(t *testing.T) {
	r := newTestReader(newFakeCollection())
	r.citations = newFakeCollection(bson.M{"url": "https://x.example", "content_hash": "abc"})

	ok, err := r.ContentHashProcessed(context.Background(), uuid.New(), "https://x.example", "abc")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.ContentHashProcessed(context.Background(), uuid.New(), "https://x.example", "different-hash")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestBoundingBox_Contains(t *testing.T) {
	bbox := BoundingBox{MinLat: 44.8, MaxLat: 45.1, MinLng: -93.4, MaxLng: -93.0}
	assert.True(t, bbox.Contains(events.GeoPoint{Lat: 44.98, Lng: -93.27}))
	assert.False(t, bbox.Contains(events.GeoPoint{Lat: 46.0, Lng: -93.27}))
}
