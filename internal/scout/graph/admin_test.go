package graph

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
)

func TestMongoAdminQuery_ExecuteReturnsDocsForValidatedLabels(t *testing.T) {
	q := MongoAdminQuery{
		cols: collections{
			signals: newFakeCollection(bson.M{"id": "t1", "node_type": "Tension", "title": "eviction wave"}),
			actors:  newFakeCollection(bson.M{"id": "a1", "name": "Simpson Housing"}),
		},
		limit: 200,
	}

	rows, err := q.Execute(context.Background(), "MATCH (t:Tension) RETURN t", map[string]any{"labels": []string{"Tension"}})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "eviction wave", rows[0]["title"])
}

func TestMongoAdminQuery_ExecuteErrorsWithoutLabels(t *testing.T) {
	q := MongoAdminQuery{cols: collections{signals: newFakeCollection()}, limit: 200}

	_, err := q.Execute(context.Background(), "MATCH (t) RETURN t", nil)
	require.Error(t, err)
}

func TestMongoAdminQuery_CollectionForLabel_CoversEveryDocumentedLabel(t *testing.T) {
	q := MongoAdminQuery{cols: collections{
		signals:    newFakeCollection(),
		actors:     newFakeCollection(),
		sources:    newFakeCollection(),
		places:     newFakeCollection(),
		situations: newFakeCollection(),
	}}

	for _, label := range []string{"Tension", "Aid", "Need", "Notice", "Gathering", "Actor", "Source", "Place", "Situation"} {
		_, ok := q.collectionForLabel(label)
		assert.True(t, ok, "label %s should resolve to a collection", label)
	}

	_, ok := q.collectionForLabel("User")
	assert.False(t, ok)
}
