package fetcher

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type fakeSingleResult struct {
	doc bson.M
	err error
}

func (f fakeSingleResult) Decode(v any) error {
	if f.err != nil {
		return f.err
	}
	raw, err := bson.Marshal(f.doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}
func (f fakeSingleResult) Err() error { return f.err }

type fakeCollection struct {
	docs    map[string]bson.M
	findKey func(filter any) string
}

func newFakeCollection(findKey func(filter any) string) *fakeCollection {
	return &fakeCollection{docs: make(map[string]bson.M), findKey: findKey}
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) singleResult {
	key := f.findKey(filter)
	doc, ok := f.docs[key]
	if !ok {
		return fakeSingleResult{err: mongo.ErrNoDocuments}
	}
	return fakeSingleResult{doc: doc}
}

func (f *fakeCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	key := f.findKey(filter)
	set := update.(bson.M)["$set"]
	raw, err := bson.Marshal(set)
	if err != nil {
		return nil, err
	}
	var doc bson.M
	if err := bson.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	f.docs[key] = doc
	return &mongo.UpdateResult{}, nil
}

func pageKey(filter any) string {
	m := filter.(bson.M)
	return m["url"].(string) + "|" + m["content_hash"].(string)
}

func freshnessKey(filter any) string {
	m := filter.(bson.M)
	return m["source_id"].(string) + "|" + m["content_type"].(string)
}

func TestArchive_SeenHash_FalseUntilStored(t *testing.T) {
	pages := newFakeCollection(pageKey)
	archive := newArchiveFromCollections(pages, newFakeCollection(freshnessKey))
	ctx := context.Background()

	seen, err := archive.SeenHash(ctx, "https://civic.example/a", "hash1")
	require.NoError(t, err)
	assert.False(t, seen)

	require.NoError(t, archive.StorePage(ctx, Page{URL: "https://civic.example/a", ContentHash: "hash1", FetchedAt: time.Now()}))

	seen, err = archive.SeenHash(ctx, "https://civic.example/a", "hash1")
	require.NoError(t, err)
	assert.True(t, seen)
}

func TestArchive_IsFresh_RespectsMaxAgeAndCachedOnly(t *testing.T) {
	freshness := newFakeCollection(freshnessKey)
	archive := newArchiveFromCollections(newFakeCollection(pageKey), freshness)
	ctx := context.Background()

	fresh, err := archive.IsFresh(ctx, "source-1", "page", Options{MaxAge: time.Hour})
	require.NoError(t, err)
	assert.False(t, fresh, "no freshness record yet")

	require.NoError(t, archive.TouchFreshness(ctx, "source-1", "page", time.Now()))

	fresh, err = archive.IsFresh(ctx, "source-1", "page", Options{MaxAge: time.Hour})
	require.NoError(t, err)
	assert.True(t, fresh)

	fresh, err = archive.IsFresh(ctx, "source-1", "page", Options{MaxAge: time.Nanosecond})
	require.NoError(t, err)
	assert.False(t, fresh, "record is older than the requested max age")

	fresh, err = archive.IsFresh(ctx, "source-1", "page", Options{CachedOnly: true})
	require.NoError(t, err)
	assert.True(t, fresh, "cached-only accepts any prior fetch")
}

func TestArchive_IsFresh_NoOptionsAlwaysRefetches(t *testing.T) {
	archive := newArchiveFromCollections(newFakeCollection(pageKey), newFakeCollection(freshnessKey))
	fresh, err := archive.IsFresh(context.Background(), "source-1", "page", Options{})
	require.NoError(t, err)
	assert.False(t, fresh)
}
