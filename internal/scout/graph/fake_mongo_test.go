package graph

import (
	"context"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// fakeCollection is a minimal in-memory stand-in for *mongo.Collection,
// matching the collection interface so the projector and MongoReader can
// be exercised without a live Mongo instance. It understands exact-value
// filters, $or, and the handful of update operators this package issues
// ($set, $setOnInsert, $inc, $addToSet, $pull, $push) — enough to verify
// idempotent MERGE behavior, not a general aggregation engine.
type fakeCollection struct {
	docs []bson.M
}

func newFakeCollection(seed ...bson.M) *fakeCollection {
	return &fakeCollection{docs: seed}
}

func (f *fakeCollection) match(filter bson.M) int {
	for i, d := range f.docs {
		if docMatches(d, filter) {
			return i
		}
	}
	return -1
}

func docMatches(doc, filter bson.M) bool {
	for k, v := range filter {
		if k == "$or" {
			clauses, _ := v.([]bson.M)
			ok := false
			for _, clause := range clauses {
				if docMatches(doc, clause) {
					ok = true
					break
				}
			}
			if !ok {
				return false
			}
			continue
		}
		if !fieldMatches(doc[k], v) {
			return false
		}
	}
	return true
}

func fieldMatches(got, want any) bool {
	// Support $ne for the excludeAbandoned filter in UnlinkedSignals.
	if m, ok := want.(bson.M); ok {
		if ne, has := m["$ne"]; has {
			return got != ne
		}
		if _, has := m["$exists"]; has {
			return got == nil
		}
		return true // geo/vector operators aren't matched by the fake.
	}
	if got == nil {
		return false
	}
	return got == want
}

func (f *fakeCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) singleResult {
	fm, _ := filter.(bson.M)
	i := f.match(fm)
	if i < 0 {
		return fakeSingleResult{err: mongo.ErrNoDocuments}
	}
	return fakeSingleResult{doc: f.docs[i]}
}

func (f *fakeCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error) {
	fm, _ := filter.(bson.M)
	var matched []bson.M
	for _, d := range f.docs {
		if docMatches(d, fm) {
			matched = append(matched, d)
		}
	}
	return &fakeCursor{docs: matched, i: -1}, nil
}

func (f *fakeCollection) Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (cursor, error) {
	return &fakeCursor{}, nil
}

func (f *fakeCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	fm, _ := filter.(bson.M)
	um, _ := update.(bson.M)
	i := f.match(fm)
	if i < 0 {
		doc := bson.M{}
		for k, v := range fm {
			if k != "$or" {
				doc[k] = v
			}
		}
		applyUpdate(doc, um)
		f.docs = append(f.docs, doc)
		return &mongo.UpdateResult{UpsertedCount: 1}, nil
	}
	applyUpdate(f.docs[i], um)
	return &mongo.UpdateResult{ModifiedCount: 1}, nil
}

func (f *fakeCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	doc, err := toBsonM(document)
	if err != nil {
		return nil, err
	}
	f.docs = append(f.docs, doc)
	return &mongo.InsertOneResult{}, nil
}

func (f *fakeCollection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	fm, _ := filter.(bson.M)
	i := f.match(fm)
	if i < 0 {
		return &mongo.DeleteResult{}, nil
	}
	f.docs = append(f.docs[:i], f.docs[i+1:]...)
	return &mongo.DeleteResult{DeletedCount: 1}, nil
}

func applyUpdate(doc bson.M, update bson.M) {
	if setOnInsert, ok := update["$setOnInsert"]; ok {
		merged, _ := toBsonM(setOnInsert)
		for k, v := range merged {
			if _, exists := doc[k]; !exists {
				doc[k] = v
			}
		}
	}
	if set, ok := update["$set"]; ok {
		merged, _ := toBsonM(set)
		for k, v := range merged {
			doc[k] = v
		}
	}
	if inc, ok := update["$inc"].(bson.M); ok {
		for k, v := range inc {
			cur, _ := doc[k].(int)
			delta, _ := v.(int)
			doc[k] = cur + delta
		}
	}
	if add, ok := update["$addToSet"].(bson.M); ok {
		for k, v := range add {
			list, _ := doc[k].([]any)
			found := false
			for _, existing := range list {
				if existing == v {
					found = true
					break
				}
			}
			if !found {
				doc[k] = append(list, v)
			}
		}
	}
	if pull, ok := update["$pull"].(bson.M); ok {
		for k, v := range pull {
			list, _ := doc[k].([]any)
			var filtered []any
			for _, existing := range list {
				if existing != v {
					filtered = append(filtered, existing)
				}
			}
			doc[k] = filtered
		}
	}
	if push, ok := update["$push"].(bson.M); ok {
		for k, v := range push {
			list, _ := doc[k].([]any)
			doc[k] = append(list, v)
		}
	}
}

func toBsonM(v any) (bson.M, error) {
	if m, ok := v.(bson.M); ok {
		return m, nil
	}
	raw, err := bson.Marshal(v)
	if err != nil {
		return nil, err
	}
	var m bson.M
	if err := bson.Unmarshal(raw, &m); err != nil {
		return nil, err
	}
	return m, nil
}

type fakeSingleResult struct {
	doc bson.M
	err error
}

func (r fakeSingleResult) Decode(v any) error {
	if r.err != nil {
		return r.err
	}
	raw, err := bson.Marshal(r.doc)
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}

type fakeCursor struct {
	docs []bson.M
	i    int
}

func (c *fakeCursor) Next(ctx context.Context) bool { c.i++; return c.i < len(c.docs) }
func (c *fakeCursor) Decode(v any) error {
	raw, err := bson.Marshal(c.docs[c.i])
	if err != nil {
		return err
	}
	return bson.Unmarshal(raw, v)
}
func (c *fakeCursor) Err() error                      { return nil }
func (c *fakeCursor) Close(ctx context.Context) error { return nil }
