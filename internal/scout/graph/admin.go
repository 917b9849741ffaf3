package graph

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// MongoAdminQuery implements AdminQuery against the document store. It is
// deliberately narrower than a native property-graph engine would be: this
// store has no generic edges collection to traverse (relationships are
// denormalized onto the node documents that hold them, per mongo.go's
// collections), so Execute surfaces matching node documents rather than
// multi-hop paths. Depth and relationship-type restrictions are enforced
// by lint.Investigator before a query ever reaches here; Execute's own
// contribution is translating a validated label set into a bounded find
// against the corresponding collection(s).
type MongoAdminQuery struct {
	cols  collections
	limit int
}

// NewMongoAdminQuery constructs the admin query surface over an already-
// opened database handle. limit caps rows returned per label to keep an
// operator's ad hoc investigation from scanning an entire collection.
func NewMongoAdminQuery(db *mongo.Database, limit int) MongoAdminQuery {
	if limit <= 0 {
		limit = 200
	}
	return MongoAdminQuery{cols: newCollections(db), limit: limit}
}

// Execute runs a validated, label-restricted query. query and params are
// accepted for interface parity with a future native-graph backend; this
// implementation only consults params["labels"] (set by the caller from
// the same validated label set lint.Investigator already checked against
// its Permissions), since the free-text Cypher string itself carries no
// information this collection-backed implementation can use beyond what
// Investigator has already extracted and validated.
func (q MongoAdminQuery) Execute(ctx context.Context, query string, params map[string]any) ([]map[string]any, error) {
	labels, _ := params["labels"].([]string)
	if len(labels) == 0 {
		return nil, fmt.Errorf("graph: admin query requires at least one validated label in params[\"labels\"]")
	}

	var out []map[string]any
	for _, label := range labels {
		col, ok := q.collectionForLabel(label)
		if !ok {
			continue
		}
		cur, err := col.Find(ctx, bson.D{}, options.Find().SetLimit(int64(q.limit)))
		if err != nil {
			return nil, fmt.Errorf("%w: admin find %s: %v", ErrGraphReadFailed, label, err)
		}
		rows, err := drainToMaps(ctx, cur)
		if err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (q MongoAdminQuery) collectionForLabel(label string) (collection, bool) {
	switch events.NodeType(label) {
	case events.NodeGathering, events.NodeAid, events.NodeNeed, events.NodeNotice, events.NodeTension:
		return q.cols.signals, true
	}
	switch label {
	case "Actor":
		return q.cols.actors, true
	case "Source":
		return q.cols.sources, true
	case "Place":
		return q.cols.places, true
	case "Situation":
		return q.cols.situations, true
	default:
		return nil, false
	}
}

func drainToMaps(ctx context.Context, cur cursor) ([]map[string]any, error) {
	defer cur.Close(ctx)
	var out []map[string]any
	for cur.Next(ctx) {
		var doc bson.M
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: admin decode: %v", ErrGraphReadFailed, err)
		}
		row := make(map[string]any, len(doc))
		for k, v := range doc {
			row[k] = v
		}
		out = append(out, row)
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: admin cursor: %v", ErrGraphReadFailed, err)
	}
	return out, nil
}
