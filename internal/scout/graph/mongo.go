package graph

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// ErrGraphReadFailed wraps backing-store errors from Reader methods
// (section 7's GraphReadFailed kind).
var ErrGraphReadFailed = errors.New("graph: read failed")

// ErrGraphProjectionFailed wraps backing-store errors from projector
// writes (section 7's GraphProjectionFailed kind — fatal for the event).
var ErrGraphProjectionFailed = errors.New("graph: projection failed")

const (
	collSignals    = "scout_signals"
	collActors     = "scout_actors"
	collSources    = "scout_sources"
	collPlaces     = "scout_places"
	collResources  = "scout_resources"
	collCitations  = "scout_citations"
	collSituations = "scout_situations"
)

// cursor is the minimal surface of *mongo.Cursor used here, so tests can
// substitute an in-memory fake. Mirrors the collection/cursor seam used
// for the runlog Mongo client.
type cursor interface {
	Next(ctx context.Context) bool
	Decode(v any) error
	Err() error
	Close(ctx context.Context) error
}

// singleResult is the minimal surface of *mongo.SingleResult this package
// depends on, so FindOne can be faked in tests the same way row/rows are
// faked for the event store.
type singleResult interface {
	Decode(v any) error
}

// collection is the minimal surface of *mongo.Collection this package
// depends on.
type collection interface {
	FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) singleResult
	Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error)
	Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (cursor, error)
	UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error)
	InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error)
	DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error)
}

// mongoCollection adapts *mongo.Collection to collection, wrapping Find
// and Aggregate's *mongo.Cursor return into our narrower cursor interface.
type mongoCollection struct {
	c *mongo.Collection
}

func (m mongoCollection) FindOne(ctx context.Context, filter any, opts ...options.Lister[options.FindOneOptions]) singleResult {
	return m.c.FindOne(ctx, filter, opts...)
}

func (m mongoCollection) Find(ctx context.Context, filter any, opts ...options.Lister[options.FindOptions]) (cursor, error) {
	return m.c.Find(ctx, filter, opts...)
}

func (m mongoCollection) Aggregate(ctx context.Context, pipeline any, opts ...options.Lister[options.AggregateOptions]) (cursor, error) {
	return m.c.Aggregate(ctx, pipeline, opts...)
}

func (m mongoCollection) UpdateOne(ctx context.Context, filter, update any, opts ...options.Lister[options.UpdateOneOptions]) (*mongo.UpdateResult, error) {
	return m.c.UpdateOne(ctx, filter, update, opts...)
}

func (m mongoCollection) InsertOne(ctx context.Context, document any, opts ...options.Lister[options.InsertOneOptions]) (*mongo.InsertOneResult, error) {
	return m.c.InsertOne(ctx, document, opts...)
}

func (m mongoCollection) DeleteOne(ctx context.Context, filter any, opts ...options.Lister[options.DeleteOneOptions]) (*mongo.DeleteResult, error) {
	return m.c.DeleteOne(ctx, filter, opts...)
}

// collections bundles every collection handle the store needs. Both
// MongoReader and the projector embed this so natural-key indexes are
// only ever declared in one place (EnsureIndexes).
type collections struct {
	signals    collection
	actors     collection
	sources    collection
	places     collection
	resources  collection
	citations  collection
	situations collection
}

func newCollections(db *mongo.Database) collections {
	return collections{
		signals:    mongoCollection{db.Collection(collSignals)},
		actors:     mongoCollection{db.Collection(collActors)},
		sources:    mongoCollection{db.Collection(collSources)},
		places:     mongoCollection{db.Collection(collPlaces)},
		resources:  mongoCollection{db.Collection(collResources)},
		citations:  mongoCollection{db.Collection(collCitations)},
		situations: mongoCollection{db.Collection(collSituations)},
	}
}

// EnsureIndexes creates the natural-key and geo indexes the graph relies
// on: unique id/slug/url indexes for idempotent MERGE and a 2dsphere index
// for geo bbox queries. It does not create the Atlas vector-search index
// used for embedding similarity: vector search indexes are managed through
// the Atlas Search index management API rather than the standard index
// API, so that index has to exist already.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	signals := db.Collection(collSignals)
	_, err := signals.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "source_url", Value: 1}, {Key: "content_hash", Value: 1}}},
		{Keys: bson.D{{Key: "about_location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "node_type", Value: 1}, {Key: "title", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("%w: ensure signal indexes: %v", ErrGraphProjectionFailed, err)
	}
	if _, err := db.Collection(collSources).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "url", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("%w: ensure source index: %v", ErrGraphProjectionFailed, err)
	}
	if _, err := db.Collection(collActors).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("%w: ensure actor index: %v", ErrGraphProjectionFailed, err)
	}
	if _, err := db.Collection(collPlaces).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("%w: ensure place index: %v", ErrGraphProjectionFailed, err)
	}
	if _, err := db.Collection(collCitations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "url", Value: 1}, {Key: "content_hash", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("%w: ensure citation index: %v", ErrGraphProjectionFailed, err)
	}
	if _, err := db.Collection(collSituations).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "slug", Value: 1}}, Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("%w: ensure situation index: %v", ErrGraphProjectionFailed, err)
	}
	return nil
}

// --- bson document shapes -------------------------------------------------

type signalDoc struct {
	ID                  uuid.UUID  `bson:"id"`
	NodeType            string     `bson:"node_type"`
	Title               string     `bson:"title"`
	Summary             string     `bson:"summary"`
	SourceURL           string     `bson:"source_url"`
	AboutLocation       *geoDoc    `bson:"about_location,omitempty"`
	AboutLocationName   string     `bson:"about_location_name"`
	FromLocation        *geoDoc    `bson:"from_location,omitempty"`
	StartsAt            *time.Time `bson:"starts_at,omitempty"`
	EndsAt              *time.Time `bson:"ends_at,omitempty"`
	Schedule            string     `bson:"schedule"`
	Confidence          float32    `bson:"confidence"`
	Sensitivity         string     `bson:"sensitivity"`
	ReviewStatus        string     `bson:"review_status"`
	CreatedAt           time.Time  `bson:"created_at"`
	LastConfirmedActive time.Time  `bson:"last_confirmed_active"`
	CorroborationCount  int        `bson:"corroboration_count"`
	SourceDiversity     int        `bson:"source_diversity"`
	Embedding           []float32  `bson:"embedding"`
	ContentHash         string     `bson:"content_hash"`
	Expired             bool       `bson:"expired"`
	ExpiredAt           *time.Time `bson:"expired_at,omitempty"`
	GatheringType       string     `bson:"gathering_type,omitempty"`
	Severity            string     `bson:"severity,omitempty"`
	SourceAuthority     string     `bson:"source_authority,omitempty"`
	Category            string     `bson:"category,omitempty"`
	CauseHeat           float32    `bson:"cause_heat,omitempty"`
	CitationURLs        []string   `bson:"citation_urls"`
}

// geoDoc is a GeoJSON Point, required shape for a 2dsphere index.
type geoDoc struct {
	Type        string    `bson:"type"`
	Coordinates []float64 `bson:"coordinates"` // [lng, lat]
}

func toGeoDoc(p *events.GeoPoint) *geoDoc {
	if p == nil {
		return nil
	}
	return &geoDoc{Type: "Point", Coordinates: []float64{p.Lng, p.Lat}}
}

func fromGeoDoc(g *geoDoc) *events.GeoPoint {
	if g == nil || len(g.Coordinates) != 2 {
		return nil
	}
	return &events.GeoPoint{Lng: g.Coordinates[0], Lat: g.Coordinates[1]}
}

func (d signalDoc) toSignal() Signal {
	return Signal{
		ID: d.ID, NodeType: events.NodeType(d.NodeType), Title: d.Title, Summary: d.Summary,
		SourceURL: d.SourceURL, AboutLocation: fromGeoDoc(d.AboutLocation), AboutLocationName: d.AboutLocationName,
		FromLocation: fromGeoDoc(d.FromLocation), StartsAt: d.StartsAt, EndsAt: d.EndsAt, Schedule: d.Schedule,
		Confidence: d.Confidence, Sensitivity: d.Sensitivity, ReviewStatus: events.ReviewStatus(d.ReviewStatus),
		CreatedAt: d.CreatedAt, LastConfirmedActive: d.LastConfirmedActive, CorroborationCount: d.CorroborationCount,
		SourceDiversity: d.SourceDiversity, Embedding: d.Embedding, ContentHash: d.ContentHash, Expired: d.Expired,
		ExpiredAt: d.ExpiredAt, GatheringType: d.GatheringType, Severity: d.Severity, SourceAuthority: d.SourceAuthority,
		Category: d.Category, CauseHeat: d.CauseHeat,
	}
}

type actorDoc struct {
	ID       uuid.UUID `bson:"id"`
	Name     string    `bson:"name"`
	Location *geoDoc   `bson:"location,omitempty"`
}

type sourceDoc struct {
	ID                   uuid.UUID  `bson:"id"`
	URL                  string     `bson:"url"`
	Weight               float32    `bson:"weight"`
	CadenceHours         float32    `bson:"cadence_hours"`
	ConsecutiveEmptyRuns int        `bson:"consecutive_empty_runs"`
	LastScrapedAt        *time.Time `bson:"last_scraped_at,omitempty"`
	SourceRole           string     `bson:"source_role"`
	DiscoveryMethod      string     `bson:"discovery_method"`
	Deactivated          bool       `bson:"deactivated"`
}

type placeDoc struct {
	Slug           string  `bson:"slug"`
	Name           string  `bson:"name"`
	Location       geoDoc  `bson:"location"`
	GatheringCount int     `bson:"gathering_count"`
	TensionCount   int     `bson:"tension_count"`
}

type situationDoc struct {
	Slug          string      `bson:"slug"`
	Status        string      `bson:"status"`
	ArcState      string      `bson:"arc_state"`
	Centroid      geoDoc      `bson:"centroid"`
	Temperature   float32     `bson:"temperature"`
	Clarity       float32     `bson:"clarity"`
	TypeDiversity int         `bson:"type_diversity"`
	EntityCount   int         `bson:"entity_count"`
	SignalIDs     []uuid.UUID `bson:"signal_ids"`
	Version       int         `bson:"version"`
	Dispatches    []dispatchDoc `bson:"dispatches"`
}

type dispatchDoc struct {
	Text         string      `bson:"text"`
	CitedSignals []uuid.UUID `bson:"cited_signals"`
	CreatedAt    time.Time   `bson:"created_at"`
}

func (d situationDoc) toSituation() Situation {
	dispatches := make([]Dispatch, len(d.Dispatches))
	for i, dd := range d.Dispatches {
		dispatches[i] = Dispatch{Text: dd.Text, CitedSignals: dd.CitedSignals, CreatedAt: dd.CreatedAt}
	}
	return Situation{
		Slug: d.Slug, Status: d.Status, ArcState: d.ArcState, Centroid: *fromGeoDoc(&d.Centroid),
		Temperature: d.Temperature, Clarity: d.Clarity, TypeDiversity: d.TypeDiversity, EntityCount: d.EntityCount,
		SignalIDs: d.SignalIDs, Version: d.Version, Dispatches: dispatches,
	}
}

// --- MongoReader -----------------------------------------------------------

// MongoReader implements Reader against MongoDB's native vector search
// and 2dsphere geo indexes (section 6.4's "property-graph database with
// native vector and spatial support").
type MongoReader struct {
	collections
}

// NewMongoReader constructs a Reader. The caller is responsible for having
// called EnsureIndexes once at startup.
func NewMongoReader(db *mongo.Database) *MongoReader {
	return &MongoReader{collections: newCollections(db)}
}

func (r *MongoReader) SignalByID(ctx context.Context, id uuid.UUID) (*Signal, error) {
	var doc signalDoc
	err := r.signals.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: signal_by_id: %v", ErrGraphReadFailed, err)
	}
	s := doc.toSignal()
	return &s, nil
}

func (r *MongoReader) SignalByTitleAndTypeFromURL(ctx context.Context, title string, nodeType events.NodeType, url string) (*Signal, error) {
	var doc signalDoc
	err := r.signals.FindOne(ctx, bson.M{"title": title, "node_type": string(nodeType), "source_url": url}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: signal_by_title_type_url: %v", ErrGraphReadFailed, err)
	}
	s := doc.toSignal()
	return &s, nil
}

func (r *MongoReader) SignalByTitleAndType(ctx context.Context, title string, nodeType events.NodeType) (*Signal, error) {
	var doc signalDoc
	err := r.signals.FindOne(ctx, bson.M{"title": title, "node_type": string(nodeType)}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: signal_by_title_type: %v", ErrGraphReadFailed, err)
	}
	s := doc.toSignal()
	return &s, nil
}

// SimilarSignals runs an Atlas $vectorSearch aggregation filtered to the
// region bounding box, implementing the spatial gate required by section
// 4.7 directly in the query rather than as a post-filter, so the database
// never returns (and the dedup decider never has to discard) cross-region
// matches.
func (r *MongoReader) SimilarSignals(ctx context.Context, embedding []float32, nodeType events.NodeType, bbox BoundingBox, threshold float32, limit int) ([]SimilarityMatch, error) {
	pipeline := bson.A{
		bson.M{"$vectorSearch": bson.M{
			"index":       "signal_embedding_index",
			"path":        "embedding",
			"queryVector": embedding,
			"numCandidates": limit * 20,
			"limit":         limit,
			"filter": bson.M{
				"node_type": string(nodeType),
				"about_location": bson.M{
					"$geoWithin": bson.M{
						"$box": bson.A{
							bson.A{bbox.MinLng, bbox.MinLat},
							bson.A{bbox.MaxLng, bbox.MaxLat},
						},
					},
				},
			},
		}},
		bson.M{"$project": bson.M{
			"id": 1, "source_url": 1,
			"score": bson.M{"$meta": "vectorSearchScore"},
		}},
	}
	cur, err := r.signals.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("%w: similar_signals: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)

	var out []SimilarityMatch
	for cur.Next(ctx) {
		var row struct {
			ID        uuid.UUID `bson:"id"`
			SourceURL string    `bson:"source_url"`
			Score     float64   `bson:"score"`
		}
		if err := cur.Decode(&row); err != nil {
			return nil, fmt.Errorf("%w: similar_signals decode: %v", ErrGraphReadFailed, err)
		}
		if float32(row.Score) < threshold {
			continue
		}
		out = append(out, SimilarityMatch{ExistingID: row.ID, Similarity: float32(row.Score), ExistingURL: row.SourceURL})
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("%w: similar_signals cursor: %v", ErrGraphReadFailed, err)
	}
	return out, nil
}

func (r *MongoReader) ActorByName(ctx context.Context, name string) (*Actor, error) {
	var doc actorDoc
	err := r.actors.FindOne(ctx, bson.M{"name": name}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: actor_by_name: %v", ErrGraphReadFailed, err)
	}
	return &Actor{ID: doc.ID, Name: doc.Name, Location: fromGeoDoc(doc.Location)}, nil
}

// SimilarActors matches actors whose name, case/whitespace-folded, equals
// name's own fold but whose literal spelling differs — the exact-key
// index lookup ActorByName performs would miss these, which is why
// Enrichment's actor-dedup pass exists.
func (r *MongoReader) SimilarActors(ctx context.Context, name string) ([]Actor, error) {
	folded := strings.ToLower(strings.TrimSpace(name))
	pattern := "^\\s*" + regexp.QuoteMeta(folded) + "\\s*$"
	cur, err := r.actors.Find(ctx, bson.M{
		"name": bson.M{"$regex": pattern, "$options": "i", "$ne": name},
	})
	if err != nil {
		return nil, fmt.Errorf("%w: similar_actors: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)
	var out []Actor
	for cur.Next(ctx) {
		var doc actorDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: similar_actors decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, Actor{ID: doc.ID, Name: doc.Name, Location: fromGeoDoc(doc.Location)})
	}
	return out, cur.Err()
}

func (r *MongoReader) SourceByID(ctx context.Context, id uuid.UUID) (*Source, error) {
	var doc sourceDoc
	err := r.sources.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: source_by_id: %v", ErrGraphReadFailed, err)
	}
	return &Source{
		ID: doc.ID, URL: doc.URL, Weight: doc.Weight, CadenceHours: doc.CadenceHours,
		ConsecutiveEmptyRuns: doc.ConsecutiveEmptyRuns, LastScrapedAt: doc.LastScrapedAt,
		SourceRole: doc.SourceRole, DiscoveryMethod: doc.DiscoveryMethod, Deactivated: doc.Deactivated,
	}, nil
}

func (r *MongoReader) SourceByURL(ctx context.Context, url string) (*Source, error) {
	var doc sourceDoc
	err := r.sources.FindOne(ctx, bson.M{"url": url}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: source_by_url: %v", ErrGraphReadFailed, err)
	}
	return &Source{
		ID: doc.ID, URL: doc.URL, Weight: doc.Weight, CadenceHours: doc.CadenceHours,
		ConsecutiveEmptyRuns: doc.ConsecutiveEmptyRuns, LastScrapedAt: doc.LastScrapedAt,
		SourceRole: doc.SourceRole, DiscoveryMethod: doc.DiscoveryMethod, Deactivated: doc.Deactivated,
	}, nil
}

func (r *MongoReader) SourcesDue(ctx context.Context, phase events.Phase, budget int) ([]Source, error) {
	cur, err := r.sources.Find(ctx, bson.M{"deactivated": false}, options.Find().SetLimit(int64(budget)).SetSort(bson.D{{Key: "weight", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("%w: sources_due: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)
	var out []Source
	for cur.Next(ctx) {
		var doc sourceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: sources_due decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, Source{
			ID: doc.ID, URL: doc.URL, Weight: doc.Weight, CadenceHours: doc.CadenceHours,
			ConsecutiveEmptyRuns: doc.ConsecutiveEmptyRuns, LastScrapedAt: doc.LastScrapedAt,
			SourceRole: doc.SourceRole, DiscoveryMethod: doc.DiscoveryMethod,
		})
	}
	return out, cur.Err()
}

func (r *MongoReader) ActiveSources(ctx context.Context) ([]Source, error) {
	cur, err := r.sources.Find(ctx, bson.M{"deactivated": false})
	if err != nil {
		return nil, fmt.Errorf("%w: active_sources: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)
	var out []Source
	for cur.Next(ctx) {
		var doc sourceDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: active_sources decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, Source{
			ID: doc.ID, URL: doc.URL, Weight: doc.Weight, CadenceHours: doc.CadenceHours,
			ConsecutiveEmptyRuns: doc.ConsecutiveEmptyRuns, LastScrapedAt: doc.LastScrapedAt,
			SourceRole: doc.SourceRole, DiscoveryMethod: doc.DiscoveryMethod,
		})
	}
	return out, cur.Err()
}

func (r *MongoReader) PlaceBySlug(ctx context.Context, slug string) (*Place, error) {
	var doc placeDoc
	err := r.places.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: place_by_slug: %v", ErrGraphReadFailed, err)
	}
	return &Place{Slug: doc.Slug, Name: doc.Name, Location: *fromGeoDoc(&doc.Location), GatheringCount: doc.GatheringCount, TensionCount: doc.TensionCount}, nil
}

func (r *MongoReader) TensionsNear(ctx context.Context, center events.GeoPoint, radiusKM float64, limit int) ([]Signal, error) {
	return r.findSignalsNear(ctx, events.NodeTension, center, radiusKM, limit)
}

func (r *MongoReader) findSignalsNear(ctx context.Context, nodeType events.NodeType, center events.GeoPoint, radiusKM float64, limit int) ([]Signal, error) {
	filter := bson.M{
		"node_type": string(nodeType),
		"about_location": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": bson.A{center.Lng, center.Lat}},
				"$maxDistance": radiusKM * 1000,
			},
		},
	}
	cur, err := r.signals.Find(ctx, filter, options.Find().SetLimit(int64(limit)))
	if err != nil {
		return nil, fmt.Errorf("%w: signals_near: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)
	var out []Signal
	for cur.Next(ctx) {
		var doc signalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: signals_near decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, doc.toSignal())
	}
	return out, cur.Err()
}

func (r *MongoReader) UnlinkedSignals(ctx context.Context, nodeTypes []events.NodeType, excludeAbandoned bool) ([]Signal, error) {
	types := make([]string, len(nodeTypes))
	for i, t := range nodeTypes {
		types[i] = string(t)
	}
	filter := bson.M{"node_type": bson.M{"$in": types}, "linked_tension_id": bson.M{"$exists": false}}
	if excludeAbandoned {
		filter["curiosity_investigated"] = bson.M{"$ne": "abandoned"}
	}
	cur, err := r.signals.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: unlinked_signals: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)
	var out []Signal
	for cur.Next(ctx) {
		var doc signalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: unlinked_signals decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, doc.toSignal())
	}
	return out, cur.Err()
}

func (r *MongoReader) SignalsRespondingTo(ctx context.Context, tensionID uuid.UUID) ([]Signal, error) {
	return r.signalsByEdge(ctx, "responds_to_ids", tensionID)
}

func (r *MongoReader) SignalsEvidencing(ctx context.Context, tensionID uuid.UUID) ([]Signal, error) {
	return r.signalsByEdge(ctx, "evidence_of_ids", tensionID)
}

func (r *MongoReader) GatheringsDrawnTo(ctx context.Context, tensionID uuid.UUID) ([]Signal, error) {
	return r.signalsByEdge(ctx, "drawn_to_ids", tensionID)
}

func (r *MongoReader) signalsByEdge(ctx context.Context, field string, tensionID uuid.UUID) ([]Signal, error) {
	cur, err := r.signals.Find(ctx, bson.M{field: tensionID})
	if err != nil {
		return nil, fmt.Errorf("%w: signals_by_edge(%s): %v", ErrGraphReadFailed, field, err)
	}
	defer cur.Close(ctx)
	var out []Signal
	for cur.Next(ctx) {
		var doc signalDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: signals_by_edge decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, doc.toSignal())
	}
	return out, cur.Err()
}

func (r *MongoReader) SituationBySlug(ctx context.Context, slug string) (*Situation, error) {
	var doc situationDoc
	err := r.situations.FindOne(ctx, bson.M{"slug": slug}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: situation_by_slug: %v", ErrGraphReadFailed, err)
	}
	s := doc.toSituation()
	return &s, nil
}

func (r *MongoReader) SituationsOverlapping(ctx context.Context, center events.GeoPoint, radiusKM float64) ([]Situation, error) {
	filter := bson.M{
		"centroid": bson.M{
			"$nearSphere": bson.M{
				"$geometry":    bson.M{"type": "Point", "coordinates": bson.A{center.Lng, center.Lat}},
				"$maxDistance": radiusKM * 1000,
			},
		},
	}
	cur, err := r.situations.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: situations_overlapping: %v", ErrGraphReadFailed, err)
	}
	defer cur.Close(ctx)
	var out []Situation
	for cur.Next(ctx) {
		var doc situationDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("%w: situations_overlapping decode: %v", ErrGraphReadFailed, err)
		}
		out = append(out, doc.toSituation())
	}
	return out, cur.Err()
}

func (r *MongoReader) ContentHashProcessed(ctx context.Context, runID uuid.UUID, url, contentHash string) (bool, error) {
	var doc citationDoc
	err := r.citations.FindOne(ctx, bson.M{"url": url, "content_hash": contentHash}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: content_hash_processed: %v", ErrGraphReadFailed, err)
	}
	return true, nil
}

type citationDoc struct {
	URL         string    `bson:"url"`
	ContentHash string    `bson:"content_hash"`
	Excerpt     string    `bson:"excerpt"`
	FetchedAt   time.Time `bson:"fetched_at"`
}
