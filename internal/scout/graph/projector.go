package graph

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// projector is the graph's sole mutator (section 9). It is never
// exported; the only way to obtain one is NewProjectorHandler, which
// hands back a dispatcher.Handler rather than the projector itself, so no
// package can ever hold a reference to a write method.
type projector struct {
	collections
}

// NewProjectorHandler wires a projector into the dispatcher at priority 0,
// the lowest priority number, so it always runs before any handler that
// reads its own write back out of the graph within the same dispatch pass
// (section 4.3: "the projector runs first for every event").
func NewProjectorHandler(db *mongo.Database) dispatcher.Handler {
	p := &projector{collections: newCollections(db)}
	return dispatcher.Handler{
		ID:       "graph-projector",
		Priority: 0,
		Match:    func(ev events.Event) bool { return true },
		Handle:   p.project,
	}
}

// project implements the event -> graph-effect MERGE table. Every branch
// is idempotent: replaying the same event twice must leave the graph in
// the state a single application would (section 8's replay invariant).
func (p *projector) project(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	switch e := ev.(type) {

	case events.GatheringDiscoveredEvent:
		return nil, p.mergeSignal(ctx, events.NodeGathering, discoveredFields{
			ID: e.ID, Title: e.Title, Summary: e.Summary, SourceURL: e.SourceURL,
			AboutLocation: e.AboutLocation, AboutLocationName: e.AboutLocationName, FromLocation: e.FromLocation,
			StartsAt: e.StartsAt, EndsAt: e.EndsAt, Schedule: e.Schedule, Confidence: e.Confidence,
			ContentHash: e.ContentHash, Embedding: e.Embedding,
		}, signalExtra{GatheringType: e.GatheringType})
	case events.AidDiscoveredEvent:
		return nil, p.mergeSignal(ctx, events.NodeAid, discoveredFields{
			ID: e.ID, Title: e.Title, Summary: e.Summary, SourceURL: e.SourceURL,
			AboutLocation: e.AboutLocation, AboutLocationName: e.AboutLocationName, FromLocation: e.FromLocation,
			StartsAt: e.StartsAt, EndsAt: e.EndsAt, Schedule: e.Schedule, Confidence: e.Confidence,
			ContentHash: e.ContentHash, Embedding: e.Embedding,
		}, signalExtra{})
	case events.NeedDiscoveredEvent:
		return nil, p.mergeSignal(ctx, events.NodeNeed, discoveredFields{
			ID: e.ID, Title: e.Title, Summary: e.Summary, SourceURL: e.SourceURL,
			AboutLocation: e.AboutLocation, AboutLocationName: e.AboutLocationName, FromLocation: e.FromLocation,
			StartsAt: e.StartsAt, EndsAt: e.EndsAt, Schedule: e.Schedule, Confidence: e.Confidence,
			ContentHash: e.ContentHash, Embedding: e.Embedding,
		}, signalExtra{})
	case events.NoticeDiscoveredEvent:
		return nil, p.mergeSignal(ctx, events.NodeNotice, discoveredFields{
			ID: e.ID, Title: e.Title, Summary: e.Summary, SourceURL: e.SourceURL,
			AboutLocation: e.AboutLocation, AboutLocationName: e.AboutLocationName, FromLocation: e.FromLocation,
			StartsAt: e.StartsAt, EndsAt: e.EndsAt, Schedule: e.Schedule, Confidence: e.Confidence,
			ContentHash: e.ContentHash, Embedding: e.Embedding,
		}, signalExtra{
			Severity: e.Severity, SourceAuthority: e.SourceAuthority, Category: e.Category,
		})
	case events.TensionDiscoveredEvent:
		return nil, p.mergeSignal(ctx, events.NodeTension, discoveredFields{
			ID: e.ID, Title: e.Title, Summary: e.Summary, SourceURL: e.SourceURL,
			AboutLocation: e.AboutLocation, AboutLocationName: e.AboutLocationName, FromLocation: e.FromLocation,
			StartsAt: e.StartsAt, EndsAt: e.EndsAt, Schedule: e.Schedule, Confidence: e.Confidence,
			ContentHash: e.ContentHash, Embedding: e.Embedding,
		}, signalExtra{CauseHeat: e.CauseHeat})

	case events.ObservationCorroboratedEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$inc":      bson.M{"corroboration_count": 1},
			"$addToSet": bson.M{"citation_urls": e.CitationURL},
		})
		return nil, wrapWrite("observation_corroborated", err)

	case events.CorroborationScoredEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$set": bson.M{"source_diversity": e.SourceDiversity},
		})
		return nil, wrapWrite("corroboration_scored", err)

	case events.ConfidenceScoredEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$set": bson.M{"confidence": e.Confidence},
		})
		return nil, wrapWrite("confidence_scored", err)

	case events.FreshnessConfirmedEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$set": bson.M{"last_confirmed_active": e.ConfirmedActive},
		})
		return nil, wrapWrite("freshness_confirmed", err)

	case events.EntityExpiredEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$set": bson.M{"expired": true, "expired_at": e.Timestamp()},
		})
		return nil, wrapWrite("entity_expired", err)

	case events.EntityPurgedEvent:
		_, err := p.signals.DeleteOne(ctx, bson.M{"id": e.NodeID})
		return nil, wrapWrite("entity_purged", err)

	case events.SourceRegisteredEvent:
		_, err := p.sources.UpdateOne(ctx, bson.M{"url": e.URL}, bson.M{
			"$setOnInsert": sourceDoc{
				ID: e.SourceID, URL: e.URL, Weight: e.Weight,
				SourceRole: e.SourceRole, DiscoveryMethod: e.DiscoveryMethod,
			},
		}, options.UpdateOne().SetUpsert(true))
		return nil, wrapWrite("source_registered", err)

	case events.SourceChangedEvent:
		_, err := p.sources.UpdateOne(ctx, bson.M{"id": e.SourceID}, bson.M{"$set": e.Fields})
		return nil, wrapWrite("source_changed", err)

	case events.SourceDeactivatedEvent:
		_, err := p.sources.UpdateOne(ctx, bson.M{"id": e.SourceID}, bson.M{"$set": bson.M{"deactivated": true}})
		return nil, wrapWrite("source_deactivated", err)

	case events.ActorIdentifiedEvent:
		_, err := p.actors.UpdateOne(ctx, bson.M{"name": e.Name}, bson.M{
			"$setOnInsert": actorDoc{ID: e.ActorID, Name: e.Name, Location: toGeoDoc(e.Location)},
		}, options.UpdateOne().SetUpsert(true))
		return nil, wrapWrite("actor_identified", err)

	case events.ActorLinkedToEntityEvent:
		// Edges live as arrays on the signal document (section 6.4's
		// embedded-edge representation); the edge type picks the field.
		field := edgeFieldForActorLink(e.EdgeType)
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$addToSet": bson.M{field: e.ActorID},
		})
		return nil, wrapWrite("actor_linked_to_entity", err)

	case events.ResourceEdgeCreatedEvent:
		field := edgeFieldForResourceLink(e.EdgeType)
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$addToSet": bson.M{field: e.ResourceSlug},
		})
		return nil, wrapWrite("resource_edge_created", err)

	case events.ResponseLinkedEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.ResponderID}, bson.M{
			"$addToSet": bson.M{"responds_to_ids": e.TensionID},
		})
		return nil, wrapWrite("response_linked", err)

	case events.GravityLinkedEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.GatheringID}, bson.M{
			"$addToSet": bson.M{"drawn_to_ids": e.TensionID},
		})
		return nil, wrapWrite("gravity_linked", err)

	case events.EvidenceLinkedEvent:
		_, err := p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{
			"$addToSet": bson.M{"evidence_of_ids": e.TensionID},
		})
		return nil, wrapWrite("evidence_linked", err)

	case events.PlaceDiscoveredEvent:
		_, err := p.places.UpdateOne(ctx, bson.M{"slug": e.Slug}, bson.M{
			"$setOnInsert": bson.M{"slug": e.Slug, "name": e.Name, "location": toGeoDoc(&e.Location)},
		}, options.UpdateOne().SetUpsert(true))
		return nil, wrapWrite("place_discovered", err)

	case events.GathersAtPlaceLinkedEvent:
		_, err := p.places.UpdateOne(ctx, bson.M{"slug": e.PlaceSlug}, bson.M{
			"$inc": bson.M{"gathering_count": 1},
		})
		if err != nil {
			return nil, wrapWrite("gathers_at_place_linked", err)
		}
		_, err = p.signals.UpdateOne(ctx, bson.M{"id": e.NodeID}, bson.M{"$set": bson.M{"place_slug": e.PlaceSlug}})
		return nil, wrapWrite("gathers_at_place_linked", err)

	case events.CitationRecordedEvent:
		_, err := p.citations.UpdateOne(ctx, bson.M{"url": e.URL, "content_hash": e.ContentHash}, bson.M{
			"$setOnInsert": citationDoc{URL: e.URL, ContentHash: e.ContentHash, Excerpt: e.Excerpt, FetchedAt: e.FetchedAt},
		}, options.UpdateOne().SetUpsert(true))
		return nil, wrapWrite("citation_recorded", err)

	case events.SituationIdentifiedEvent:
		_, err := p.situations.UpdateOne(ctx, bson.M{"slug": e.Slug}, bson.M{
			"$set": bson.M{
				"status": e.Status, "centroid": toGeoDoc(&e.Centroid),
				"type_diversity": e.TypeDiversity, "entity_count": e.EntityCount,
				"temperature": e.Temperature, "signal_ids": e.SignalIDs,
			},
			"$inc":         bson.M{"version": 1},
			"$setOnInsert": bson.M{"slug": e.Slug},
		}, options.UpdateOne().SetUpsert(true))
		return nil, wrapWrite("situation_identified", err)

	case events.SituationChangedEvent:
		_, err := p.situations.UpdateOne(ctx, bson.M{"slug": e.Slug}, bson.M{
			"$set": e.Fields,
			"$inc": bson.M{"version": 1},
		})
		return nil, wrapWrite("situation_changed", err)

	case events.DispatchCreatedEvent:
		_, err := p.situations.UpdateOne(ctx, bson.M{"slug": e.SituationSlug}, bson.M{
			"$push": bson.M{"dispatches": dispatchDoc{Text: e.Text, CitedSignals: e.CitedSignals, CreatedAt: e.Timestamp()}},
		})
		return nil, wrapWrite("dispatch_created", err)

	case events.DuplicateTensionMergedEvent:
		return nil, p.mergeDuplicateTension(ctx, e.DuplicateID, e.SurvivorID)

	case events.ActorMergedEvent:
		return nil, p.mergeDuplicateActor(ctx, e.DuplicateID, e.SurvivorID)

	default:
		// Not every event carries a graph effect (lifecycle, scheduling,
		// extraction, lint, and scheduler events are projected into the
		// aggregate only, not the graph).
		return nil, nil
	}
}

// signalExtra carries the type-specific fields a *Discovered event may
// set, so mergeSignal has one body for all five node types.
type signalExtra struct {
	GatheringType   string
	Severity        string
	SourceAuthority string
	Category        string
	CauseHeat       float32
}

// discoveredFields mirrors the promoted field set every *Discovered event
// exposes through its embedded events.DiscoveredBase; the fields are
// copied out at the call site via each concrete event's promoted fields.
type discoveredFields struct {
	ID                uuid.UUID
	Title             string
	Summary           string
	SourceURL         string
	AboutLocation     *events.GeoPoint
	AboutLocationName string
	FromLocation      *events.GeoPoint
	StartsAt          *time.Time
	EndsAt            *time.Time
	Schedule          string
	Confidence        float32
	ContentHash       string
	Embedding         []float32
}

// mergeSignal MERGEs a signal node keyed by id. It is idempotent: a second
// MERGE with the same id and fields leaves the document unchanged except
// for last_confirmed_active and embedding, which are expected to update on
// every corroborating observation.
func (p *projector) mergeSignal(ctx context.Context, nodeType events.NodeType, d discoveredFields, extra signalExtra) error {
	set := bson.M{
		"node_type": string(nodeType), "title": d.Title, "summary": d.Summary,
		"source_url": d.SourceURL, "about_location": toGeoDoc(d.AboutLocation),
		"about_location_name": d.AboutLocationName, "from_location": toGeoDoc(d.FromLocation),
		"starts_at": d.StartsAt, "ends_at": d.EndsAt, "schedule": d.Schedule,
		"confidence": d.Confidence, "content_hash": d.ContentHash, "embedding": d.Embedding,
		"last_confirmed_active": now(),
		"gathering_type":        extra.GatheringType,
		"severity":              extra.Severity,
		"source_authority":      extra.SourceAuthority,
		"category":              extra.Category,
		"cause_heat":            extra.CauseHeat,
	}
	update := bson.M{
		"$set": set,
		"$setOnInsert": bson.M{
			"id": d.ID, "review_status": string(events.StatusDraft),
			"created_at": now(), "corroboration_count": 1, "source_diversity": 1,
		},
	}
	_, err := p.signals.UpdateOne(ctx, bson.M{"id": d.ID}, update, options.UpdateOne().SetUpsert(true))
	return wrapWrite("merge_signal", err)
}

// mergeDuplicateTension gives the duplicate's corroboration to the survivor
// and detach-deletes the duplicate node, the same hard-removal treatment
// EntityPurged gets rather than EntityExpired's soft flag: a merged
// duplicate is not a node any reader should still find.
func (p *projector) mergeDuplicateTension(ctx context.Context, duplicateID, survivorID uuid.UUID) error {
	edgeFields := []string{"responds_to_ids", "drawn_to_ids", "evidence_of_ids"}
	cur, err := p.signals.Find(ctx, bson.M{"$or": []bson.M{
		{"responds_to_ids": duplicateID},
		{"drawn_to_ids": duplicateID},
		{"evidence_of_ids": duplicateID},
	}})
	if err != nil {
		return wrapWrite("duplicate_tension_merged/find", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc signalDoc
		if err := cur.Decode(&doc); err != nil {
			return wrapWrite("duplicate_tension_merged/decode", err)
		}
		for _, field := range edgeFields {
			_, err := p.signals.UpdateOne(ctx, bson.M{"id": doc.ID}, bson.M{
				"$addToSet": bson.M{field: survivorID},
				"$pull":     bson.M{field: duplicateID},
			})
			if err != nil {
				return wrapWrite("duplicate_tension_merged/repoint", err)
			}
		}
	}
	if err := cur.Err(); err != nil {
		return wrapWrite("duplicate_tension_merged/cursor", err)
	}

	var dup signalDoc
	err = p.signals.FindOne(ctx, bson.M{"id": duplicateID}).Decode(&dup)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return wrapWrite("duplicate_tension_merged/load_duplicate", err)
	}
	if err == nil && dup.CorroborationCount > 0 {
		_, err = p.signals.UpdateOne(ctx, bson.M{"id": survivorID}, bson.M{
			"$inc": bson.M{"corroboration_count": dup.CorroborationCount},
		})
		if err != nil {
			return wrapWrite("duplicate_tension_merged/sum_corroboration", err)
		}
	}

	_, err = p.signals.DeleteOne(ctx, bson.M{"id": duplicateID})
	return wrapWrite("duplicate_tension_merged/detach_delete", err)
}

// mergeDuplicateActor repoints every signal's actor-edge array from
// duplicateID to survivorID across all three actor edge fields, then
// removes the duplicate actor, mirroring mergeDuplicateTension's
// repoint-then-delete shape.
func (p *projector) mergeDuplicateActor(ctx context.Context, duplicateID, survivorID uuid.UUID) error {
	edgeFields := []string{"mentioned_in_ids", "authored_by_ids", "acted_in_ids"}
	cur, err := p.signals.Find(ctx, bson.M{"$or": []bson.M{
		{"mentioned_in_ids": duplicateID},
		{"authored_by_ids": duplicateID},
		{"acted_in_ids": duplicateID},
	}})
	if err != nil {
		return wrapWrite("actor_merged/find", err)
	}
	defer cur.Close(ctx)
	for cur.Next(ctx) {
		var doc signalDoc
		if err := cur.Decode(&doc); err != nil {
			return wrapWrite("actor_merged/decode", err)
		}
		for _, field := range edgeFields {
			_, err := p.signals.UpdateOne(ctx, bson.M{"id": doc.ID}, bson.M{
				"$addToSet": bson.M{field: survivorID},
				"$pull":     bson.M{field: duplicateID},
			})
			if err != nil {
				return wrapWrite("actor_merged/repoint", err)
			}
		}
	}
	if err := cur.Err(); err != nil {
		return wrapWrite("actor_merged/cursor", err)
	}

	_, err = p.actors.DeleteOne(ctx, bson.M{"id": duplicateID})
	return wrapWrite("actor_merged/delete", err)
}

func edgeFieldForActorLink(edgeType string) string {
	switch edgeType {
	case "AUTHORED_BY":
		return "authored_by_ids"
	case "ACTED_IN":
		return "acted_in_ids"
	default:
		return "mentioned_in_ids"
	}
}

func edgeFieldForResourceLink(edgeType string) string {
	switch edgeType {
	case "OFFERS":
		return "offers_resource_slugs"
	case "PREFERS":
		return "prefers_resource_slugs"
	default:
		return "requires_resource_slugs"
	}
}

func wrapWrite(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %v", ErrGraphProjectionFailed, op, err)
}
