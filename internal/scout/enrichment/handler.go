// Package enrichment implements the Enrichment phase: actor dedup and
// cross-region tension merge, run once per run after Synthesis settles
// (spec section 2's control-flow diagram lists this as "EnrichmentCompleted
// (actor dedup, cross-region merges, place creation)" — place creation
// itself happens inline during the gathering-finder stage of synthesis, so
// this handler's job is the two merge passes plus the completion count).
package enrichment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dedup"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// worldBBox lifts the region bounding-box gate the per-run dedup path
// applies through SimilarSignals, since cross-region merges are exactly the matches a
// region-scoped SimilarSignals call is built to exclude.
var worldBBox = graph.BoundingBox{MinLat: -90, MaxLat: 90, MinLng: -180, MaxLng: 180}

const (
	tensionScanRadiusKM  = 50
	tensionScanLimit     = 200
	mergeSimilarityLimit = 2 // self + at most one real match
)

type enrichmentHandler struct {
	reader graph.Reader
}

// NewEnrichmentHandler builds the dispatcher.Handler driving the
// Enrichment phase.
func NewEnrichmentHandler(reader graph.Reader) dispatcher.Handler {
	h := &enrichmentHandler{reader: reader}
	return dispatcher.Handler{
		ID:    "enrichment",
		Priority: 1,
		Match: func(ev events.Event) bool { return ev.Type() == events.TypePhaseCompleted },
		Filter: func(ev events.Event) bool {
			e, ok := ev.(events.PhaseCompletedEvent)
			return ok && e.Phase == events.PhaseSynthesis
		},
		Handle: h.handle,
	}
}

func (h *enrichmentHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	center := events.GeoPoint{Lat: state.Region.Lat, Lng: state.Region.Lng}

	tensionEvs, mergedTensions, err := h.mergeDuplicateTensions(ctx, state.RunID, center)
	if err != nil {
		return nil, err
	}

	actorEvs, mergedActors, err := h.mergeDuplicateActors(ctx, state.RunID, state.IdentifiedActors)
	if err != nil {
		return nil, err
	}

	out := make([]events.Event, 0, len(tensionEvs)+len(actorEvs)+2)
	out = append(out, tensionEvs...)
	out = append(out, actorEvs...)
	out = append(out, events.NewEnrichmentCompletedEvent(state.RunID, mergedActors, 0))
	out = append(out, events.NewPhaseCompletedEvent(state.RunID, events.PhaseEnrichment))
	return out, nil
}

// mergeDuplicateTensions finds, for each tension near the run's region,
// its closest embedding match anywhere in the world (not just this
// region's bounding box) and merges the weaker of the pair into the
// stronger one when similarity clears the cross-source threshold — this
// is the cross-region half of Enrichment that per-run dedup never runs,
// since per-run dedup only sees SimilarSignals matches inside a single
// region's bbox.
func (h *enrichmentHandler) mergeDuplicateTensions(ctx context.Context, runID uuid.UUID, center events.GeoPoint) ([]events.Event, int, error) {
	tensions, err := h.reader.TensionsNear(ctx, center, tensionScanRadiusKM, tensionScanLimit)
	if err != nil {
		return nil, 0, fmt.Errorf("enrichment: tensions near: %w", err)
	}

	var out []events.Event
	merged := make(map[uuid.UUID]bool)
	for _, t := range tensions {
		if merged[t.ID] || len(t.Embedding) == 0 {
			continue
		}
		matches, err := h.reader.SimilarSignals(ctx, t.Embedding, events.NodeTension, worldBBox, dedup.CrossSourceThreshold, mergeSimilarityLimit)
		if err != nil {
			return nil, 0, fmt.Errorf("enrichment: similar signals for %s: %w", t.ID, err)
		}
		for _, m := range matches {
			if m.ExistingID == t.ID || merged[m.ExistingID] || m.Similarity < dedup.CrossSourceThreshold {
				continue
			}
			other, err := h.reader.SignalByID(ctx, m.ExistingID)
			if err != nil {
				return nil, 0, fmt.Errorf("enrichment: signal by id %s: %w", m.ExistingID, err)
			}
			if other == nil {
				continue
			}
			survivor, duplicate := t.ID, other.ID
			if other.CorroborationCount > t.CorroborationCount {
				survivor, duplicate = other.ID, t.ID
			}
			out = append(out, events.NewDuplicateTensionMergedEvent(runID, duplicate, survivor))
			merged[duplicate] = true
			break
		}
	}
	return out, len(merged), nil
}

// mergeDuplicateActors checks every actor identified during this run for
// a case/whitespace-fold collision against an existing actor and, when
// found, merges the pre-existing one into the one this run just
// identified (the run's own sighting is treated as the survivor since it
// carries the freshest location data).
func (h *enrichmentHandler) mergeDuplicateActors(ctx context.Context, runID uuid.UUID, identified []aggregate.IdentifiedActor) ([]events.Event, int, error) {
	var out []events.Event
	merged := make(map[uuid.UUID]bool)
	for _, ia := range identified {
		similar, err := h.reader.SimilarActors(ctx, ia.Name)
		if err != nil {
			return nil, 0, fmt.Errorf("enrichment: similar actors for %q: %w", ia.Name, err)
		}
		for _, s := range similar {
			if s.ID == ia.ID || merged[s.ID] {
				continue
			}
			out = append(out, events.NewActorMergedEvent(runID, s.ID, ia.ID))
			merged[s.ID] = true
		}
	}
	return out, len(merged), nil
}
