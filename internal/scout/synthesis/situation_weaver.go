package synthesis

import (
	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// MinRespondentsForSituation is the minimum respondent count a tension
// needs before the situation weaver materializes a situation, per section
// 4.9 step 4.
const MinRespondentsForSituation = 2

// WeaveResult is one tension's situation-materialization outcome.
type WeaveResult struct {
	TensionID uuid.UUID
	Status    string // confirmed | echo | emerging
	Event     events.Event
}

// WeaveSituation computes a situation's centroid, sensitivity, signal-type
// diversity, and entity count from its constituent signals, and derives
// its status, per section 4.9 step 4's pure arc-status rule. It is the
// only synthesis sub-step that requires no LLM call — status follows
// deterministically from the constituent signal set, so it is expressed
// as a pure function of (tension, respondents, existing slug) rather than
// going through an Extractor.
func (s *Synthesizer) WeaveSituation(runID uuid.UUID, tension graph.Signal, respondents []graph.Signal, existingSlug string, amend bool) *WeaveResult {
	if len(respondents) < MinRespondentsForSituation {
		return nil
	}

	all := append([]graph.Signal{tension}, respondents...)
	centroid := centroidOf(all)
	temperature := computeTemperature(all)
	typeDiversity := distinctTypeCount(respondents)
	entityCount := len(respondents) + 1

	status := arcStatus(entityCount, typeDiversity, len(respondents)+1)

	slug := existingSlug
	if slug == "" {
		slug = placeSlug(tension.Title)
	}

	ids := make([]uuid.UUID, 0, len(respondents)+1)
	ids = append(ids, tension.ID)
	for _, r := range respondents {
		ids = append(ids, r.ID)
	}

	var event events.Event
	if amend {
		event = events.NewSituationChangedEvent(runID, slug, map[string]any{
			"status":         status,
			"type_diversity": typeDiversity,
			"entity_count":   entityCount,
			"centroid":       centroid,
		})
	} else {
		event = events.NewSituationIdentifiedEvent(runID, slug, status, centroid, typeDiversity, entityCount, temperature, ids)
	}

	return &WeaveResult{TensionID: tension.ID, Status: status, Event: event}
}

// arcStatus implements section 4.9's status rule exactly:
//
//	entity_count >= 2 AND type_diversity >= 2 -> confirmed
//	type_diversity == 1 AND signal_count >= 5 -> echo
//	otherwise -> emerging
func arcStatus(entityCount, typeDiversity, signalCount int) string {
	switch {
	case entityCount >= 2 && typeDiversity >= 2:
		return "confirmed"
	case typeDiversity == 1 && signalCount >= 5:
		return "echo"
	default:
		return "emerging"
	}
}

func centroidOf(signals []graph.Signal) events.GeoPoint {
	var sumLat, sumLng float64
	var n int
	for _, sig := range signals {
		if sig.AboutLocation == nil {
			continue
		}
		sumLat += sig.AboutLocation.Lat
		sumLng += sig.AboutLocation.Lng
		n++
	}
	if n == 0 {
		return events.GeoPoint{}
	}
	return events.GeoPoint{Lat: sumLat / float64(n), Lng: sumLng / float64(n)}
}

var sensitivityOrder = []string{"none", "low", "medium", "high"}

// computeTemperature derives the situation's computable temperature floor
// from its constituent signals' sensitivity classifications, per the
// invariant that narrative judgment may only add qualitative nuance on
// top of this figure, never override it (section 2's "cannot exceed what
// its computable components yield").
func computeTemperature(signals []graph.Signal) float32 {
	var maxRank int
	for _, sig := range signals {
		if rank := sensitivityRank(sig.Sensitivity); rank > maxRank {
			maxRank = rank
		}
	}
	return float32(maxRank) / float32(len(sensitivityOrder)-1)
}

func sensitivityRank(label string) int {
	for i, l := range sensitivityOrder {
		if l == label {
			return i
		}
	}
	return 0
}

func distinctTypeCount(signals []graph.Signal) int {
	seen := make(map[events.NodeType]struct{})
	for _, sig := range signals {
		seen[sig.NodeType] = struct{}{}
	}
	return len(seen)
}
