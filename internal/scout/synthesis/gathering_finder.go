package synthesis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/extractor"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/fetcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

// MaxGatheringsPerTension is N in section 4.9's "for each tension with
// fewer than N gatherings and not recently scouted".
const MaxGatheringsPerTension = 3

// GatheringFinderResult is one tension's gathering-search outcome.
type GatheringFinderResult struct {
	TensionID uuid.UUID
	Signals   []events.CandidateSignal
	Events    []events.Event
}

// FindGatherings searches for events drawn to under-scouted tensions,
// extracts signals, identifies venues, and emits PlaceDiscovered/
// GathersAtPlaceLinked/GatheringScouted, per section 4.9 step 3.
func (s *Synthesizer) FindGatherings(ctx context.Context, runID uuid.UUID, searcher Searcher, extractorEngine *extractor.Extractor, profile region.Profile, tensions []graph.Signal, gatheringCounts map[uuid.UUID]int) ([]GatheringFinderResult, error) {
	ctx = ctxOrBackground(ctx)
	var results []GatheringFinderResult

	for _, tension := range tensions {
		if gatheringCounts[tension.ID] >= MaxGatheringsPerTension {
			continue
		}

		query := fmt.Sprintf("events about %s", tension.Title)
		hits, err := searcher.Search(ctx, query, fetcher.Options{})
		if err != nil {
			results = append(results, GatheringFinderResult{
				TensionID: tension.ID,
				Events:    []events.Event{events.NewGatheringScoutedEvent(runID, tension.ID, false)},
			})
			continue
		}

		var signals []events.CandidateSignal
		var evs []events.Event
		for _, hit := range hits {
			content := extractor.Content{
				SourceURL:   hit.URL,
				ContentType: "search_result",
				Text:        hit.Title + "\n" + hit.Snippet,
			}
			result, err := extractorEngine.Extract(ctx, content, profile)
			if err != nil {
				continue
			}
			for _, sig := range result.Signals {
				if sig.NodeType != events.NodeGathering {
					continue
				}
				signals = append(signals, sig)
				if sig.AboutLocationName != "" {
					slug := placeSlug(sig.AboutLocationName)
					var loc events.GeoPoint
					if sig.AboutLocation != nil {
						loc = *sig.AboutLocation
					}
					evs = append(evs,
						events.NewPlaceDiscoveredEvent(runID, slug, sig.AboutLocationName, loc),
						events.NewGathersAtPlaceLinkedEvent(runID, uuid.New(), slug),
					)
				}
			}
		}

		evs = append(evs, events.NewGatheringScoutedEvent(runID, tension.ID, len(signals) > 0))
		results = append(results, GatheringFinderResult{TensionID: tension.ID, Signals: signals, Events: evs})
	}

	return results, nil
}

func placeSlug(name string) string {
	slug := make([]rune, 0, len(name))
	lastDash := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			slug = append(slug, r)
			lastDash = false
		case r >= 'A' && r <= 'Z':
			slug = append(slug, r+('a'-'A'))
			lastDash = false
		default:
			if !lastDash && len(slug) > 0 {
				slug = append(slug, '-')
				lastDash = true
			}
		}
	}
	for len(slug) > 0 && slug[len(slug)-1] == '-' {
		slug = slug[:len(slug)-1]
	}
	return string(slug)
}
