package synthesis

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/extractor"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

// tensionSearchRadiusKM bounds the tension-candidate read both the
// tension-linker and response/gathering finders work from, per section
// 4.9's region-scoped synthesis pass.
const tensionSearchRadiusKM = 50
const tensionCandidateLimit = 200

// synthesisHandler drives the whole of section 4.9's end-of-run synthesis
// pass as a single handler reacting to PhaseCompleted(ResponsePhase): link
// unlinked signals to tensions, search for responses and gatherings,
// weave situations, and write dispatches, ending with
// PhaseCompleted(Synthesis).
type synthesisHandler struct {
	synth     *Synthesizer
	searcher  Searcher
	extractor *extractor.Extractor
	regions   *region.Registry
}

// NewSynthesisHandler builds the dispatcher.Handler for the synthesis pass.
func NewSynthesisHandler(synth *Synthesizer, searcher Searcher, ex *extractor.Extractor, regions *region.Registry) dispatcher.Handler {
	h := &synthesisHandler{synth: synth, searcher: searcher, extractor: ex, regions: regions}
	return dispatcher.Handler{
		ID:    "synthesis",
		Priority: 1,
		Match: func(ev events.Event) bool { return ev.Type() == events.TypePhaseCompleted },
		Filter: func(ev events.Event) bool {
			e, ok := ev.(events.PhaseCompletedEvent)
			return ok && e.Phase == events.PhaseResponsePhase
		},
		Handle: h.handle,
	}
}

func (h *synthesisHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	profile, ok := h.regions.BySlug(state.Region.Slug)
	if !ok {
		return nil, fmt.Errorf("synthesis: unknown region %q", state.Region.Slug)
	}
	center := events.GeoPoint{Lat: state.Region.Lat, Lng: state.Region.Lng}
	tensions, err := h.synth.Reader.TensionsNear(ctx, center, tensionSearchRadiusKM, tensionCandidateLimit)
	if err != nil {
		return nil, fmt.Errorf("synthesis: tensions near: %w", err)
	}

	var out []events.Event

	linkEvs, err := h.linkUnlinkedSignals(ctx, state.RunID, tensions)
	if err != nil {
		return nil, err
	}
	out = append(out, linkEvs...)

	searchEvs, err := h.searchForResponsesAndGatherings(ctx, state.RunID, profile, tensions)
	if err != nil {
		return nil, err
	}
	out = append(out, searchEvs...)

	weaveEvs, err := h.weaveSituations(ctx, state.RunID, tensions)
	if err != nil {
		return nil, err
	}
	out = append(out, weaveEvs...)

	out = append(out, events.NewPhaseCompletedEvent(state.RunID, events.PhaseSynthesis))
	return out, nil
}

func (h *synthesisHandler) linkUnlinkedSignals(ctx context.Context, runID uuid.UUID, tensions []graph.Signal) ([]events.Event, error) {
	unlinked, err := h.synth.Reader.UnlinkedSignals(ctx, []events.NodeType{events.NodeAid, events.NodeGathering, events.NodeNeed, events.NodeNotice}, true)
	if err != nil {
		return nil, fmt.Errorf("synthesis: unlinked signals: %w", err)
	}
	outcomes, err := h.synth.LinkTensions(ctx, runID, tensions, unlinked)
	if err != nil {
		return nil, fmt.Errorf("synthesis: link tensions: %w", err)
	}
	var out []events.Event
	for _, o := range outcomes {
		out = append(out, o.Events...)
	}
	return out, nil
}

// searchForResponsesAndGatherings runs steps 2-3 of section 4.9. Signals
// the finders extract from search results are re-emitted as
// SignalsExtracted under a synthetic source URL tagging the tension they
// were found for, so they flow through the same dedup handler every
// fetch-originated candidate does rather than duplicating dedup logic
// here.
func (h *synthesisHandler) searchForResponsesAndGatherings(ctx context.Context, runID uuid.UUID, profile region.Profile, tensions []graph.Signal) ([]events.Event, error) {
	var out []events.Event

	responses, err := h.synth.FindResponses(ctx, h.searcher, h.extractor, profile, tensions)
	if err != nil {
		return nil, fmt.Errorf("synthesis: find responses: %w", err)
	}
	for _, r := range responses {
		out = append(out, r.Events...)
		if len(r.Found) > 0 {
			out = append(out, events.NewSignalsExtractedEvent(runID, uuid.Nil, "response-search:"+r.TensionID.String(), r.Found))
		}
	}

	gatheringCounts := make(map[uuid.UUID]int)
	for _, t := range tensions {
		drawn, err := h.synth.Reader.GatheringsDrawnTo(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("synthesis: gatherings drawn to %s: %w", t.ID, err)
		}
		gatheringCounts[t.ID] = len(drawn)
	}
	gatherings, err := h.synth.FindGatherings(ctx, runID, h.searcher, h.extractor, profile, tensions, gatheringCounts)
	if err != nil {
		return nil, fmt.Errorf("synthesis: find gatherings: %w", err)
	}
	for _, g := range gatherings {
		out = append(out, g.Events...)
		if len(g.Signals) > 0 {
			out = append(out, events.NewSignalsExtractedEvent(runID, uuid.Nil, "gathering-search:"+g.TensionID.String(), g.Signals))
		}
	}

	return out, nil
}

func (h *synthesisHandler) weaveSituations(ctx context.Context, runID uuid.UUID, tensions []graph.Signal) ([]events.Event, error) {
	var out []events.Event
	for _, tension := range tensions {
		respondents, err := h.synth.Reader.SignalsRespondingTo(ctx, tension.ID)
		if err != nil {
			return nil, fmt.Errorf("synthesis: signals responding to %s: %w", tension.ID, err)
		}
		slug := placeSlug(tension.Title)
		existing, err := h.synth.Reader.SituationBySlug(ctx, slug)
		if err != nil {
			return nil, fmt.Errorf("synthesis: situation by slug %s: %w", slug, err)
		}

		weave := h.synth.WeaveSituation(runID, tension, respondents, slug, existing != nil)
		if weave == nil {
			continue
		}
		out = append(out, weave.Event)

		if weave.Status == "confirmed" || weave.Status == "echo" {
			evidencing, err := h.synth.Reader.SignalsEvidencing(ctx, tension.ID)
			if err != nil {
				return nil, fmt.Errorf("synthesis: signals evidencing %s: %w", tension.ID, err)
			}
			cited := append([]graph.Signal{tension}, respondents...)
			cited = append(cited, evidencing...)
			dispatch, err := h.synth.GenerateDispatch(ctx, runID, slug, cited)
			if err != nil {
				continue
			}
			out = append(out, dispatch)
		}
	}
	return out, nil
}
