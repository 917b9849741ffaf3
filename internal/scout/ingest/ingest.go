// Package ingest implements the dedup/corroboration + discovery side of
// the Signal Extractor Layer (sections 4.6-4.8): it reacts to
// SignalsExtracted, gathers each candidate's prior-graph and in-run state,
// calls the pure dedup.Decide, and emits the Discovered/NodeCreated,
// NodeCorroborated, or NodeRefreshed events the projector turns into graph
// writes — plus the resource and actor edges a candidate carries.
package ingest

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dedup"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

// Embedder narrows embedding.Cache to the one call this handler needs.
type Embedder interface {
	Embed(ctx context.Context, contentHash, text string) ([]float32, error)
}

type dedupHandler struct {
	reader   graph.Reader
	embedder Embedder
	regions  *region.Registry
}

// NewDedupHandler builds the dispatcher.Handler driving dedup decision and
// discovery emission for every candidate signal a SignalsExtracted event
// carries.
func NewDedupHandler(reader graph.Reader, embedder Embedder, regions *region.Registry) dispatcher.Handler {
	h := &dedupHandler{reader: reader, embedder: embedder, regions: regions}
	return dispatcher.Handler{
		ID:       "dedup",
		Priority: 1,
		Match:    func(ev events.Event) bool { return ev.Type() == events.TypeSignalsExtracted },
		Handle:   h.handle,
	}
}

func (h *dedupHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	e := ev.(events.SignalsExtractedEvent)
	profile, ok := h.regions.BySlug(state.Region.Slug)
	if !ok {
		return nil, fmt.Errorf("ingest: unknown region %q", state.Region.Slug)
	}
	bbox := graph.BoundingBox{MinLat: profile.BBox.MinLat, MinLng: profile.BBox.MinLng, MaxLat: profile.BBox.MaxLat, MaxLng: profile.BBox.MaxLng}

	var out []events.Event
	for _, candidate := range e.Signals {
		evs, err := h.processCandidate(ctx, state.RunID, e.URL, candidate, bbox)
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

func (h *dedupHandler) processCandidate(ctx context.Context, runID uuid.UUID, sourceURL string, c events.CandidateSignal, bbox graph.BoundingBox) ([]events.Event, error) {
	embedding, err := h.embedder.Embed(ctx, c.ContentHash, c.Title+"\n"+c.Summary)
	if err != nil {
		return nil, fmt.Errorf("ingest: embed candidate %q: %w", c.Title, err)
	}
	c.Embedding = embedding

	prior, err := h.priorGraphState(ctx, c, sourceURL)
	if err != nil {
		return nil, err
	}
	processed, err := h.reader.ContentHashProcessed(ctx, runID, sourceURL, c.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("ingest: content hash processed: %w", err)
	}
	similar, err := h.similarityMatch(ctx, embedding, c.NodeType, bbox)
	if err != nil {
		return nil, err
	}

	runState := dedup.RunState{}
	if processed {
		runState.AlreadyProcessedHashes = map[string]bool{sourceURL + "\x00" + c.ContentHash: true}
	}

	verdict := dedup.Decide(dedup.Input{
		Candidate:       c,
		NodeType:        c.NodeType,
		SourceURL:       sourceURL,
		Embedding:       embedding,
		ContentHash:     c.ContentHash,
		PriorGraph:      prior,
		RunState:        runState,
		SimilarityMatch: similar,
	})

	var out []events.Event
	candidateID := uuid.New()
	out = append(out, events.NewDedupVerdictReachedEvent(runID, candidateID, verdict.Kind, verdict.ExistingID, verdict.ExistingURL))

	nodeID := candidateID
	switch verdict.Kind {
	case events.VerdictCreate:
		out = append(out, discoveredEventFrom(runID, discoveredBase(nodeID, sourceURL, c), c)...)
		out = append(out, events.NewNodeCreatedEvent(runID, nodeID, c.NodeType))
	case events.VerdictCorroborate:
		nodeID = *verdict.ExistingID
		out = append(out, discoveredEventFrom(runID, discoveredBase(nodeID, sourceURL, c), c)...)
		out = append(out, events.NewObservationCorroboratedEvent(runID, nodeID, sourceURL, c.ContentHash))
	case events.VerdictRefresh:
		nodeID = *verdict.ExistingID
		out = append(out, discoveredEventFrom(runID, discoveredBase(nodeID, sourceURL, c), c)...)
		out = append(out, events.NewNodeRefreshedEvent(runID, nodeID))
	}

	out = append(out, h.resourceEdges(runID, nodeID, c)...)
	actorEvs, err := h.actorEdges(ctx, runID, nodeID, c)
	if err != nil {
		return nil, err
	}
	out = append(out, actorEvs...)

	return out, nil
}

func (h *dedupHandler) priorGraphState(ctx context.Context, c events.CandidateSignal, sourceURL string) (dedup.PriorGraphState, error) {
	var prior dedup.PriorGraphState
	fromURL, err := h.reader.SignalByTitleAndTypeFromURL(ctx, c.Title, c.NodeType, sourceURL)
	if err != nil {
		return prior, fmt.Errorf("ingest: signal by title/type/url: %w", err)
	}
	if fromURL != nil {
		prior.ExistingByTitleAndTypeFromURL = &fromURL.ID
	}
	anyURL, err := h.reader.SignalByTitleAndType(ctx, c.Title, c.NodeType)
	if err != nil {
		return prior, fmt.Errorf("ingest: signal by title/type: %w", err)
	}
	if anyURL != nil {
		prior.ExistingByTitleAndTypeAnyURL = &anyURL.ID
		prior.ExistingByTitleAndTypeAnyURLURL = anyURL.SourceURL
	}
	return prior, nil
}

func (h *dedupHandler) similarityMatch(ctx context.Context, embedding []float32, nodeType events.NodeType, bbox graph.BoundingBox) (*dedup.SimilarityMatch, error) {
	matches, err := h.reader.SimilarSignals(ctx, embedding, nodeType, bbox, dedup.SameSourceThreshold, 1)
	if err != nil {
		return nil, fmt.Errorf("ingest: similar signals: %w", err)
	}
	if len(matches) == 0 {
		return nil, nil
	}
	m := matches[0]
	return &dedup.SimilarityMatch{ExistingID: m.ExistingID, Similarity: m.Similarity, ExistingURL: m.ExistingURL}, nil
}

func discoveredBase(id uuid.UUID, sourceURL string, c events.CandidateSignal) events.DiscoveredBase {
	return events.DiscoveredBase{
		ID: id, Title: c.Title, Summary: c.Summary, SourceURL: sourceURL, AboutLocation: c.AboutLocation,
		AboutLocationName: c.AboutLocationName, StartsAt: c.StartsAt, EndsAt: c.EndsAt, Schedule: c.Schedule,
		Confidence: c.Confidence, ContentHash: c.ContentHash, Embedding: c.Embedding,
	}
}

// discoveredEventFrom builds the *Discovered event matching c.NodeType.
// Re-sending it on every verdict (not only Create) is intentional and
// idempotent: mergeSignal's $setOnInsert never resets fields already set,
// so replaying the same discovery on Corroborate/Refresh just re-affirms
// the node's identity before the verdict-specific event does the actual
// count/field update.
func discoveredEventFrom(runID uuid.UUID, base events.DiscoveredBase, c events.CandidateSignal) []events.Event {
	switch c.NodeType {
	case events.NodeGathering:
		return []events.Event{events.NewGatheringDiscoveredEvent(runID, base, c.GatheringType)}
	case events.NodeAid:
		return []events.Event{events.NewAidDiscoveredEvent(runID, base)}
	case events.NodeNeed:
		return []events.Event{events.NewNeedDiscoveredEvent(runID, base)}
	case events.NodeNotice:
		return []events.Event{events.NewNoticeDiscoveredEvent(runID, base, c.Severity, c.SourceAuthority, c.Category)}
	case events.NodeTension:
		return []events.Event{events.NewTensionDiscoveredEvent(runID, base, c.CauseHeat)}
	default:
		return nil
	}
}

func (h *dedupHandler) resourceEdges(runID uuid.UUID, nodeID uuid.UUID, c events.CandidateSignal) []events.Event {
	var out []events.Event
	for _, r := range c.ResourcesRequired {
		out = append(out, events.NewResourceEdgeCreatedEvent(runID, nodeID, r.Slug, "REQUIRES", r.Confidence, r.Quantity))
	}
	for _, r := range c.ResourcesOffered {
		out = append(out, events.NewResourceEdgeCreatedEvent(runID, nodeID, r.Slug, "OFFERS", r.Confidence, r.Quantity))
	}
	return out
}

func (h *dedupHandler) actorEdges(ctx context.Context, runID uuid.UUID, nodeID uuid.UUID, c events.CandidateSignal) ([]events.Event, error) {
	var out []events.Event
	for _, name := range c.MentionedActors {
		evs, err := h.linkActor(ctx, runID, nodeID, name, "MENTIONED_IN")
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	if strings.TrimSpace(c.AuthorActor) != "" {
		evs, err := h.linkActor(ctx, runID, nodeID, c.AuthorActor, "AUTHORED_BY")
		if err != nil {
			return nil, err
		}
		out = append(out, evs...)
	}
	return out, nil
}

// linkActor identifies name as an actor (if it does not already exist) and
// always links it to nodeID — an ActorLinkedToEntity is emitted on every
// call, but ActorIdentified only on the actor's first sighting, per the
// same create-once/link-always pattern dedup uses for signals.
func (h *dedupHandler) linkActor(ctx context.Context, runID uuid.UUID, nodeID uuid.UUID, name, edgeType string) ([]events.Event, error) {
	existing, err := h.reader.ActorByName(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("ingest: actor by name: %w", err)
	}
	actorID := uuid.New()
	var out []events.Event
	if existing != nil {
		actorID = existing.ID
	} else {
		out = append(out, events.NewActorIdentifiedEvent(runID, actorID, name, nil))
	}
	out = append(out, events.NewActorLinkedToEntityEvent(runID, actorID, nodeID, edgeType))
	return out, nil
}
