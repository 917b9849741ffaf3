package lint

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

const overlapRadiusKM = 10

// PageSource recovers a signal's archived source content for Gate 1's
// source-grounding check, the same narrow seam extractor.PageSource uses.
type PageSource interface {
	GetPage(ctx context.Context, url, contentHash string) (Page, error)
}

// Page is the subset of fetcher.Page Gate 1 reads; declared locally so
// this package does not import fetcher for a single field.
type Page struct {
	Markdown string
}

type gate1Handler struct {
	linter *SignalLinter
	reader graph.Reader
	pages  PageSource
}

// NewGate1Handler builds the dispatcher.Handler for Gate 1 (signal lint,
// section 4.10), reacting to every freshly created node.
func NewGate1Handler(linter *SignalLinter, reader graph.Reader, pages PageSource) dispatcher.Handler {
	h := &gate1Handler{linter: linter, reader: reader, pages: pages}
	return dispatcher.Handler{
		ID:       "lint-gate1",
		Priority: 1,
		Match:    func(ev events.Event) bool { return ev.Type() == events.TypeNodeCreated },
		Handle:   h.handle,
	}
}

func (h *gate1Handler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	e := ev.(events.NodeCreatedEvent)
	signal, err := h.reader.SignalByID(ctx, e.NodeID)
	if err != nil {
		return nil, fmt.Errorf("lint: gate 1: signal by id: %w", err)
	}
	if signal == nil {
		return nil, nil
	}

	var sourceContent string
	if page, err := h.pages.GetPage(ctx, signal.SourceURL, signal.ContentHash); err == nil {
		sourceContent = page.Markdown
	}

	result, err := h.linter.LintSignal(ctx, state.RunID, *signal, nil, sourceContent)
	if err != nil {
		return nil, fmt.Errorf("lint: gate 1: %w", err)
	}
	return result.Events, nil
}

type gate2Handler struct {
	linter *SituationLinter
	reader graph.Reader
}

// NewGate2Handler builds the dispatcher.Handler for Gate 2 (situation
// lint, section 4.10), reacting to a situation's identification or any
// later amendment.
func NewGate2Handler(linter *SituationLinter, reader graph.Reader) dispatcher.Handler {
	h := &gate2Handler{linter: linter, reader: reader}
	return dispatcher.Handler{
		ID:       "lint-gate2",
		Priority: 1,
		Match: func(ev events.Event) bool {
			return ev.Type() == events.TypeSituationIdentified || ev.Type() == events.TypeSituationChanged
		},
		Handle: h.handle,
	}
}

func (h *gate2Handler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	var slug string
	var amending bool
	switch e := ev.(type) {
	case events.SituationIdentifiedEvent:
		slug = e.Slug
	case events.SituationChangedEvent:
		slug = e.Slug
		amending = true
	default:
		return nil, nil
	}

	situation, err := h.reader.SituationBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("lint: gate 2: situation by slug: %w", err)
	}
	if situation == nil {
		return nil, nil
	}

	linked := make([]graph.Signal, 0, len(situation.SignalIDs))
	for _, id := range situation.SignalIDs {
		sig, err := h.reader.SignalByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("lint: gate 2: signal by id: %w", err)
		}
		if sig != nil {
			linked = append(linked, *sig)
		}
	}

	overlapping, err := h.reader.SituationsOverlapping(ctx, situation.Centroid, overlapRadiusKM)
	if err != nil {
		return nil, fmt.Errorf("lint: gate 2: situations overlapping: %w", err)
	}
	var others []graph.Situation
	for _, o := range overlapping {
		if o.Slug != slug {
			others = append(others, o)
		}
	}

	var previous *graph.Situation
	if amending {
		previous = situation
	}

	result, err := h.linter.LintSituation(ctx, state.RunID, slug, *situation, linked, previous, others)
	if err != nil {
		return nil, fmt.Errorf("lint: gate 2: %w", err)
	}
	return result.Events, nil
}
