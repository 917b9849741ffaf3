package extractor

import (
	"context"
	"fmt"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/fetcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

// PageSource is the fetcher.Archive surface this handler needs to recover
// the markdown text ContentFetchedEvent's lean payload leaves out.
type PageSource interface {
	GetPage(ctx context.Context, url, contentHash string) (fetcher.Page, error)
}

type extractionHandler struct {
	pages     PageSource
	extractor *Extractor
	regions   *region.Registry
}

// NewExtractionHandler builds the dispatcher.Handler driving the Signal
// Extractor Layer (section 4.6): on ContentFetched, it recovers the page
// text, runs one LLM extraction against the run's region profile, and
// emits SignalsExtracted (for the dedup handler downstream) plus one
// ExtractionDroppedNoDateEvent per dated-signal candidate the extractor
// rejected for lacking a date.
func NewExtractionHandler(pages PageSource, ex *Extractor, regions *region.Registry) dispatcher.Handler {
	h := &extractionHandler{pages: pages, extractor: ex, regions: regions}
	return dispatcher.Handler{
		ID:       "extraction",
		Priority: 1,
		Match:    func(ev events.Event) bool { return ev.Type() == events.TypeContentFetched },
		Handle:   h.handle,
	}
}

func (h *extractionHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	e := ev.(events.ContentFetchedEvent)

	profile, ok := h.regions.BySlug(state.Region.Slug)
	if !ok {
		return nil, fmt.Errorf("extraction: unknown region %q", state.Region.Slug)
	}

	page, err := h.pages.GetPage(ctx, e.URL, e.ContentHash)
	if err != nil {
		return nil, fmt.Errorf("extraction: get page: %w", err)
	}

	result, err := h.extractor.Extract(ctx, Content{
		SourceURL:   e.URL,
		ContentType: e.ContentType,
		Text:        page.Markdown,
		FetchedAt:   page.FetchedAt,
	}, profile)
	if err != nil {
		return nil, fmt.Errorf("extraction: extract: %w", err)
	}

	out := make([]events.Event, 0, len(result.Dropped)+1)
	if len(result.Signals) > 0 {
		out = append(out, events.NewSignalsExtractedEvent(state.RunID, e.SourceID, e.URL, result.Signals))
	}
	for _, d := range result.Dropped {
		out = append(out, events.NewExtractionDroppedNoDateEvent(state.RunID, e.SourceID, e.URL, d.Title))
	}
	return out, nil
}
