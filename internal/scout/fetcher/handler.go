package fetcher

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/discovery"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// fetchHandler reacts to SourceQueued, fetches the page, and always
// terminates with UrlProcessed — the event the scheduling phase's
// settlement guard watches for — whether the fetch succeeded, found
// nothing new, or failed outright (section 4.5/4.8).
type fetchHandler struct {
	fetcher ContentFetcher
	archive *Archive
	budget  discovery.Budget

	mu        sync.Mutex
	promoters map[uuid.UUID]*discovery.Promoter
}

// NewFetchHandler builds the dispatcher.Handler driving the Content
// Fetcher Layer + link promotion, per sections 4.5 and 4.8. fetcher is
// typically a *BreakingFetcher wrapping a *WebFetcher.
func NewFetchHandler(fetcher ContentFetcher, archive *Archive, budget discovery.Budget) dispatcher.Handler {
	h := &fetchHandler{fetcher: fetcher, archive: archive, budget: budget, promoters: make(map[uuid.UUID]*discovery.Promoter)}
	return dispatcher.Handler{
		ID:       "fetch",
		Priority: 1,
		Match:    func(ev events.Event) bool { return ev.Type() == events.TypeSourceQueued },
		Handle:   h.handle,
	}
}

func (h *fetchHandler) promoterFor(runID uuid.UUID) *discovery.Promoter {
	h.mu.Lock()
	defer h.mu.Unlock()
	p, ok := h.promoters[runID]
	if !ok {
		p = discovery.NewPromoter(h.budget)
		h.promoters[runID] = p
	}
	return p
}

func (h *fetchHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	e := ev.(events.SourceQueuedEvent)
	runID := state.RunID

	page, err := h.fetcher.Page(ctx, e.URL, Options{})
	if err != nil {
		kind := "TransientFetch"
		if errors.Is(err, ErrSourceCircuitOpen) {
			kind = "PermanentFetch"
		}
		return []events.Event{
			events.NewContentFetchFailedEvent(runID, e.SourceID, e.URL, kind, err.Error()),
			events.NewUrlProcessedEvent(runID, e.SourceID, e.URL),
		}, nil
	}

	seen, err := h.archive.SeenHash(ctx, page.URL, page.ContentHash)
	if err != nil {
		return nil, err
	}
	if seen {
		return []events.Event{
			events.NewContentUnchangedEvent(runID, e.SourceID, e.URL),
			events.NewUrlProcessedEvent(runID, e.SourceID, e.URL),
		}, nil
	}
	if err := h.archive.StorePage(ctx, page); err != nil {
		return nil, err
	}

	out := []events.Event{
		events.NewContentFetchedEvent(runID, e.SourceID, page.URL, page.ContentHash, "page"),
		events.NewCitationRecordedEvent(runID, page.URL, page.ContentHash, excerpt(page.Markdown), page.FetchedAt),
	}

	promoter := h.promoterFor(runID)
	for _, link := range page.OutboundLinks {
		before := len(promoter.LinkEvents())
		if promoter.PromoteLink(runID, link) {
			out = append(out, promoter.LinkEvents()[before])
		}
	}

	out = append(out, events.NewUrlProcessedEvent(runID, e.SourceID, e.URL))
	return out, nil
}

func excerpt(markdown string) string {
	const maxLen = 500
	if len(markdown) <= maxLen {
		return markdown
	}
	return markdown[:maxLen]
}
