package discovery

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// Embedder narrows embedding.Cache to the one call the Expansion handler
// needs, matching ingest.Embedder's shape for the same reason: a query
// string's embedding is cached by its own content hash.
type Embedder interface {
	Embed(ctx context.Context, contentHash, text string) ([]float32, error)
}

type expansionHandler struct {
	embedder Embedder
	budget   Budget
}

// NewExpansionHandler builds the dispatcher.Handler driving section 4.8's
// end-of-run query promotion: dedup this run's implied_queries and turn
// the survivors into new search-query sources.
func NewExpansionHandler(embedder Embedder, budget Budget) dispatcher.Handler {
	h := &expansionHandler{embedder: embedder, budget: budget}
	return dispatcher.Handler{
		ID:    "expansion",
		Priority: 1,
		Match: func(ev events.Event) bool { return ev.Type() == events.TypePhaseCompleted },
		Filter: func(ev events.Event) bool {
			e, ok := ev.(events.PhaseCompletedEvent)
			return ok && e.Phase == events.PhaseMetrics
		},
		Handle: h.handle,
	}
}

func (h *expansionHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	candidates := make([]QueryCandidate, 0, len(state.ExpansionQueries))
	for _, q := range state.ExpansionQueries {
		embedding, err := h.embedder.Embed(ctx, queryHash(q), q)
		if err != nil {
			return nil, fmt.Errorf("expansion: embed query %q: %w", q, err)
		}
		candidates = append(candidates, QueryCandidate{Text: q, Embedding: embedding})
	}
	deduped := DedupQueries(candidates)

	promoter := NewPromoter(h.budget)
	for _, c := range deduped {
		promoter.PromoteQuery(state.RunID, c.Text)
	}

	out := make([]events.Event, 0, len(promoter.SourceEvents())+1)
	for _, e := range promoter.SourceEvents() {
		out = append(out, e)
	}
	out = append(out, events.NewExpansionCompletedEvent(state.RunID, len(deduped), len(promoter.SourceEvents())))
	out = append(out, events.NewPhaseCompletedEvent(state.RunID, events.PhaseExpansion))
	return out, nil
}

func queryHash(q string) string {
	sum := sha256.Sum256([]byte(q))
	return hex.EncodeToString(sum[:])
}
