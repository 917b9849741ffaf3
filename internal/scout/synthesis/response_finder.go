package synthesis

import (
	"context"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/extractor"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/fetcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

// HotTensionThreshold is the minimum CauseHeat a tension needs before the
// response finder searches for responses to it, per section 4.9's "for
// each hot tension, search the web for responses".
const HotTensionThreshold float32 = 0.5

// Searcher is the narrow surface of a ContentFetcher the response finder
// calls — a web-search capability, since "search the web for responses"
// is a Search call, not a Page/Feed fetch.
type Searcher interface {
	Search(ctx context.Context, query string, opts fetcher.Options) ([]fetcher.SearchResult, error)
}

// ResponseFinderResult is one hot tension's response-search outcome: the
// signals extracted from search results, and an Events slice that
// FindResponses leaves empty — the extraction event and any RESPONDS_TO
// link are the caller's to emit once dedup has run, since they require the
// live graph.Reader state dedup already serializes against.
type ResponseFinderResult struct {
	TensionID uuid.UUID
	Found     []events.CandidateSignal
	Events    []events.Event
}

// FindResponses searches the web for responses to each hot tension and
// extracts candidate signals from the results, per section 4.9 step 2.
func (s *Synthesizer) FindResponses(ctx context.Context, searcher Searcher, extractorEngine *extractor.Extractor, profile region.Profile, hotTensions []graph.Signal) ([]ResponseFinderResult, error) {
	ctx = ctxOrBackground(ctx)
	var results []ResponseFinderResult

	for _, tension := range hotTensions {
		if tension.CauseHeat < HotTensionThreshold {
			continue
		}
		query := tension.Title
		hits, err := searcher.Search(ctx, query, fetcher.Options{})
		if err != nil {
			continue
		}

		var found []events.CandidateSignal
		for _, hit := range hits {
			content := extractor.Content{
				SourceURL:   hit.URL,
				ContentType: "search_result",
				Text:        hit.Title + "\n" + hit.Snippet,
				Trusted:     false,
			}
			result, err := extractorEngine.Extract(ctx, content, profile)
			if err != nil {
				continue
			}
			found = append(found, result.Signals...)
		}

		results = append(results, ResponseFinderResult{TensionID: tension.ID, Found: found})
	}

	return results, nil
}
