package synthesis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/extractor"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/fetcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/region"
)

type fakeSearcher struct {
	results []fetcher.SearchResult
	err     error
	queries []string
}

func (f *fakeSearcher) Search(ctx context.Context, query string, opts fetcher.Options) ([]fetcher.SearchResult, error) {
	f.queries = append(f.queries, query)
	return f.results, f.err
}

type fakeExtractionClient struct{ response string }

func (f *fakeExtractionClient) Complete(ctx context.Context, req *llm.Request) (*llm.Response, error) {
	return &llm.Response{Content: []llm.Message{{
		Role: llm.ConversationRoleAssistant, Parts: []llm.Part{llm.TextPart{Text: f.response}},
	}}}, nil
}

func (f *fakeExtractionClient) Stream(ctx context.Context, req *llm.Request) (llm.Streamer, error) {
	return nil, llm.ErrStreamingUnsupported
}

func newTestExtractorEngine(t *testing.T, response string) *extractor.Extractor {
	t.Helper()
	e, err := extractor.New(llm.NewExtractor(&fakeExtractionClient{response: response}))
	require.NoError(t, err)
	return e
}

func TestFindResponses_SkipsColdTensions(t *testing.T) {
	s := New(nil, nil, nil, nil)
	searcher := &fakeSearcher{}
	extractorEngine := newTestExtractorEngine(t, `{"signals": []}`)

	cold := graph.Signal{NodeType: events.NodeTension, CauseHeat: 0.1}
	results, err := s.FindResponses(context.Background(), searcher, extractorEngine, region.Profile{}, []graph.Signal{cold})
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Empty(t, searcher.queries)
}

func TestFindResponses_SearchesAndExtractsForHotTensions(t *testing.T) {
	s := New(nil, nil, nil, nil)
	searcher := &fakeSearcher{results: []fetcher.SearchResult{
		{URL: "https://news.example/a", Title: "Mutual aid responds", Snippet: "Volunteers organize food drop"},
	}}
	extractorEngine := newTestExtractorEngine(t, `{"signals": [{
		"node_type": "Aid", "title": "Food drop", "summary": "volunteers organize", "is_firsthand": true
	}]}`)

	hot := graph.Signal{NodeType: events.NodeTension, CauseHeat: 0.9, Title: "eviction wave"}
	results, err := s.FindResponses(context.Background(), searcher, extractorEngine, region.Profile{}, []graph.Signal{hot})
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, []string{"eviction wave"}, searcher.queries)
	assert.Len(t, results[0].Found, 1)
}
