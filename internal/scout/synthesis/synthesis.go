// Package synthesis implements the five end-of-run sub-steps of section
// 4.9: tension linking, response finding, gathering finding, situation
// weaving, and dispatch generation. Each sub-step queries the graph
// through graph.Reader, optionally calls an llm.Extractor to confirm a
// causal link or write prose, and returns the batch of events its pass
// produced — the same single-handler-call, single-batch-of-child-events
// shape the dispatcher expects of every other handler.
package synthesis

import (
	"context"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/embedding"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
)

// Synthesizer holds the dependencies every sub-step needs: a read-only
// graph view, an embedder for similarity queries, and an LLM extractor
// for the steps that require a model call.
type Synthesizer struct {
	Reader    graph.Reader
	Embedder  embedding.TextEmbedder
	Extractor *llm.Extractor

	// HighReasoning is used for dispatch writing, which section 4.10 calls
	// out as needing a "stronger model" than everyday extraction; situation
	// weaving makes no model call.
	HighReasoning *llm.Extractor
}

// New builds a Synthesizer.
func New(reader graph.Reader, embedder embedding.TextEmbedder, extractor, highReasoning *llm.Extractor) *Synthesizer {
	return &Synthesizer{Reader: reader, Embedder: embedder, Extractor: extractor, HighReasoning: highReasoning}
}

// ctxOrBackground is a guard used by sub-steps that may be invoked from
// tests without a request-scoped context.
func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
