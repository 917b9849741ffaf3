// Package embedding provides the TextEmbedder trait dedup and discovery
// use for vector-similarity matching, plus a Redis-backed cache keyed by
// content hash so identical text is never re-embedded within a run or
// across runs.
package embedding

import (
	"context"
)

// TextEmbedder turns text into a fixed-dimension embedding vector.
// Implementations are provider adapters (OpenAI embeddings API today);
// callers should always go through Cache rather than an adapter directly
// so repeated text is never billed twice.
type TextEmbedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Dimensions reports the embedding's fixed width, used when sizing a
// Mongo Atlas vector index.
const Dimensions = 1536
