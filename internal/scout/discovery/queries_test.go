package discovery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDedupQueries_CollapsesJaccardNearDuplicates(t *testing.T) {
	in := []QueryCandidate{
		{Text: "legal aid for detained families in Minneapolis"},
		{Text: "legal aid for detained families Minneapolis"},
		{Text: "emergency shelter beds south side"},
	}
	out := DedupQueries(in)
	assert.Len(t, out, 2)
	assert.Equal(t, "legal aid for detained families in Minneapolis", out[0].Text)
	assert.Equal(t, "emergency shelter beds south side", out[1].Text)
}

func TestDedupQueries_CollapsesEmbeddingNearDuplicatesEvenWithDifferentWording(t *testing.T) {
	in := []QueryCandidate{
		{Text: "free legal counsel for detained immigrant families", Embedding: []float32{1, 0, 0}},
		{Text: "pro bono immigration lawyers near downtown", Embedding: []float32{0.99, 0.01, 0}},
	}
	out := DedupQueries(in)
	assert.Len(t, out, 1)
}

func TestDedupQueries_KeepsDissimilarQueries(t *testing.T) {
	in := []QueryCandidate{
		{Text: "legal aid for detained families", Embedding: []float32{1, 0, 0}},
		{Text: "food pantry hours this weekend", Embedding: []float32{0, 1, 0}},
	}
	out := DedupQueries(in)
	assert.Len(t, out, 2)
}

func TestJaccardSimilarity_IdenticalTextIsOne(t *testing.T) {
	assert.Equal(t, 1.0, jaccardSimilarity("same text here", "same text here"))
}

func TestCosineSimilarity_OrthogonalVectorsIsZero(t *testing.T) {
	assert.Equal(t, float32(0), cosineSimilarity([]float32{1, 0}, []float32{0, 1}))
}

func TestCosineSimilarity_MismatchedLengthsIsZero(t *testing.T) {
	assert.Equal(t, float32(0), cosineSimilarity([]float32{1, 0, 0}, []float32{1, 0}))
}
