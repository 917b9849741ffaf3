package discovery

import (
	"math"
	"strings"
)

// QueryCandidate is one implied_queries string carried on a Tension or
// Need signal, awaiting end-of-run deduplication into new search-query
// sources.
type QueryCandidate struct {
	Text      string
	Embedding []float32
}

// JaccardThreshold is the token-set similarity above which two queries
// are considered the same expansion query, per section 4.8's "dedup by
// Jaccard similarity and embedding".
const JaccardThreshold = 0.6

// EmbeddingThreshold is the cosine-similarity floor for the embedding
// half of the dedup check.
const EmbeddingThreshold float32 = 0.88

// DedupQueries collapses near-duplicate implied_queries down to one
// representative per cluster, preferring the first-seen text as the
// representative. Two candidates are considered duplicates if either
// their token Jaccard similarity or their embedding cosine similarity
// clears its threshold — matching section 4.8's "by Jaccard similarity
// and embedding" (either signal alone is enough to catch a near-duplicate
// the other misses: token overlap catches paraphrase-free near-matches,
// embeddings catch reworded ones).
func DedupQueries(candidates []QueryCandidate) []QueryCandidate {
	var kept []QueryCandidate
	for _, c := range candidates {
		duplicate := false
		for _, existing := range kept {
			if jaccardSimilarity(c.Text, existing.Text) >= JaccardThreshold {
				duplicate = true
				break
			}
			if len(c.Embedding) > 0 && len(existing.Embedding) > 0 &&
				cosineSimilarity(c.Embedding, existing.Embedding) >= EmbeddingThreshold {
				duplicate = true
				break
			}
		}
		if !duplicate {
			kept = append(kept, c)
		}
	}
	return kept
}

func jaccardSimilarity(a, b string) float64 {
	setA := tokenSet(a)
	setB := tokenSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	intersection := 0
	for tok := range setA {
		if _, ok := setB[tok]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

func tokenSet(s string) map[string]struct{} {
	fields := strings.Fields(strings.ToLower(s))
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[strings.Trim(f, ".,;:!?\"'()")] = struct{}{}
	}
	return set
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
