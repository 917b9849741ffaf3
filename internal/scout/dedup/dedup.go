// Package dedup implements the dedup/corroboration decider: a pure
// function from a candidate signal and prior graph/run state to a
// verdict, per section 4.7. It holds no state of its own and performs
// no I/O — callers gather PriorGraphState and RunState from graph.Reader
// and the in-run cache before calling Decide.
package dedup

import (
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

const (
	// CrossSourceThreshold is the minimum embedding similarity for
	// cross-URL corroboration (decision order step 4).
	CrossSourceThreshold float32 = 0.92

	// SameSourceThreshold is the minimum embedding similarity for
	// same-URL refresh (decision order step 5).
	SameSourceThreshold float32 = 0.85
)

// Input groups everything Decide needs. Constructing it is the caller's
// job: PriorGraphState comes from graph.Reader lookups, RunState from an
// in-memory per-run cache, GraphSimilarityMatch from graph.Reader's
// vector-similarity query.
type Input struct {
	Candidate   events.CandidateSignal
	NodeType    events.NodeType
	SourceURL   string
	Embedding   []float32
	ContentHash string

	PriorGraph PriorGraphState
	RunState   RunState

	// SimilarityMatch is the closest existing node by embedding
	// similarity within the region's bounding box, if any was found.
	SimilarityMatch *SimilarityMatch
}

// PriorGraphState carries the two graph lookups decision order steps 2-3
// depend on.
type PriorGraphState struct {
	// ExistingByTitleAndTypeFromURL is set when a node with the same
	// title and node type already exists, sourced from the same URL.
	ExistingByTitleAndTypeFromURL *uuid.UUID

	// ExistingByTitleAndTypeAnyURL is set when a node with the same
	// title and node type exists from any URL (its origin URL is
	// reported separately so Corroborate can cite it).
	ExistingByTitleAndTypeAnyURL    *uuid.UUID
	ExistingByTitleAndTypeAnyURLURL string
}

// RunState carries in-run, not-yet-committed processing state — content
// hashes already seen this run — for decision order step 1.
type RunState struct {
	AlreadyProcessedHashes map[string]bool
}

// SimilarityMatch is the embedding-similarity candidate, already gated by
// the region bounding box (graph.SimilarityMatch, restated here so this
// package has no import-cycle dependency on graph).
type SimilarityMatch struct {
	ExistingID  uuid.UUID
	Similarity  float32
	ExistingURL string
}

// Verdict is Decide's result. Exactly one of the three outcomes holds;
// ExistingID is nil for Create.
type Verdict struct {
	Kind        events.Verdict
	ExistingID  *uuid.UUID
	ExistingURL string
}

func create() Verdict { return Verdict{Kind: events.VerdictCreate} }

func corroborate(id uuid.UUID, url string) Verdict {
	return Verdict{Kind: events.VerdictCorroborate, ExistingID: &id, ExistingURL: url}
}

func refresh(id uuid.UUID) Verdict {
	return Verdict{Kind: events.VerdictRefresh, ExistingID: &id}
}

// Decide applies the six-step decision order from section 4.7. It is a
// pure function: same input, same output, no side effects.
func Decide(in Input) Verdict {
	// Step 1: already processed this (source_url, content_hash) this run.
	if in.RunState.AlreadyProcessedHashes[hashKey(in.SourceURL, in.ContentHash)] {
		if in.PriorGraph.ExistingByTitleAndTypeFromURL != nil {
			return refresh(*in.PriorGraph.ExistingByTitleAndTypeFromURL)
		}
		if in.PriorGraph.ExistingByTitleAndTypeAnyURL != nil {
			return refresh(*in.PriorGraph.ExistingByTitleAndTypeAnyURL)
		}
	}

	// Step 2: exact title+type match from the same URL.
	if in.PriorGraph.ExistingByTitleAndTypeFromURL != nil {
		return refresh(*in.PriorGraph.ExistingByTitleAndTypeFromURL)
	}

	// Step 3: exact title+type match from a different URL.
	if in.PriorGraph.ExistingByTitleAndTypeAnyURL != nil {
		return corroborate(*in.PriorGraph.ExistingByTitleAndTypeAnyURL, in.PriorGraph.ExistingByTitleAndTypeAnyURLURL)
	}

	if in.SimilarityMatch != nil {
		sameURL := in.SimilarityMatch.ExistingURL == in.SourceURL

		// Step 4: cross-source embedding similarity (spatial gate already
		// applied by the caller when producing SimilarityMatch).
		if !sameURL && in.SimilarityMatch.Similarity >= CrossSourceThreshold {
			return corroborate(in.SimilarityMatch.ExistingID, in.SimilarityMatch.ExistingURL)
		}

		// Step 5: same-source embedding similarity.
		if sameURL && in.SimilarityMatch.Similarity >= SameSourceThreshold {
			return refresh(in.SimilarityMatch.ExistingID)
		}
	}

	// Step 6: no match.
	return create()
}

func hashKey(url, hash string) string { return url + "\x00" + hash }

// RecurrenceGapHint reports whether starts_at on the candidate and the
// matched existing node are far enough apart that Decide's Corroborate
// verdict above is probably wrong — two occurrences of a recurring
// gathering rather than the same occurrence reported twice. Decide does
// not consult this; it is exposed so a caller can log or flag the case
// for later review.
//
// TODO: once temporal-aware dedup is implemented, this threshold should
// gate step 4/5 directly instead of being an advisory side channel.
func RecurrenceGapHint(candidateStarts, existingStarts *time.Time, gap time.Duration) bool {
	if candidateStarts == nil || existingStarts == nil {
		return false
	}
	delta := candidateStarts.Sub(*existingStarts)
	if delta < 0 {
		delta = -delta
	}
	return delta >= gap
}
