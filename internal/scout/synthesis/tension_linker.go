package synthesis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// MaxLinkRetries is the retry count at which an unlinked signal is
// promoted to abandoned rather than retried again next run, per section
// 4.9's "pre-pass promotes failed + retry >= 3 to abandoned".
const MaxLinkRetries = 3

// SimilarTensionThreshold is the embedding-similarity floor for a
// candidate tension to be offered to the LLM for causal-link
// confirmation.
const SimilarTensionThreshold float32 = 0.75

// TensionLinkOutcome is the per-signal result of one LinkTensions pass.
type TensionLinkOutcome struct {
	SignalID uuid.UUID
	Events   []events.Event
}

type causalLinkVerdict struct {
	TensionID   string `json:"tension_id"`
	Linked      bool   `json:"linked"`
	Explanation string `json:"explanation"`
}

// LinkTensions runs the tension-linker sub-step (section 4.9, step 1): for
// every Aid/Gathering/Need/Notice signal not yet linked to a tension and
// not abandoned, it first applies the retry-exhaustion pre-pass, then
// queries for candidate tensions by embedding similarity and geo
// proximity and asks the LLM to confirm a causal link.
func (s *Synthesizer) LinkTensions(ctx context.Context, runID uuid.UUID, tensionCandidates []graph.Signal, unlinked []graph.Signal) ([]TensionLinkOutcome, error) {
	ctx = ctxOrBackground(ctx)
	var outcomes []TensionLinkOutcome

	for _, signal := range unlinked {
		if signal.CuriosityInvestigated == "abandoned" {
			continue
		}
		if signal.RetryCount >= MaxLinkRetries {
			outcomes = append(outcomes, TensionLinkOutcome{
				SignalID: signal.ID,
				Events: []events.Event{
					events.NewTensionLinkerOutcomeRecordedEvent(runID, signal.ID, "abandoned"),
				},
			})
			continue
		}

		candidate, explanation, err := s.confirmCausalLink(ctx, signal, tensionCandidates)
		if err != nil {
			return nil, fmt.Errorf("synthesis: tension linker: %w", err)
		}
		if candidate == uuid.Nil {
			outcomes = append(outcomes, TensionLinkOutcome{
				SignalID: signal.ID,
				Events: []events.Event{
					events.NewTensionLinkerOutcomeRecordedEvent(runID, signal.ID, "no-match"),
				},
			})
			continue
		}

		var linkEvent events.Event
		switch signal.NodeType {
		case events.NodeAid, events.NodeGathering:
			linkEvent = events.NewResponseLinkedEvent(runID, signal.ID, candidate, explanation)
		default:
			linkEvent = events.NewEvidenceLinkedEvent(runID, signal.ID, candidate)
		}
		outcomes = append(outcomes, TensionLinkOutcome{
			SignalID: signal.ID,
			Events: []events.Event{
				linkEvent,
				events.NewTensionLinkerOutcomeRecordedEvent(runID, signal.ID, "linked"),
			},
		})
	}

	return outcomes, nil
}

// confirmCausalLink ranks candidate tensions by embedding similarity
// against the signal, then — for candidates clearing
// SimilarTensionThreshold — asks the LLM to confirm the strongest one is
// causally connected. Returns uuid.Nil if no candidate is confirmed.
func (s *Synthesizer) confirmCausalLink(ctx context.Context, signal graph.Signal, candidates []graph.Signal) (uuid.UUID, string, error) {
	best, bestScore := pickBestCandidate(signal, candidates)
	if best == nil || bestScore < SimilarTensionThreshold {
		return uuid.Nil, "", nil
	}

	schema, err := compileCausalLinkSchema()
	if err != nil {
		return uuid.Nil, "", err
	}
	raw, err := s.Extractor.ExtractJSON(ctx,
		causalLinkSystemPrompt(),
		causalLinkUserPrompt(signal, *best),
		schema,
	)
	if err != nil {
		return uuid.Nil, "", err
	}
	var verdict causalLinkVerdict
	if err := json.Unmarshal(raw, &verdict); err != nil {
		return uuid.Nil, "", fmt.Errorf("synthesis: decode causal link verdict: %w", err)
	}
	if !verdict.Linked {
		return uuid.Nil, "", nil
	}
	id, err := uuid.Parse(verdict.TensionID)
	if err != nil {
		return uuid.Nil, "", fmt.Errorf("synthesis: causal link verdict tension_id: %w", err)
	}
	return id, verdict.Explanation, nil
}

func pickBestCandidate(signal graph.Signal, candidates []graph.Signal) (*graph.Signal, float32) {
	var best *graph.Signal
	var bestScore float32
	for i := range candidates {
		score := cosineSimilarity(signal.Embedding, candidates[i].Embedding)
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best, bestScore
}

func causalLinkSystemPrompt() string {
	return "You confirm whether a civic signal is causally connected to a named tension. " +
		"Respond only with the requested JSON."
}

func causalLinkUserPrompt(signal, tension graph.Signal) string {
	return fmt.Sprintf(
		"Signal (%s): %s\n%s\n\nCandidate tension (%s): %s\n%s\n\n"+
			"Is the signal causally connected to this tension? If so, briefly explain why.",
		signal.NodeType, signal.Title, signal.Summary,
		tension.ID, tension.Title, tension.Summary,
	)
}
