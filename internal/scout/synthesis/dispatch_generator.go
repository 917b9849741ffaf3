package synthesis

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

type dispatchDraft struct {
	Text           string   `json:"text"`
	CitedSignalIDs []string `json:"cited_signal_ids"`
}

// GenerateDispatch writes an append-only dispatch entry for a situation,
// per section 4.9 step 5: every claim in the text must cite a specific
// signal, and competing causal claims are presented side by side rather
// than resolved by the model. Uses the high-reasoning extractor, matching
// section 4.10's "stronger model" requirement for situation-facing
// narrative work.
func (s *Synthesizer) GenerateDispatch(ctx context.Context, runID uuid.UUID, situationSlug string, signals []graph.Signal) (events.DispatchCreatedEvent, error) {
	ctx = ctxOrBackground(ctx)
	if len(signals) == 0 {
		return events.DispatchCreatedEvent{}, fmt.Errorf("synthesis: dispatch generator: no signals to cite for %q", situationSlug)
	}

	schema, err := compileDispatchSchema()
	if err != nil {
		return events.DispatchCreatedEvent{}, err
	}

	raw, err := s.HighReasoning.ExtractJSON(ctx, dispatchSystemPrompt(), dispatchUserPrompt(signals), schema)
	if err != nil {
		return events.DispatchCreatedEvent{}, fmt.Errorf("synthesis: dispatch generator: %w", err)
	}

	var draft dispatchDraft
	if err := json.Unmarshal(raw, &draft); err != nil {
		return events.DispatchCreatedEvent{}, fmt.Errorf("synthesis: decode dispatch draft: %w", err)
	}

	cited := make([]uuid.UUID, 0, len(draft.CitedSignalIDs))
	for _, idStr := range draft.CitedSignalIDs {
		id, err := uuid.Parse(idStr)
		if err != nil {
			continue
		}
		cited = append(cited, id)
	}
	if len(cited) == 0 {
		return events.DispatchCreatedEvent{}, fmt.Errorf("synthesis: dispatch generator: draft cited no signals")
	}

	return events.NewDispatchCreatedEvent(runID, situationSlug, draft.Text, cited), nil
}

func dispatchSystemPrompt() string {
	return "You write a short, factual dispatch entry for a civic situation. " +
		"Every sentence must be traceable to one of the provided signals by ID. " +
		"When signals disagree on cause, present both claims side by side rather " +
		"than resolving them yourself. Respond only with the requested JSON."
}

func dispatchUserPrompt(signals []graph.Signal) string {
	var sb strings.Builder
	sb.WriteString("Signals:\n")
	for _, sig := range signals {
		fmt.Fprintf(&sb, "- id=%s type=%s title=%q summary=%q\n", sig.ID, sig.NodeType, sig.Title, sig.Summary)
	}
	return sb.String()
}
