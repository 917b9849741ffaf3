package lint

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
)

// SituationLinter implements Gate 2 (section 4.10): checks a draft
// situation — plus its linked signals and, for an amendment, the
// previous published version — for narrative coherence, signal coverage,
// overlap with existing situations, and severity calibration. Takes a
// stronger model's Extractor than Gate 1, per section 4.10's "stronger
// model" requirement for situation-facing work.
type SituationLinter struct {
	policy    *PolicyGate
	extractor *llm.Extractor
}

// LintSituation runs Gate 2 over a draft situation. previous is the
// currently-published version, non-nil only when amending. overlapping
// is the set of existing situations the draft's centroid falls near,
// used to prompt the model to flag likely duplicates.
func (l *SituationLinter) LintSituation(ctx context.Context, runID uuid.UUID, slug string, situation graph.Situation, linked []graph.Signal, previous *graph.Situation, overlapping []graph.Situation) (SituationLintResult, error) {
	ctx = ctxOrBackground(ctx)

	policyInput := PolicyInput{MissingFields: missingSituationFields(situation)}
	if previous != nil {
		policyInput.TemperatureExceedsCeiling = situation.Temperature > computableTemperatureCeiling(linked)
	}

	verdict, err := l.policy.Evaluate(ctx, policyInput)
	if err != nil {
		return SituationLintResult{}, fmt.Errorf("lint: gate 2: %w", err)
	}
	if !verdict.Allow {
		reason := "policy violation"
		if len(verdict.Denials) > 0 {
			reason = verdict.Denials[0]
		}
		return situationQuarantineResult(runID, slug, reason), nil
	}

	schema, err := compileSituationVerdictSchema()
	if err != nil {
		return SituationLintResult{}, err
	}
	targetID := situationTargetID(slug)
	raw, err := l.extractor.ExtractJSON(ctx, situationLintSystemPrompt(), situationLintUserPrompt(situation, linked, previous, overlapping), schema)
	if err != nil {
		return SituationLintResult{}, fmt.Errorf("lint: gate 2: %w", err)
	}
	var sv signalVerdict
	if err := json.Unmarshal(raw, &sv); err != nil {
		return SituationLintResult{}, fmt.Errorf("lint: decode gate 2 verdict: %w", err)
	}

	outcome := Outcome(sv.Verdict)
	recorded := events.NewLintVerdictRecordedEvent(runID, targetID, GateSituation, sv.Verdict, sv.Reason, sv.Changes)
	evs := []events.Event{recorded}
	if outcome == OutcomeQuarantine {
		evs = append(evs, events.NewLintQuarantineIssuedEvent(runID, targetID, sv.Reason))
	}
	return SituationLintResult{Slug: slug, Outcome: outcome, Events: evs}, nil
}

// SituationLintResult is one situation's Gate 2 outcome.
type SituationLintResult struct {
	Slug    string
	Outcome Outcome
	Events  []events.Event
}

func situationQuarantineResult(runID uuid.UUID, slug, reason string) SituationLintResult {
	targetID := situationTargetID(slug)
	return SituationLintResult{
		Slug:    slug,
		Outcome: OutcomeQuarantine,
		Events: []events.Event{
			events.NewLintVerdictRecordedEvent(runID, targetID, GateSituation, string(OutcomeQuarantine), reason, nil),
			events.NewLintQuarantineIssuedEvent(runID, targetID, reason),
		},
	}
}

// situationTargetID derives a stable event target ID from a situation's
// slug so repeated lint passes over the same situation record against
// the same target rather than a fresh random ID each time.
func situationTargetID(slug string) uuid.UUID {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(slug))
}

func missingSituationFields(situation graph.Situation) []string {
	var missing []string
	if situation.Slug == "" {
		missing = append(missing, "slug")
	}
	if len(situation.SignalIDs) == 0 {
		missing = append(missing, "signal_ids")
	}
	return missing
}

// computableTemperatureCeiling enforces the invariant that a situation's
// temperature cannot exceed what its computable components yield (section
// 3.5): the ceiling is the same sensitivity-derived floor the situation
// weaver computes, so Gate 2 can reject a narrative temperature the model
// tried to inflate beyond the math.
func computableTemperatureCeiling(linked []graph.Signal) float32 {
	var maxRank int
	for _, sig := range linked {
		if rank := sensitivityRank(sig.Sensitivity); rank > maxRank {
			maxRank = rank
		}
	}
	return float32(maxRank) / float32(len(sensitivityOrder)-1)
}

func situationLintSystemPrompt() string {
	return "You review a draft civic situation for narrative coherence, signal " +
		"coverage, overlap with existing situations, and severity calibration. " +
		"For amendments, also check narrative drift and signal continuity against " +
		"the previous version. Return pass, correct (with field changes), " +
		"quarantine, or reject. Respond only with the requested JSON."
}

func situationLintUserPrompt(situation graph.Situation, linked []graph.Signal, previous *graph.Situation, overlapping []graph.Situation) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Draft situation %q: status=%s arc=%s temperature=%.2f\n", situation.Slug, situation.Status, situation.ArcState, situation.Temperature)
	sb.WriteString("Linked signals:\n")
	for _, sig := range linked {
		fmt.Fprintf(&sb, "- %s: %s\n", sig.NodeType, sig.Title)
	}
	if previous != nil {
		fmt.Fprintf(&sb, "Previous published version: arc=%s temperature=%.2f signal_count=%d\n", previous.ArcState, previous.Temperature, len(previous.SignalIDs))
	}
	if len(overlapping) > 0 {
		sb.WriteString("Nearby existing situations (check for duplication):\n")
		for _, o := range overlapping {
			fmt.Fprintf(&sb, "- %s (%s)\n", o.Slug, o.ArcState)
		}
	}
	return sb.String()
}
