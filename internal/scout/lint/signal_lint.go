package lint

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
)

// SignalLintResult is one signal's Gate 1 outcome.
type SignalLintResult struct {
	SignalID uuid.UUID
	Outcome  Outcome
	Events   []events.Event
}

// SignalLinter implements Gate 1 (section 4.10): a policy pre-check
// followed by an AI verdict over a draft signal paired with its archived
// source content. Writes are bounded to the caller applying Changes
// through its own scoped signal-store interface; this package never
// holds write access to the graph itself.
type SignalLinter struct {
	policy    *PolicyGate
	extractor *llm.Extractor
}

type signalVerdict struct {
	Verdict string         `json:"verdict"`
	Reason  string         `json:"reason"`
	Changes map[string]any `json:"changes"`
}

// LintSignal runs Gate 1 over one draft signal. previous is the
// most-recently-published version of the same signal, if any — used to
// detect an automated sensitivity downgrade; pass nil for a first-time
// signal.
func (l *SignalLinter) LintSignal(ctx context.Context, runID uuid.UUID, signal graph.Signal, previous *graph.Signal, sourceContent string) (SignalLintResult, error) {
	ctx = ctxOrBackground(ctx)

	policyInput := PolicyInput{MissingFields: missingSignalFields(signal)}
	if previous != nil {
		policyInput.SensitivityDowngraded = sensitivityRank(signal.Sensitivity) < sensitivityRank(previous.Sensitivity)
	}

	verdict, err := l.policy.Evaluate(ctx, policyInput)
	if err != nil {
		return SignalLintResult{}, fmt.Errorf("lint: gate 1: %w", err)
	}
	if !verdict.Allow {
		reason := "policy violation"
		if len(verdict.Denials) > 0 {
			reason = verdict.Denials[0]
		}
		return quarantineResult(runID, signal.ID, GateSignal, reason), nil
	}

	schema, err := compileSignalVerdictSchema()
	if err != nil {
		return SignalLintResult{}, err
	}
	raw, err := l.extractor.ExtractJSON(ctx, signalLintSystemPrompt(), signalLintUserPrompt(signal, sourceContent), schema)
	if err != nil {
		return SignalLintResult{}, fmt.Errorf("lint: gate 1: %w", err)
	}
	var sv signalVerdict
	if err := json.Unmarshal(raw, &sv); err != nil {
		return SignalLintResult{}, fmt.Errorf("lint: decode gate 1 verdict: %w", err)
	}

	outcome := Outcome(sv.Verdict)
	recorded := events.NewLintVerdictRecordedEvent(runID, signal.ID, GateSignal, sv.Verdict, sv.Reason, sv.Changes)
	evs := []events.Event{recorded}
	if outcome == OutcomeQuarantine {
		evs = append(evs, events.NewLintQuarantineIssuedEvent(runID, signal.ID, sv.Reason))
	}
	return SignalLintResult{SignalID: signal.ID, Outcome: outcome, Events: evs}, nil
}

func quarantineResult(runID, targetID uuid.UUID, gate int, reason string) SignalLintResult {
	return SignalLintResult{
		SignalID: targetID,
		Outcome:  OutcomeQuarantine,
		Events: []events.Event{
			events.NewLintVerdictRecordedEvent(runID, targetID, gate, string(OutcomeQuarantine), reason, nil),
			events.NewLintQuarantineIssuedEvent(runID, targetID, reason),
		},
	}
}

func missingSignalFields(signal graph.Signal) []string {
	var missing []string
	if signal.Title == "" {
		missing = append(missing, "title")
	}
	if signal.Summary == "" {
		missing = append(missing, "summary")
	}
	if signal.SourceURL == "" {
		missing = append(missing, "source_url")
	}
	return missing
}

var sensitivityOrder = []string{"none", "low", "medium", "high"}

func sensitivityRank(label string) int {
	for i, l := range sensitivityOrder {
		if l == label {
			return i
		}
	}
	return 0
}

func signalLintSystemPrompt() string {
	return "You review one draft civic signal against its archived source content. " +
		"Verify the signal is supported by the source, then return pass, correct " +
		"(with field changes), quarantine (needs human review), or reject. " +
		"Respond only with the requested JSON."
}

func signalLintUserPrompt(signal graph.Signal, sourceContent string) string {
	return fmt.Sprintf(
		"Draft signal (%s): %s\n%s\nSource URL: %s\n\nArchived source content:\n%s",
		signal.NodeType, signal.Title, signal.Summary, signal.SourceURL, sourceContent,
	)
}
