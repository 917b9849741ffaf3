// Package lint implements the two editorial gates that stand between a
// dispatcher-produced draft node and the published graph: Gate 1 (signal
// lint) and Gate 2 (situation lint). Both gates share the same shape —
// a deterministic policy pre-check that can short-circuit straight to a
// verdict without spending a model call, followed by an AI verdict for
// anything the policy doesn't already reject — so the engine itself never
// encodes editorial judgment; it only ever delegates to these two gates.
package lint

import (
	"context"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/llm"
)

// Outcome is a gate's terminal verdict, unified with the graph's own
// review-status enum (Draft | Published | Quarantined | Rejected).
type Outcome string

const (
	OutcomePass       Outcome = "pass"
	OutcomeCorrect    Outcome = "correct"
	OutcomeQuarantine Outcome = "quarantine"
	OutcomeReject     Outcome = "reject"
)

// Gate numbers, matching events.NewLintVerdictRecordedEvent's gate field.
const (
	GateSignal    = 1
	GateSituation = 2
)

// Gates bundles both lint stages behind the dependencies they share: a
// compiled policy pre-check and the LLM extractor used for the AI verdict.
type Gates struct {
	Policy    *PolicyGate
	Extractor *llm.Extractor
}

// New constructs the two gates over a shared policy engine and extractor.
// Gate 2 is expected to be handed a stronger model's Extractor by the
// caller, matching section 4.10's "stronger model" requirement for
// situation lint.
func New(policy *PolicyGate, signalExtractor, situationExtractor *llm.Extractor) (*SignalLinter, *SituationLinter) {
	return &SignalLinter{policy: policy, extractor: signalExtractor},
		&SituationLinter{policy: policy, extractor: situationExtractor}
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
