package lint

import (
	"context"
	"fmt"

	"github.com/open-policy-agent/opa/rego"
)

// policyModule is the Rego policy consulted before either gate spends a
// model call: required fields present, sensitivity not silently
// downgraded by an automated correction, and the region's temperature
// ceiling (section 3.5) respected. Policy is data here, not code — this
// is what section 4.10 means by the engine delegating editorial policy to
// the lint gates rather than deciding it itself.
const policyModule = `
package rootsignal.lint

deny[msg] {
	field := input.missing_fields[_]
	msg := sprintf("missing required field: %s", [field])
}

deny[msg] {
	input.sensitivity_downgraded
	msg := "sensitivity may not be downgraded by an automated correction"
}

deny[msg] {
	input.temperature_exceeds_ceiling
	msg := "temperature exceeds the region's configured ceiling"
}

allow {
	count(deny) == 0
}
`

// PolicyVerdict is the deterministic pre-check's result. A false Allow
// short-circuits straight to Quarantine without calling the model.
type PolicyVerdict struct {
	Allow   bool
	Denials []string
}

// PolicyInput is the structural facts the Rego policy reasons over. It
// deliberately carries only booleans and string lists the caller has
// already computed from a graph.Signal or graph.Situation — the policy
// itself has no knowledge of either type.
type PolicyInput struct {
	MissingFields             []string `json:"missing_fields"`
	SensitivityDowngraded     bool     `json:"sensitivity_downgraded"`
	TemperatureExceedsCeiling bool     `json:"temperature_exceeds_ceiling"`
}

// PolicyGate wraps a prepared Rego query over policyModule.
type PolicyGate struct {
	query rego.PreparedEvalQuery
}

// NewPolicyGate compiles the lint policy once at startup.
func NewPolicyGate(ctx context.Context) (*PolicyGate, error) {
	query, err := rego.New(
		rego.Query("data.rootsignal.lint"),
		rego.Module("lint.rego", policyModule),
	).PrepareForEval(ctxOrBackground(ctx))
	if err != nil {
		return nil, fmt.Errorf("lint: compile policy: %w", err)
	}
	return &PolicyGate{query: query}, nil
}

// Evaluate runs the policy pre-check against input and reports whether
// the draft may proceed to the AI verdict stage.
func (g *PolicyGate) Evaluate(ctx context.Context, input PolicyInput) (PolicyVerdict, error) {
	missingFields := input.MissingFields
	if missingFields == nil {
		missingFields = []string{}
	}
	results, err := g.query.Eval(ctxOrBackground(ctx), rego.EvalInput(map[string]any{
		"missing_fields":              missingFields,
		"sensitivity_downgraded":      input.SensitivityDowngraded,
		"temperature_exceeds_ceiling": input.TemperatureExceedsCeiling,
	}))
	if err != nil {
		return PolicyVerdict{}, fmt.Errorf("lint: evaluate policy: %w", err)
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return PolicyVerdict{}, fmt.Errorf("lint: policy produced no result")
	}
	doc, ok := results[0].Expressions[0].Value.(map[string]interface{})
	if !ok {
		return PolicyVerdict{}, fmt.Errorf("lint: unexpected policy result shape")
	}

	var verdict PolicyVerdict
	if allow, ok := doc["allow"].(bool); ok {
		verdict.Allow = allow
	}
	if denials, ok := doc["deny"].([]interface{}); ok {
		for _, d := range denials {
			if msg, ok := d.(string); ok {
				verdict.Denials = append(verdict.Denials, msg)
			}
		}
	}
	return verdict, nil
}
