// Package scheduler composes each run's SchedulePlan from per-source
// state (weight, cadence, recency), derives the compositional cadence
// formula that governs how often a source is revisited, and updates
// weight and cadence at run end, per section 4.11.
package scheduler

import (
	"context"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// SourceReader is the narrow slice of graph.Reader the scheduler needs:
// the per-phase due-source query. Scoped down the same way the other
// packages' store seams are, so a hand-written fake can stand in for the
// real graph in tests.
type SourceReader interface {
	SourcesDue(ctx context.Context, phase events.Phase, budget int) ([]graph.Source, error)
}

// Budget caps how many sources each tier of a SchedulePlan draws,
// expressed as counts for the two phase tiers and as fractions of the
// phase total for the two opportunistic tiers (section 4.11).
type Budget struct {
	TensionCount        int
	ResponseCount       int
	ColdTierFraction    float64 // 0.15 of budget, per spec
	ExplorationFraction float64 // 0.10 of budget, per spec
}

// DefaultBudget matches section 4.11's stated fractions.
func DefaultBudget(tensionCount, responseCount int) Budget {
	return Budget{
		TensionCount:        tensionCount,
		ResponseCount:       responseCount,
		ColdTierFraction:    0.15,
		ExplorationFraction: 0.10,
	}
}

// SchedulePlan is one run's source worklist, partitioned by the tier that
// selected it (section 4.11).
type SchedulePlan struct {
	TensionSources     []graph.Source
	ResponseSources    []graph.Source
	ColdTierSources    []graph.Source
	ExplorationSources []graph.Source
}

// All flattens the plan into a single worklist, in tier priority order.
func (p SchedulePlan) All() []graph.Source {
	all := make([]graph.Source, 0, len(p.TensionSources)+len(p.ResponseSources)+len(p.ColdTierSources)+len(p.ExplorationSources))
	all = append(all, p.TensionSources...)
	all = append(all, p.ResponseSources...)
	all = append(all, p.ColdTierSources...)
	all = append(all, p.ExplorationSources...)
	return all
}

func ctxOrBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
