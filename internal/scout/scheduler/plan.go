package scheduler

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// DormantThreshold is the consecutive-empty-run count at which a source
// is deactivated and becomes eligible only for cold-tier resurrection
// (section 4.11's "sources with >=5 consecutive empty runs go dormant").
const DormantThreshold = 5

// Planner builds a SchedulePlan from the phase-scoped reader plus a full
// source snapshot for the two opportunistic tiers, which aren't reachable
// through SourcesDue's phase-scoped query.
type Planner struct {
	reader SourceReader
	rng    *rand.Rand
}

// NewPlanner constructs a Planner. Pass a seeded *rand.Rand for
// reproducible cold-tier/exploration sampling in tests; nil uses a
// time-seeded default.
func NewPlanner(reader SourceReader, rng *rand.Rand) *Planner {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Planner{reader: reader, rng: rng}
}

// BuildPlan assembles the four-tier SchedulePlan: tension and response
// phase sources from the reader, then cold-tier resurrection and
// exploration sampled from allSources, which the caller is expected to
// have loaded once per run (section 4.11).
func (p *Planner) BuildPlan(ctx context.Context, budget Budget, allSources []graph.Source) (SchedulePlan, error) {
	ctx = ctxOrBackground(ctx)

	tension, err := p.reader.SourcesDue(ctx, events.PhaseTensionPhase, budget.TensionCount)
	if err != nil {
		return SchedulePlan{}, fmt.Errorf("scheduler: tension phase sources: %w", err)
	}
	response, err := p.reader.SourcesDue(ctx, events.PhaseResponsePhase, budget.ResponseCount)
	if err != nil {
		return SchedulePlan{}, fmt.Errorf("scheduler: response phase sources: %w", err)
	}

	phaseTotal := budget.TensionCount + budget.ResponseCount
	coldBudget := int(float64(phaseTotal) * budget.ColdTierFraction)
	explorationBudget := int(float64(phaseTotal) * budget.ExplorationFraction)

	already := make(map[string]bool, len(tension)+len(response))
	for _, s := range tension {
		already[s.URL] = true
	}
	for _, s := range response {
		already[s.URL] = true
	}

	cold := p.sampleColdTier(allSources, already, coldBudget)
	for _, s := range cold {
		already[s.URL] = true
	}
	exploration := p.sampleExploration(allSources, already, explorationBudget)

	return SchedulePlan{
		TensionSources:     tension,
		ResponseSources:    response,
		ColdTierSources:    cold,
		ExplorationSources: exploration,
	}, nil
}

// sampleColdTier randomly samples up to budget dormant or never-scraped
// sources (section 4.11's "cold-tier resurrection: 15% of budget randomly
// samples dormant/never-scraped").
func (p *Planner) sampleColdTier(all []graph.Source, already map[string]bool, budget int) []graph.Source {
	if budget <= 0 {
		return nil
	}
	var eligible []graph.Source
	for _, s := range all {
		if already[s.URL] {
			continue
		}
		if s.ConsecutiveEmptyRuns >= DormantThreshold || s.LastScrapedAt == nil {
			eligible = append(eligible, s)
		}
	}
	return p.sample(eligible, budget)
}

// sampleExploration randomly samples up to budget low-weight sources
// that haven't been scraped recently (section 4.11's "exploration: 10%
// of budget for low-weight, not-recently-scraped").
func (p *Planner) sampleExploration(all []graph.Source, already map[string]bool, budget int) []graph.Source {
	if budget <= 0 {
		return nil
	}
	const lowWeightCeiling = 0.4
	const recentWindow = 48 * time.Hour
	now := time.Now()

	var eligible []graph.Source
	for _, s := range all {
		if already[s.URL] {
			continue
		}
		if s.Weight > lowWeightCeiling {
			continue
		}
		if s.LastScrapedAt != nil && now.Sub(*s.LastScrapedAt) < recentWindow {
			continue
		}
		eligible = append(eligible, s)
	}
	return p.sample(eligible, budget)
}

// sample draws up to n sources from pool via a Fisher-Yates partial
// shuffle, using the Planner's own *rand.Rand so callers can make its
// output deterministic in tests.
func (p *Planner) sample(pool []graph.Source, n int) []graph.Source {
	if n >= len(pool) {
		sorted := make([]graph.Source, len(pool))
		copy(sorted, pool)
		sort.Slice(sorted, func(i, j int) bool { return sorted[i].URL < sorted[j].URL })
		return sorted
	}
	shuffled := make([]graph.Source, len(pool))
	copy(shuffled, pool)
	p.rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
	return shuffled[:n]
}
