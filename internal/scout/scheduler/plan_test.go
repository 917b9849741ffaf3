package scheduler

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

type fakeSourceReader struct {
	tension  []graph.Source
	response []graph.Source
}

func (f *fakeSourceReader) SourcesDue(ctx context.Context, phase events.Phase, budget int) ([]graph.Source, error) {
	if phase == events.PhaseTensionPhase {
		return f.tension, nil
	}
	return f.response, nil
}

func TestBuildPlan_AssemblesAllFourTiers(t *testing.T) {
	tension := []graph.Source{{URL: "https://a.example"}}
	response := []graph.Source{{URL: "https://b.example"}}
	reader := &fakeSourceReader{tension: tension, response: response}

	dormant := graph.Source{URL: "https://c.example", ConsecutiveEmptyRuns: DormantThreshold}
	staleScrape := time.Now().Add(-30 * 24 * time.Hour)
	lowWeight := graph.Source{URL: "https://d.example", Weight: 0.2, LastScrapedAt: &staleScrape}
	allSources := []graph.Source{tension[0], response[0], dormant, lowWeight}

	planner := NewPlanner(reader, rand.New(rand.NewSource(1)))
	plan, err := planner.BuildPlan(context.Background(), DefaultBudget(10, 10), allSources)
	require.NoError(t, err)

	assert.Equal(t, tension, plan.TensionSources)
	assert.Equal(t, response, plan.ResponseSources)
	assert.NotEmpty(t, plan.ColdTierSources)
	assert.NotEmpty(t, plan.ExplorationSources)
	assert.Len(t, plan.All(), len(tension)+len(response)+len(plan.ColdTierSources)+len(plan.ExplorationSources))
}

func TestBuildPlan_ExcludesSourcesAlreadyInAnEarlierTier(t *testing.T) {
	shared := graph.Source{URL: "https://shared.example", ConsecutiveEmptyRuns: DormantThreshold}
	reader := &fakeSourceReader{tension: []graph.Source{shared}}
	allSources := []graph.Source{shared}

	planner := NewPlanner(reader, rand.New(rand.NewSource(1)))
	plan, err := planner.BuildPlan(context.Background(), DefaultBudget(5, 5), allSources)
	require.NoError(t, err)

	assert.NotContains(t, plan.ColdTierSources, shared)
}

func TestSampleExploration_SkipsRecentlyScrapedSources(t *testing.T) {
	recent := time.Now()
	recentSource := graph.Source{URL: "https://recent.example", Weight: 0.1, LastScrapedAt: &recent}
	staleSource := graph.Source{URL: "https://stale.example", Weight: 0.1}

	planner := NewPlanner(&fakeSourceReader{}, rand.New(rand.NewSource(1)))
	result := planner.sampleExploration([]graph.Source{recentSource, staleSource}, map[string]bool{}, 10)

	assert.Contains(t, result, staleSource)
	assert.NotContains(t, result, recentSource)
}
