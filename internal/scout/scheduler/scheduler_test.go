package scheduler

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

func TestSchedulePlan_AllFlattensInTierOrder(t *testing.T) {
	plan := SchedulePlan{
		TensionSources:     []graph.Source{{URL: "https://t.example"}},
		ResponseSources:    []graph.Source{{URL: "https://r.example"}},
		ColdTierSources:    []graph.Source{{URL: "https://c.example"}},
		ExplorationSources: []graph.Source{{URL: "https://e.example"}},
	}

	all := plan.All()
	assert.Equal(t, []string{"https://t.example", "https://r.example", "https://c.example", "https://e.example"}, urls(all))
}

func urls(sources []graph.Source) []string {
	out := make([]string, len(sources))
	for i, s := range sources {
		out[i] = s.URL
	}
	return out
}

func TestDefaultBudget_SetsSpecFractions(t *testing.T) {
	b := DefaultBudget(10, 20)
	assert.Equal(t, 10, b.TensionCount)
	assert.Equal(t, 20, b.ResponseCount)
	assert.Equal(t, 0.15, b.ColdTierFraction)
	assert.Equal(t, 0.10, b.ExplorationFraction)
}
