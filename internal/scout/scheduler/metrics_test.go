package scheduler

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

func TestMetrics_ObserveSetsGaugesPerSource(t *testing.T) {
	m := NewMetrics()
	source := graph.Source{URL: "https://a.example", Weight: 0.7, ConsecutiveEmptyRuns: 2}

	m.Observe("twin-cities", source, 24)

	assert.Equal(t, float64(float32(0.7)), testutil.ToFloat64(m.weight.WithLabelValues("https://a.example", "twin-cities")))
	assert.Equal(t, float64(24), testutil.ToFloat64(m.cadenceHours.WithLabelValues("https://a.example", "twin-cities")))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.consecutiveEmptyRuns.WithLabelValues("https://a.example", "twin-cities")))
}
