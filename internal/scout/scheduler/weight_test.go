package scheduler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUpdateWeight_ClampsToMinAndMax(t *testing.T) {
	low := UpdateWeight(WeightInputs{PriorWeight: 0.5, CorroborationRate: 0, Now: time.Now()})
	assert.GreaterOrEqual(t, low, float32(MinWeight))

	high := UpdateWeight(WeightInputs{
		PriorWeight: 1.0, CorroborationRate: 1.0, NewEntitiesFound: 5, ContributedToHot: true, Now: time.Now(),
	})
	assert.LessOrEqual(t, high, float32(MaxWeight))
}

func TestUpdateWeight_HigherCorroborationYieldsHigherWeight(t *testing.T) {
	now := time.Now()
	lowCorrob := UpdateWeight(WeightInputs{PriorWeight: 0.5, CorroborationRate: 0.1, Now: now})
	highCorrob := UpdateWeight(WeightInputs{PriorWeight: 0.5, CorroborationRate: 0.9, Now: now})
	assert.Greater(t, highCorrob, lowCorrob)
}

func TestUpdateWeight_StaleSourceDecaysBelowFreshSource(t *testing.T) {
	now := time.Now()
	fresh := now.Add(-1 * time.Hour)
	stale := now.Add(-60 * 24 * time.Hour)

	freshWeight := UpdateWeight(WeightInputs{PriorWeight: 0.5, CorroborationRate: 0.5, LastScrapedAt: &fresh, Now: now})
	staleWeight := UpdateWeight(WeightInputs{PriorWeight: 0.5, CorroborationRate: 0.5, LastScrapedAt: &stale, Now: now})
	assert.Greater(t, freshWeight, staleWeight)
}

func TestDiversityBonus_ScalesWithNewEntities(t *testing.T) {
	assert.Equal(t, 0.0, diversityBonus(0))
	assert.Equal(t, 0.03, diversityBonus(1))
	assert.Equal(t, 0.08, diversityBonus(3))
}
