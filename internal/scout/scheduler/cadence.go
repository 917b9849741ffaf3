package scheduler

import (
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Cadence floor and ceilings, per section 4.11.
const (
	CadenceFloor          = 4 * time.Hour
	CadenceCeilingSocial  = 72 * time.Hour
	CadenceCeilingWeb     = 360 * time.Hour
	baseCadenceSocial     = 12 * time.Hour
	baseCadenceWeb        = 48 * time.Hour
	baseCadenceSearch     = 24 * time.Hour
)

// CadenceInputs are the factors section 4.11's compositional formula
// multiplies against a category base cadence. Each factor is a
// multiplier: <1 tightens (fetch sooner), >1 loosens (fetch later).
type CadenceInputs struct {
	SourceRole           string // "social" | "web" | anything else treated as search
	AvgSignalsPerScrape  float64
	DominantSignalType   string
	MedianDaysToEvent    float64
	ConsecutiveEmptyRuns int
}

// EffectiveCadence computes effective_cadence = base(category) x
// yield_factor x type_factor x urgency_factor x backoff_factor, clamped
// to [CadenceFloor, ceiling(category)] (section 4.11).
func EffectiveCadence(in CadenceInputs) time.Duration {
	base := baseCadence(in.SourceRole)
	cadence := float64(base) *
		yieldFactor(in.AvgSignalsPerScrape) *
		typeFactor(in.DominantSignalType) *
		urgencyFactor(in.MedianDaysToEvent) *
		backoffFactor(in.ConsecutiveEmptyRuns)

	result := time.Duration(cadence)
	if result < CadenceFloor {
		result = CadenceFloor
	}
	if ceiling := cadenceCeiling(in.SourceRole); result > ceiling {
		result = ceiling
	}
	return result
}

func baseCadence(role string) time.Duration {
	switch category(role) {
	case "social":
		return baseCadenceSocial
	case "web":
		return baseCadenceWeb
	default:
		return baseCadenceSearch
	}
}

func cadenceCeiling(role string) time.Duration {
	if category(role) == "social" {
		return CadenceCeilingSocial
	}
	return CadenceCeilingWeb
}

func category(role string) string {
	lower := strings.ToLower(role)
	switch {
	case strings.Contains(lower, "social"):
		return "social"
	case strings.Contains(lower, "web"):
		return "web"
	default:
		return "search"
	}
}

// yieldFactor tightens cadence for sources that reliably produce
// signals, loosens it for sources that rarely do.
func yieldFactor(avgSignalsPerScrape float64) float64 {
	switch {
	case avgSignalsPerScrape >= 3:
		return 0.6
	case avgSignalsPerScrape >= 1:
		return 0.85
	case avgSignalsPerScrape > 0:
		return 1.2
	default:
		return 1.5
	}
}

// typeFactor tightens cadence for sources dominated by time-sensitive
// signal types (Gathering, Notice) and leaves others unchanged.
func typeFactor(dominantSignalType string) float64 {
	switch dominantSignalType {
	case "Gathering", "Notice":
		return 0.75
	default:
		return 1.0
	}
}

// urgencyFactor tightens cadence further the closer the median upcoming
// event is.
func urgencyFactor(medianDaysToEvent float64) float64 {
	switch {
	case medianDaysToEvent <= 0:
		return 1.0
	case medianDaysToEvent <= 2:
		return 0.5
	case medianDaysToEvent <= 7:
		return 0.8
	default:
		return 1.0
	}
}

// backoffFactor loosens cadence geometrically with consecutive empty
// runs, matching the deactivation threshold at DormantThreshold.
func backoffFactor(consecutiveEmptyRuns int) float64 {
	if consecutiveEmptyRuns <= 0 {
		return 1.0
	}
	factor := 1.0
	for i := 0; i < consecutiveEmptyRuns && i < DormantThreshold; i++ {
		factor *= 1.3
	}
	return factor
}

// NextFetch derives the next fetch time from a cadence using
// robfig/cron's ConstantDelaySchedule, the same Schedule interface the
// cron-driven job surfaces of the wider ecosystem use to answer "when
// does this next fire" — here repurposed from wall-clock cron
// expressions to a per-source computed interval.
func NextFetch(cadence time.Duration, from time.Time) time.Time {
	schedule := cron.ConstantDelaySchedule{Delay: cadence}
	return schedule.Next(from)
}
