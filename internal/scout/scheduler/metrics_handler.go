package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/graph"
)

// SourceByIDReader is the graph.Reader slice the metrics handler needs:
// one lookup per source this run scheduled.
type SourceByIDReader interface {
	SourceByID(ctx context.Context, id uuid.UUID) (*graph.Source, error)
}

type metricsHandler struct {
	reader  SourceByIDReader
	metrics *Metrics
}

// NewMetricsHandler builds the dispatcher.Handler driving section 4.11's
// end-of-run weight/cadence update: every source this run scheduled gets
// a posterior weight, an effective cadence, and a dormancy check against
// DormantThreshold.
func NewMetricsHandler(reader SourceByIDReader, metrics *Metrics) dispatcher.Handler {
	h := &metricsHandler{reader: reader, metrics: metrics}
	return dispatcher.Handler{
		ID:    "metrics",
		Priority: 1,
		Match: func(ev events.Event) bool { return ev.Type() == events.TypePhaseCompleted },
		Filter: func(ev events.Event) bool {
			e, ok := ev.(events.PhaseCompletedEvent)
			return ok && e.Phase == events.PhaseEnrichment
		},
		Handle: h.handle,
	}
}

func (h *metricsHandler) handle(ctx context.Context, ev events.Event, state *aggregate.State) ([]events.Event, error) {
	seen := make(map[uuid.UUID]bool, len(state.ScheduledSourceIDs))
	var out []events.Event
	now := time.Now()

	for _, id := range state.ScheduledSourceIDs {
		if seen[id] {
			continue
		}
		seen[id] = true

		source, err := h.reader.SourceByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("metrics: source by id %s: %w", id, err)
		}
		if source == nil {
			continue
		}

		yield := state.SignalYieldPerSource[id]
		consecutiveEmptyRuns := source.ConsecutiveEmptyRuns
		if yield > 0 {
			consecutiveEmptyRuns = 0
		} else {
			consecutiveEmptyRuns++
		}

		corroborationRate := 0.0
		if yield > 0 {
			corroborationRate = float64(state.Stats.NodesCorroborated) / float64(state.Stats.SignalsExtracted+1)
		}

		weight := UpdateWeight(WeightInputs{
			PriorWeight:       source.Weight,
			CorroborationRate: corroborationRate,
			NewEntitiesFound:  yield,
			ContributedToHot:  false,
			LastScrapedAt:     source.LastScrapedAt,
			Now:               now,
		})
		cadence := EffectiveCadence(CadenceInputs{
			SourceRole:           source.SourceRole,
			AvgSignalsPerScrape:  float64(yield),
			ConsecutiveEmptyRuns: consecutiveEmptyRuns,
		})

		deactivated := consecutiveEmptyRuns >= DormantThreshold
		h.metrics.Observe(state.Region.Slug, *source, cadence.Hours())

		fields := map[string]any{
			"weight":                 weight,
			"cadence_hours":          float32(cadence.Hours()),
			"consecutive_empty_runs": consecutiveEmptyRuns,
			"last_scraped_at":        now,
		}
		out = append(out, events.NewSourceChangedEvent(state.RunID, id, fields))
		if deactivated && !source.Deactivated {
			out = append(out, events.NewSourceDeactivatedEvent(state.RunID, id, "consecutive_empty_runs_exceeded"))
		}
		out = append(out, events.NewMetricsUpdatedEvent(state.RunID, id, weight, float32(cadence.Hours()), deactivated))
	}

	out = append(out, events.NewPhaseCompletedEvent(state.RunID, events.PhaseMetrics))
	return out, nil
}
