package orchestration

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/aggregate"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/dispatcher"
	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// fakeAppender mirrors the dispatcher package's own test fake: an
// in-memory, gap-free-per-run sequence assigner standing in for
// eventlog.Store.
type fakeAppender struct {
	mu   sync.Mutex
	next map[uuid.UUID]int64
	log  []events.Event
}

func newFakeAppender() *fakeAppender {
	return &fakeAppender{next: map[uuid.UUID]int64{}}
}

func (f *fakeAppender) Append(ctx context.Context, runID uuid.UUID, causedBy *int64, evs []events.Event) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	first := f.next[runID]
	now := evs[0].Timestamp()
	for i, ev := range evs {
		stamped := ev.WithSequence(first+int64(i), causedBy, now)
		f.log = append(f.log, stamped)
	}
	f.next[runID] = first + int64(len(evs))
	return first, nil
}

// fakeReader plays back a fixed history for ReadRange, standing in for
// eventlog.Store.ReadRange without a live Postgres connection.
type fakeReader struct {
	rows []EventRow
}

func (f *fakeReader) ReadRange(ctx context.Context, runID uuid.UUID, fromSeq, toSeq int64) ([]EventRow, error) {
	return f.rows, nil
}

func newShell(reader EventReader) (*Shell, *fakeAppender) {
	appender := newFakeAppender()
	d := dispatcher.New(appender, dispatcher.NewRegistry(), nil)
	return New(reader, d), appender
}

func TestResume_FreshRunSeedsRunStarted(t *testing.T) {
	runID := uuid.New()
	region := events.RegionRef{Slug: "minneapolis"}
	shell, appender := newShell(&fakeReader{})

	result, err := shell.Resume(context.Background(), runID, region, []events.Event{events.NewRunStartedEvent(runID, region)})
	require.NoError(t, err)

	assert.False(t, result.AlreadyDone)
	assert.Equal(t, 0, result.EventsReplayed)
	require.Len(t, appender.log, 1)
	assert.Equal(t, events.TypeRunStarted, appender.log[0].Type())
}

func TestResume_CompletedRunIsNoOp(t *testing.T) {
	runID := uuid.New()
	reader := &fakeReader{rows: []EventRow{
		{Sequence: 0, Event: events.NewRunStartedEvent(runID, events.RegionRef{})},
		{Sequence: 1, Event: events.NewRunCompletedEvent(runID, events.RunStats{SignalsExtracted: 4})},
	}}
	shell, appender := newShell(reader)

	result, err := shell.Resume(context.Background(), runID, events.RegionRef{}, nil)
	require.NoError(t, err)

	assert.True(t, result.AlreadyDone)
	assert.Equal(t, 2, result.EventsReplayed)
	assert.Equal(t, 4, result.Stats.SignalsExtracted)
	assert.Empty(t, appender.log, "a terminal run must not re-invoke the dispatcher")
}

func TestResume_CancelledRunIsNoOp(t *testing.T) {
	runID := uuid.New()
	reader := &fakeReader{rows: []EventRow{
		{Sequence: 0, Event: events.NewRunStartedEvent(runID, events.RegionRef{})},
		{Sequence: 1, Event: events.NewRunCancelledEvent(runID, "budget exceeded")},
	}}
	shell, appender := newShell(reader)

	result, err := shell.Resume(context.Background(), runID, events.RegionRef{}, nil)
	require.NoError(t, err)

	assert.True(t, result.AlreadyDone)
	assert.Empty(t, appender.log)
}

func TestResume_MidTensionPhaseReseedsRunStarted(t *testing.T) {
	runID := uuid.New()
	sourceIDs := []uuid.UUID{uuid.New()}
	reader := &fakeReader{rows: []EventRow{
		{Sequence: 0, Event: events.NewRunStartedEvent(runID, events.RegionRef{})},
		{Sequence: 1, Event: events.NewSourcesScheduledEvent(runID, events.PhaseTensionPhase, sourceIDs)},
	}}
	shell, appender := newShell(reader)

	result, err := shell.Resume(context.Background(), runID, events.RegionRef{}, nil)
	require.NoError(t, err)

	assert.False(t, result.AlreadyDone)
	assert.Equal(t, 2, result.EventsReplayed)
	require.Len(t, appender.log, 1)
	assert.Equal(t, events.TypeRunStarted, appender.log[0].Type())
}

func TestResume_MidResponsePhaseReseedsTensionPhaseCompletion(t *testing.T) {
	runID := uuid.New()
	reader := &fakeReader{rows: []EventRow{
		{Sequence: 0, Event: events.NewRunStartedEvent(runID, events.RegionRef{})},
		{Sequence: 1, Event: events.NewSourcesScheduledEvent(runID, events.PhaseTensionPhase, nil)},
		{Sequence: 2, Event: events.NewPhaseCompletedEvent(runID, events.PhaseTensionPhase)},
		{Sequence: 3, Event: events.NewSourcesScheduledEvent(runID, events.PhaseResponsePhase, nil)},
	}}
	shell, appender := newShell(reader)

	result, err := shell.Resume(context.Background(), runID, events.RegionRef{}, nil)
	require.NoError(t, err)

	assert.False(t, result.AlreadyDone)
	require.Len(t, appender.log, 1)
	assert.Equal(t, events.TypePhaseCompleted, appender.log[0].Type())
}

func TestResume_UnknownEnvelopeDegradesGracefully(t *testing.T) {
	runID := uuid.New()
	reader := &fakeReader{rows: []EventRow{
		{Sequence: 0, Event: events.NewRunStartedEvent(runID, events.RegionRef{})},
		{Sequence: 1, Event: nil},
	}}
	shell, _ := newShell(reader)

	result, err := shell.Resume(context.Background(), runID, events.RegionRef{}, nil)
	require.NoError(t, err)
	assert.False(t, result.AlreadyDone)
}

func TestResumeSeedFor_CoversEveryNonTerminalPhase(t *testing.T) {
	runID := uuid.New()
	cases := []struct {
		phase events.Phase
		want  events.Type
	}{
		{events.PhaseScheduling, events.TypeRunStarted},
		{events.PhaseTensionPhase, events.TypeRunStarted},
		{events.PhaseResponsePhase, events.TypePhaseCompleted},
		{events.PhaseSynthesis, events.TypePhaseCompleted},
		{events.PhaseEnrichment, events.TypePhaseCompleted},
		{events.PhaseMetrics, events.TypePhaseCompleted},
		{events.PhaseExpansion, events.TypePhaseCompleted},
	}
	for _, c := range cases {
		state := aggregate.New(runID, events.RegionRef{})
		state.Phase = c.phase
		seed := resumeSeedFor(state)
		require.Len(t, seed, 1, "phase %s", c.phase)
		assert.Equal(t, c.want, seed[0].Type(), "phase %s", c.phase)
	}

	complete := aggregate.New(runID, events.RegionRef{})
	complete.Phase = events.PhaseComplete
	assert.Nil(t, resumeSeedFor(complete))
}
