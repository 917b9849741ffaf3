package eventlog

import (
	"context"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

// fakeRow and fakeRows implement this package's row/rows seams over plain
// Go slices, standing in for a live Postgres connection in unit tests.

type storedRow struct {
	sequence  int64
	runID     uuid.UUID
	eventType string
	payload   []byte
	causedBy  *int64
	ts        time.Time
	stream    string
}

type fakeTag struct{ n int64 }

func (t fakeTag) RowsAffected() int64 { return t.n }

type fakeRows struct {
	data []storedRow
	i    int
}

func (r *fakeRows) Next() bool { r.i++; return r.i <= len(r.data) }
func (r *fakeRows) Scan(dest ...any) error {
	row := r.data[r.i-1]
	*dest[0].(*int64) = row.sequence
	*dest[1].(*uuid.UUID) = row.runID
	*dest[2].(*string) = row.eventType
	*dest[3].(*[]byte) = row.payload
	*dest[4].(**int64) = row.causedBy
	*dest[5].(*time.Time) = row.ts
	*dest[6].(*string) = row.stream
	return nil
}
func (r *fakeRows) Err() error { return nil }
func (r *fakeRows) Close()     {}

type fakeRowResult struct {
	next int64
	err  error
}

func (r fakeRowResult) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*int64) = r.next
	return nil
}

// fakeDB is an in-memory stand-in for the run-counter + event tables,
// recognized by the small fixed set of statements Store issues.
type fakeDB struct {
	counters map[uuid.UUID]int64
	evs      []storedRow
}

func newFakeDB() *fakeDB {
	return &fakeDB{counters: map[uuid.UUID]int64{}}
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error) {
	switch {
	case strings.Contains(sql, "INSERT INTO scout_events"):
		f.evs = append(f.evs, storedRow{
			sequence:  args[0].(int64),
			runID:     args[1].(uuid.UUID),
			eventType: args[2].(string),
			payload:   args[3].([]byte),
			causedBy:  args[4].(*int64),
			ts:        args[5].(time.Time),
			stream:    args[6].(string),
		})
		return fakeTag{1}, nil
	case strings.Contains(sql, "UPDATE scout_run_counters"):
		f.counters[args[1].(uuid.UUID)] = args[0].(int64)
		return fakeTag{1}, nil
	}
	return fakeTag{0}, nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (rows, error) {
	var out []storedRow
	switch {
	case strings.Contains(sql, "sequence >= $2"):
		runID, from := args[0].(uuid.UUID), args[1].(int64)
		for _, e := range f.evs {
			if e.runID == runID && e.sequence >= from {
				out = append(out, e)
			}
		}
	case strings.Contains(sql, "sequence BETWEEN"):
		runID, from, to := args[0].(uuid.UUID), args[1].(int64), args[2].(int64)
		for _, e := range f.evs {
			if e.runID == runID && e.sequence >= from && e.sequence <= to {
				out = append(out, e)
			}
		}
	case strings.Contains(sql, "event_type = $1 AND run_id = $2"):
		et, runID := args[0].(string), args[1].(uuid.UUID)
		for _, e := range f.evs {
			if e.eventType == et && e.runID == runID {
				out = append(out, e)
			}
		}
	case strings.Contains(sql, "event_type = $1"):
		et := args[0].(string)
		for _, e := range f.evs {
			if e.eventType == et {
				out = append(out, e)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].sequence < out[j].sequence })
	return &fakeRows{data: out}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) row {
	if strings.Contains(sql, "INSERT INTO scout_run_counters") {
		runID := args[0].(uuid.UUID)
		next, ok := f.counters[runID]
		if !ok {
			f.counters[runID] = 0
			next = 0
		}
		return fakeRowResult{next: next}
	}
	return fakeRowResult{err: errNotImplemented}
}

func (f *fakeDB) Begin(ctx context.Context) (Tx, error) {
	return &fakeTx{f}, nil
}

type fakeTx struct{ db *fakeDB }

func (t *fakeTx) Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error) {
	return t.db.Exec(ctx, sql, args...)
}
func (t *fakeTx) Query(ctx context.Context, sql string, args ...any) (rows, error) {
	return t.db.Query(ctx, sql, args...)
}
func (t *fakeTx) QueryRow(ctx context.Context, sql string, args ...any) row {
	return t.db.QueryRow(ctx, sql, args...)
}
func (t *fakeTx) Commit(ctx context.Context) error   { return nil }
func (t *fakeTx) Rollback(ctx context.Context) error { return nil }

var errNotImplemented = &storageStub{}

type storageStub struct{}

func (s *storageStub) Error() string { return "eventlog: fake query not recognized" }

func TestAppend_GapFreeSequencing(t *testing.T) {
	db := newFakeDB()
	store := New(db, events.NewRegistry())
	runID := uuid.New()

	first, err := store.Append(context.Background(), runID, nil, []events.Event{
		events.NewRunStartedEvent(runID, events.RegionRef{Slug: "minneapolis"}),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(0), first)

	second, err := store.Append(context.Background(), runID, nil, []events.Event{
		events.NewSourceQueuedEvent(runID, uuid.New(), "https://example.org"),
		events.NewSourceQueuedEvent(runID, uuid.New(), "https://example.net"),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(1), second)

	require.Len(t, db.evs, 3)
	seqs := []int64{db.evs[0].sequence, db.evs[1].sequence, db.evs[2].sequence}
	assert.Equal(t, []int64{0, 1, 2}, seqs)
}

func TestAppend_CausedBySharedAcrossBatch(t *testing.T) {
	db := newFakeDB()
	store := New(db, events.NewRegistry())
	runID := uuid.New()
	parent := int64(7)

	_, err := store.Append(context.Background(), runID, &parent, []events.Event{
		events.NewUrlProcessedEvent(runID, uuid.New(), "https://a"),
		events.NewUrlProcessedEvent(runID, uuid.New(), "https://b"),
	})
	require.NoError(t, err)
	for _, e := range db.evs {
		require.NotNil(t, e.causedBy)
		assert.Equal(t, parent, *e.causedBy)
	}
}

func TestReadRange_OrderedReplay(t *testing.T) {
	db := newFakeDB()
	store := New(db, events.NewRegistry())
	runID := uuid.New()

	for i := 0; i < 5; i++ {
		_, err := store.Append(context.Background(), runID, nil, []events.Event{
			events.NewUrlProcessedEvent(runID, uuid.New(), "https://x"),
		})
		require.NoError(t, err)
	}

	got, err := store.ReadRange(context.Background(), runID, 2, -1)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, int64(2), got[0].Sequence)
	assert.Equal(t, int64(4), got[2].Sequence)
}
