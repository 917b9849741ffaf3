// Package eventlog implements the Scout Engine's append-only, gap-free
// event store against PostgreSQL, per the schema in section 6.5: sequence
// (gap-free per run), run_id, event_type, payload (jsonb), caused_by,
// timestamp, stream.
package eventlog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/events"
)

const defaultTimeout = 10 * time.Second

// ErrStorageFailed wraps any backing-store error from Append, ReadRange,
// or ReadByType. Callers treat it as fatal for the run, per section 4.1.
var ErrStorageFailed = errors.New("eventlog: storage failed")

// rows is the minimal surface of pgx.Rows this package needs, so tests can
// substitute an in-memory fake without a live Postgres connection. Mirrors
// the collection/cursor interface-isolation idiom used for the runlog
// Mongo client.
type rows interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
	Close()
}

// querier is the minimal surface of *pgxpool.Pool / pgx.Tx this package
// depends on.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconnCommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) row
}

// row is the minimal surface of pgx.Row.
type row interface {
	Scan(dest ...any) error
}

// pgconnCommandTag abstracts pgconn.CommandTag so this file does not need
// to import pgconn directly just for the Exec return type.
type pgconnCommandTag interface {
	RowsAffected() int64
}

// DB is the connection-pool-shaped dependency the Store needs; *pgxpool.Pool
// satisfies it once adapted through PoolAdapter (see pool.go).
type DB interface {
	querier
	Begin(ctx context.Context) (Tx, error)
}

// Tx is a database transaction; pgx.Tx satisfies it through TxAdapter.
type Tx interface {
	querier
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// Store is the Event Store described in section 4.1. It serializes
// sequence assignment per run via a row-level lock on the run_counters
// table, so concurrent appends to the same run block rather than race.
type Store struct {
	db       DB
	registry *events.Registry
	timeout  time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithTimeout overrides the default per-call timeout (10s).
func WithTimeout(d time.Duration) Option {
	return func(s *Store) { s.timeout = d }
}

// New constructs a Store. registry must have a decoder registered for
// every event type the caller expects to read back; Append only needs
// Type()/Stream(), so an empty registry is fine for append-only use.
func New(db DB, registry *events.Registry, opts ...Option) *Store {
	s := &Store{db: db, registry: registry, timeout: defaultTimeout}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append atomically appends one or more events to a run's log with
// gap-free sequence assignment, per section 4.1's contract: all events in
// the batch persist, or none do. causedBy, if non-nil, is the parent
// sequence shared by every event in this batch (section 4.4 step 4
// assigns each child event its own sequence but a single causal parent
// per dispatch step).
func (s *Store) Append(ctx context.Context, runID uuid.UUID, causedBy *int64, evs []events.Event) (firstSeq int64, err error) {
	if len(evs) == 0 {
		return 0, nil
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: begin tx: %v", ErrStorageFailed, err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	// Lock (and create, if absent) the per-run counter row so concurrent
	// appends to the same run serialize instead of racing on sequence
	// assignment. This is the "appender holds a per-run mutex or
	// equivalent" contract from section 4.1.
	var next int64
	err = tx.QueryRow(ctx, `
		INSERT INTO scout_run_counters (run_id, next_sequence)
		VALUES ($1, 0)
		ON CONFLICT (run_id) DO UPDATE SET run_id = EXCLUDED.run_id
		RETURNING next_sequence
	`, runID).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("%w: lock run counter: %v", ErrStorageFailed, err)
	}

	firstSeq = next
	now := time.Now().UTC()
	stamped := make([]events.Event, len(evs))
	for i, ev := range evs {
		seq := next + int64(i)
		stamped[i] = ev.WithSequence(seq, causedBy, now)
	}

	for _, ev := range stamped {
		payload, mErr := json.Marshal(ev)
		if mErr != nil {
			return 0, fmt.Errorf("%w: marshal event %s: %v", ErrStorageFailed, ev.Type(), mErr)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO scout_events (sequence, run_id, event_type, payload, caused_by, "timestamp", stream)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
		`, ev.Sequence(), runID, string(ev.Type()), payload, ev.CausedBy(), ev.Timestamp(), string(ev.Stream()))
		if err != nil {
			return 0, fmt.Errorf("%w: insert event %s: %v", ErrStorageFailed, ev.Type(), err)
		}
	}

	_, err = tx.Exec(ctx, `UPDATE scout_run_counters SET next_sequence = $1 WHERE run_id = $2`, next+int64(len(evs)), runID)
	if err != nil {
		return 0, fmt.Errorf("%w: advance run counter: %v", ErrStorageFailed, err)
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("%w: commit: %v", ErrStorageFailed, err)
	}
	return firstSeq, nil
}

// StoredEvent is a row read back from the log: the decoded Event plus its
// envelope metadata, kept separate because a registry miss still yields a
// readable row (useful for audit/dump tooling that does not need every
// payload decoded).
type StoredEvent struct {
	Envelope events.Envelope
	Sequence int64
	RunID    uuid.UUID
	CausedBy *int64
	Timestamp time.Time
	Event    events.Event // nil if the registry has no decoder for this type
}

// ReadRange returns the ordered replay of events in [fromSeq, toSeq] for a
// run. toSeq < 0 means "through the end of the log".
func (s *Store) ReadRange(ctx context.Context, runID uuid.UUID, fromSeq, toSeq int64) ([]StoredEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r rows
	var err error
	if toSeq < 0 {
		r, err = s.db.Query(ctx, `
			SELECT sequence, run_id, event_type, payload, caused_by, "timestamp", stream
			FROM scout_events WHERE run_id = $1 AND sequence >= $2 ORDER BY sequence
		`, runID, fromSeq)
	} else {
		r, err = s.db.Query(ctx, `
			SELECT sequence, run_id, event_type, payload, caused_by, "timestamp", stream
			FROM scout_events WHERE run_id = $1 AND sequence BETWEEN $2 AND $3 ORDER BY sequence
		`, runID, fromSeq, toSeq)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read_range: %v", ErrStorageFailed, err)
	}
	return s.scanAll(r)
}

// ReadByType returns every event of the given type across all runs,
// ordered by sequence, for handler extract-filtering and audit tooling.
// filterRunID, if non-nil, restricts to a single run.
func (s *Store) ReadByType(ctx context.Context, eventType events.Type, filterRunID *uuid.UUID) ([]StoredEvent, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	var r rows
	var err error
	if filterRunID != nil {
		r, err = s.db.Query(ctx, `
			SELECT sequence, run_id, event_type, payload, caused_by, "timestamp", stream
			FROM scout_events WHERE event_type = $1 AND run_id = $2 ORDER BY sequence
		`, string(eventType), *filterRunID)
	} else {
		r, err = s.db.Query(ctx, `
			SELECT sequence, run_id, event_type, payload, caused_by, "timestamp", stream
			FROM scout_events WHERE event_type = $1 ORDER BY run_id, sequence
		`, string(eventType))
	}
	if err != nil {
		return nil, fmt.Errorf("%w: read_by_type: %v", ErrStorageFailed, err)
	}
	return s.scanAll(r)
}

func (s *Store) scanAll(r rows) ([]StoredEvent, error) {
	defer r.Close()
	var out []StoredEvent
	for r.Next() {
		var (
			seq       int64
			runID     uuid.UUID
			eventType string
			payload   []byte
			causedBy  *int64
			ts        time.Time
			stream    string
		)
		if err := r.Scan(&seq, &runID, &eventType, &payload, &causedBy, &ts, &stream); err != nil {
			return nil, fmt.Errorf("%w: scan: %v", ErrStorageFailed, err)
		}
		env := events.Envelope{Type: events.Type(eventType), Stream: events.Stream(stream), Version: 1, Payload: payload}
		se := StoredEvent{Envelope: env, Sequence: seq, RunID: runID, CausedBy: causedBy, Timestamp: ts}
		if s.registry != nil {
			if ev, err := s.registry.Decode(env); err == nil {
				se.Event = ev.WithSequence(seq, causedBy, ts)
			}
		}
		out = append(out, se)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows: %v", ErrStorageFailed, err)
	}
	return out, nil
}

// ensure pgx.Row satisfies our row interface without an adapter type.
var _ row = pgx.Row(nil)
