package orchestration

import (
	"context"

	"github.com/google/uuid"

	"github.com/fourthplaces/rootsignal-sub003/internal/scout/eventlog"
)

// storeReader adapts *eventlog.Store to EventReader, translating its
// StoredEvent envelopes down to the two fields Shell.Resume needs.
type storeReader struct {
	store *eventlog.Store
}

// NewEventLogReader wraps a live event-log store so it can back a Shell
// without this package importing pgx or the store's full read surface.
func NewEventLogReader(store *eventlog.Store) EventReader {
	return storeReader{store: store}
}

func (r storeReader) ReadRange(ctx context.Context, runID uuid.UUID, fromSeq, toSeq int64) ([]EventRow, error) {
	stored, err := r.store.ReadRange(ctx, runID, fromSeq, toSeq)
	if err != nil {
		return nil, err
	}
	rows := make([]EventRow, len(stored))
	for i, se := range stored {
		rows[i] = EventRow{Sequence: se.Sequence, Event: se.Event}
	}
	return rows, nil
}
