// Package snapshotter builds snapshots by fully replaying a stream,
// the straightforward approach named for this module: correctness over
// cleverness, since snapshots are a rehydration optimization and never
// the source of truth.
package snapshotter

import (
	"context"
	"fmt"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore"
)

// Clock abstracts "now" for the snapshot's CreatedAt field.
type Clock func() time.Time

// Snapshotter rebuilds and records snapshots for bank account streams.
type Snapshotter struct {
	store eventstore.EventStore
	now   Clock
}

// New creates a Snapshotter over store.
func New(store eventstore.EventStore, now Clock) *Snapshotter {
	if now == nil {
		now = time.Now
	}
	return &Snapshotter{store: store, now: now}
}

// Snapshot replays id's entire stream from version 1 and records the
// resulting state as the stream's snapshot. It does not consult any
// existing snapshot, so it is safe to call even if the previous
// snapshot is corrupt or absent.
func (s *Snapshotter) Snapshot(ctx context.Context, id bankaccount.ID) error {
	streamID := id.StreamID()

	stream, err := s.store.EventStreamSince(ctx, streamID, 1)
	if err != nil {
		return fmt.Errorf("snapshotter: could not load stream: %w", err)
	}

	agg, err := bankaccount.LoadFromHistory(bankaccount.New(), stream.Events, stream.StreamVersion)
	if err != nil {
		return fmt.Errorf("snapshotter: could not replay stream: %w", err)
	}
	if agg.State == nil {
		return fmt.Errorf("snapshotter: stream %q replayed to no state", streamID)
	}

	if err := s.store.RecordSnapshot(ctx, eventstore.Snapshot{
		StreamID:      streamID,
		StreamVersion: agg.Version,
		Data:          *agg.State,
		CreatedAt:     s.now(),
	}); err != nil {
		return fmt.Errorf("snapshotter: could not record snapshot: %w", err)
	}
	return nil
}
