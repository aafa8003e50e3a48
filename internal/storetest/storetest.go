// Package storetest is a compliance suite every eventstore.EventStore
// implementation is run against, covering append/load, missing
// streams, version conflicts, and snapshot round trips.
package storetest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore"
)

// Factory creates a fresh, isolated EventStore for a single subtest.
// Use t.Cleanup for teardown logic if necessary.
type Factory func(t *testing.T) eventstore.EventStore

// Run executes the compliance suite against newStore. Each subtest runs
// in parallel, so implementations must be concurrency-safe.
func Run(t *testing.T, newStore Factory) {
	t.Run("append/load/version", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		id := bankaccount.NewID()
		streamID := id.StreamID()
		now := time.Now().UTC()

		if err := s.AppendEventStream(ctx, streamID, 1, []bankaccount.Event{
			bankaccount.NewOpened(id, mustName(t, "alice"), now),
		}); err != nil {
			t.Fatalf("append opened: %v", err)
		}
		if err := s.AppendEventStream(ctx, streamID, 2, []bankaccount.Event{
			bankaccount.NewDeposited(id, 500, now),
		}); err != nil {
			t.Fatalf("append deposited: %v", err)
		}

		stream, err := s.EventStreamSince(ctx, streamID, 1)
		if err != nil {
			t.Fatalf("load: %v", err)
		}
		if len(stream.Events) != 2 {
			t.Fatalf("expected 2 events, got %d", len(stream.Events))
		}
		if stream.StreamVersion != 2 {
			t.Fatalf("expected version 2, got %d", stream.StreamVersion)
		}
	})

	t.Run("missing stream is reported distinctly", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		_, err := s.EventStreamSince(ctx, bankaccount.NewID().StreamID(), 1)
		var notFound *eventstore.NoEventStreamError
		if !errors.As(err, &notFound) {
			t.Fatalf("expected *NoEventStreamError, got %v", err)
		}
		if !errors.Is(err, eventstore.ErrNoEventStream) {
			t.Fatalf("expected errors.Is to match ErrNoEventStream")
		}
	})

	t.Run("version conflict", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		id := bankaccount.NewID()
		streamID := id.StreamID()
		now := time.Now().UTC()

		if err := s.AppendEventStream(ctx, streamID, 1, []bankaccount.Event{
			bankaccount.NewOpened(id, mustName(t, "bob"), now),
		}); err != nil {
			t.Fatalf("first append: %v", err)
		}

		// Retrying at the same expected version, as a losing concurrent
		// writer would, must fail.
		err := s.AppendEventStream(ctx, streamID, 1, []bankaccount.Event{
			bankaccount.NewDeposited(id, 5, now),
		})
		var conflict *eventstore.DuplicateEntryError
		if !errors.As(err, &conflict) {
			t.Fatalf("expected *DuplicateEntryError, got %v", err)
		}
		if !errors.Is(err, eventstore.ErrDuplicateEntry) {
			t.Fatalf("expected errors.Is to match ErrDuplicateEntry")
		}
	})

	t.Run("snapshot round trip", func(t *testing.T) {
		t.Parallel()
		ctx := context.Background()
		s := newStore(t)

		id := bankaccount.NewID()
		streamID := id.StreamID()
		now := time.Now().UTC().Truncate(time.Microsecond)

		if _, ok, err := s.ReadSnapshot(ctx, streamID); err != nil || ok {
			t.Fatalf("expected no snapshot initially, got ok=%v err=%v", ok, err)
		}

		snap := eventstore.Snapshot{
			StreamID:      streamID,
			StreamVersion: 1,
			Data: bankaccount.BankAccount{
				ID:        id,
				Name:      mustName(t, "carol"),
				Balance:   0,
				CreatedAt: now,
				UpdatedAt: now,
			},
			CreatedAt: now,
		}
		if err := s.RecordSnapshot(ctx, snap); err != nil {
			t.Fatalf("record snapshot: %v", err)
		}

		got, ok, err := s.ReadSnapshot(ctx, streamID)
		if err != nil || !ok {
			t.Fatalf("expected snapshot, got ok=%v err=%v", ok, err)
		}
		if got.StreamVersion != 1 || got.Data.Name.String() != "carol" {
			t.Fatalf("unexpected snapshot: %+v", got)
		}

		// Recording again at a later version replaces the slot; only
		// one snapshot exists per stream.
		snap.StreamVersion = 2
		snap.Data.Balance = 100
		if err := s.RecordSnapshot(ctx, snap); err != nil {
			t.Fatalf("record second snapshot: %v", err)
		}
		got, ok, err = s.ReadSnapshot(ctx, streamID)
		if err != nil || !ok || got.StreamVersion != 2 || got.Data.Balance != 100 {
			t.Fatalf("expected latest snapshot to replace the old one, got %+v (ok=%v)", got, ok)
		}
	})
}

func mustName(t *testing.T, s string) bankaccount.Name {
	t.Helper()
	n, err := bankaccount.ParseName(s)
	if err != nil {
		t.Fatalf("parse name %q: %v", s, err)
	}
	return n
}
