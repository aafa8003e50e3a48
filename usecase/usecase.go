// Package usecase is the command pipeline described for a bank
// account: load the aggregate, decide which events a command produces,
// apply them, append them durably, and publish them on success. It is
// the one place that wires bankaccount, eventstore, and publisher
// together; none of those packages know about each other.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore"
	"github.com/bankledger/eventbank/publisher"
)

// Clock abstracts "now" so command handling stays deterministic under
// test; production wiring passes time.Now.
type Clock func() time.Time

// BankAccount orchestrates commands against a single bank account
// aggregate stream.
type BankAccount struct {
	store     eventstore.EventStore
	publisher publisher.Publisher
	now       Clock
}

// New wires an EventStore and a Publisher into a command use case. pub
// may be nil, in which case successful appends are not published —
// useful for tests that only care about the store.
func New(store eventstore.EventStore, pub publisher.Publisher, now Clock) *BankAccount {
	if now == nil {
		now = time.Now
	}
	return &BankAccount{store: store, publisher: pub, now: now}
}

// Get loads the current state of an account by replaying its stream
// from any recorded snapshot. If id has no snapshot and no event
// stream — it has never been opened — Get returns *NotFoundError.
func (u *BankAccount) Get(ctx context.Context, id bankaccount.ID) (bankaccount.Aggregate, error) {
	agg, found, err := u.load(ctx, id)
	if err != nil {
		return bankaccount.Aggregate{}, err
	}
	if !found {
		return bankaccount.Aggregate{}, &NotFoundError{ID: id}
	}
	return agg, nil
}

// Handle decides, applies, appends, and publishes the events produced
// by cmd. It does not retry on a version conflict; callers that expect
// contention should wrap the call in RetryOnConflict.
func (u *BankAccount) Handle(ctx context.Context, cmd bankaccount.Command) (bankaccount.Aggregate, error) {
	agg, _, err := u.load(ctx, cmd.AccountID())
	if err != nil {
		return bankaccount.Aggregate{}, err
	}

	events, err := bankaccount.HandleCommand(agg, cmd, u.now())
	if err != nil {
		return bankaccount.Aggregate{}, err
	}
	if len(events) == 0 {
		return agg, nil
	}

	next, err := bankaccount.LoadFromHistory(agg, events, agg.Version+uint64(len(events)))
	if err != nil {
		return bankaccount.Aggregate{}, err
	}

	streamID := cmd.AccountID().StreamID()
	expectedNextVersion := agg.Version + 1
	if err := u.store.AppendEventStream(ctx, streamID, expectedNextVersion, events); err != nil {
		return bankaccount.Aggregate{}, err
	}

	if u.publisher != nil {
		md := MetadataFromContext(ctx)
		published := make([]publisher.Published, len(events))
		version := agg.Version
		for i, e := range events {
			version++
			published[i] = publisher.Published{StreamID: streamID, Version: version, Event: e, Metadata: md}
		}
		if err := u.publisher.Publish(ctx, published); err != nil {
			// The append already committed; a publish failure is a
			// delivery concern for the caller to log and retry out of
			// band, not a reason to report the command as failed.
			return next, fmt.Errorf("usecase: command committed but publish failed: %w", err)
		}
	}

	return next, nil
}

// RetryOnConflict calls fn with a freshly loaded aggregate, retrying
// with a short backoff if fn returns an error matching
// eventstore.ErrDuplicateEntry — the case where a concurrent writer
// claimed the version this attempt expected.
func (u *BankAccount) RetryOnConflict(ctx context.Context, id bankaccount.ID, maxRetries int, fn func(bankaccount.Aggregate) (bankaccount.Command, error)) (bankaccount.Aggregate, error) {
	for attempt := 0; ; attempt++ {
		agg, _, err := u.load(ctx, id)
		if err != nil {
			return bankaccount.Aggregate{}, err
		}

		cmd, err := fn(agg)
		if err != nil {
			return bankaccount.Aggregate{}, err
		}

		result, err := u.Handle(ctx, cmd)
		if err == nil {
			return result, nil
		}

		var conflict *eventstore.DuplicateEntryError
		if !errors.As(err, &conflict) && !errors.Is(err, eventstore.ErrDuplicateEntry) {
			return bankaccount.Aggregate{}, err
		}
		if attempt == maxRetries {
			return bankaccount.Aggregate{}, err
		}

		backoff := time.Duration(10*(1<<uint(attempt))) * time.Millisecond
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return bankaccount.Aggregate{}, ctx.Err()
		}
	}
}

// load replays id's stream on top of any recorded snapshot. found
// reports whether a snapshot or any event was actually read — a caller
// that needs to distinguish "truly unknown account" from "about to
// Open" should inspect it rather than relying on the zero Aggregate
// alone, since a fresh, unopened Aggregate is also the zero value.
func (u *BankAccount) load(ctx context.Context, id bankaccount.ID) (agg bankaccount.Aggregate, found bool, err error) {
	base := bankaccount.New()
	fromVersion := uint64(1)

	snap, ok, err := u.store.ReadSnapshot(ctx, id.StreamID())
	if err != nil {
		return bankaccount.Aggregate{}, false, err
	}
	if ok {
		base = bankaccount.LoadFromSnapshot(snap.Data, snap.StreamVersion)
		fromVersion = snap.StreamVersion + 1
		found = true
	}

	stream, err := u.store.EventStreamSince(ctx, id.StreamID(), fromVersion)
	if err != nil {
		var notFound *eventstore.NoEventStreamError
		if errors.As(err, &notFound) {
			return base, found, nil
		}
		return bankaccount.Aggregate{}, false, err
	}

	agg, err = bankaccount.LoadFromHistory(base, stream.Events, stream.StreamVersion)
	if err != nil {
		return bankaccount.Aggregate{}, false, err
	}
	return agg, true, nil
}
