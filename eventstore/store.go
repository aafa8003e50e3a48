package eventstore

import (
	"context"

	"github.com/bankledger/eventbank/bankaccount"
)

// EventStore is the durable append-log contract every backend
// (in-process, relational, AWS-managed key/value) implements. All
// methods are synchronous from the caller's point of view; an
// implementation may block or perform I/O within them.
type EventStore interface {
	// AppendEventStream persists events as consecutive records with
	// versions expectedNextVersion, expectedNextVersion+1, ….
	// Implementations MUST enforce, atomically per record, that
	// (streamID, version) does not already exist — the optimistic
	// concurrency rule that protects the aggregate from lost updates. A
	// losing writer gets
	// *DuplicateEntryError. Partial success on a mid-batch failure is
	// permitted, but the stream must be left such that a subsequent
	// EventStreamSince reports a version equal to the number of
	// records that did land, so a caller can retry with the correct
	// expectedNextVersion.
	AppendEventStream(ctx context.Context, streamID string, expectedNextVersion uint64, events []bankaccount.Event) error

	// EventStreamSince returns all events with stream_version >=
	// fromVersion in ascending order. An empty result is reported as
	// *NoEventStreamError, not a zero-length EventStream.
	EventStreamSince(ctx context.Context, streamID string, fromVersion uint64) (EventStream, error)

	// RecordSnapshot upserts the single snapshot slot keyed by
	// snapshot.StreamID, replacing any existing snapshot.
	RecordSnapshot(ctx context.Context, snapshot Snapshot) error

	// ReadSnapshot returns the latest snapshot for streamID, or
	// (Snapshot{}, false, nil) if none exists.
	ReadSnapshot(ctx context.Context, streamID string) (Snapshot, bool, error)
}
