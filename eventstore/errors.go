// Package eventstore defines the durable append-log contract: per-stream
// monotonic versions, a single snapshot slot per stream, and the
// optimistic-concurrency rule that protects aggregate invariants under
// concurrent writers.
package eventstore

import (
	"errors"
	"fmt"
)

// Store error taxonomy.
var (
	ErrNoEvents        = errors.New("eventstore: no events")
	ErrDuplicateEntry   = errors.New("eventstore: duplicate entry")
	ErrAppendEventStream = errors.New("eventstore: append failed")
	ErrNoEventStream    = errors.New("eventstore: no event stream")
	ErrQuery            = errors.New("eventstore: query failed")
)

// NoEventStreamError reports that a stream has no events at or after
// fromVersion. This is not an error at the use-case boundary — load
// interprets it as "empty stream since point X".
type NoEventStreamError struct {
	StreamID    string
	FromVersion uint64
}

func (e *NoEventStreamError) Error() string {
	return fmt.Sprintf("eventstore: no events for stream %q from version %d", e.StreamID, e.FromVersion)
}

// Is allows errors.Is(err, ErrNoEventStream) to match this type.
func (e *NoEventStreamError) Is(target error) bool {
	return target == ErrNoEventStream
}

// DuplicateEntryError reports that a conditional append lost the race:
// (stream_id, stream_version) already existed. Callers SHOULD translate
// this into a retryable signal.
type DuplicateEntryError struct {
	StreamID string
	Version  uint64
}

func (e *DuplicateEntryError) Error() string {
	return fmt.Sprintf("eventstore: stream %q already has an event at version %d", e.StreamID, e.Version)
}

// Is allows errors.Is(err, ErrDuplicateEntry) to match this type.
func (e *DuplicateEntryError) Is(target error) bool {
	return target == ErrDuplicateEntry
}
