// Package memstore is an in-process EventStore. It is concurrency-safe
// and intended for tests, prototypes, and single-process runs.
package memstore

import (
	"context"
	"sync"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore"
)

// Store holds every stream's events and at most one snapshot per
// stream behind a single read/write lock: appends and snapshot writes
// take it exclusively, reads share it.
type Store struct {
	mu        sync.RWMutex
	streams   map[string][]eventstore.Record
	snapshots map[string]eventstore.Snapshot
}

// New creates an empty in-process Store.
func New() *Store {
	return &Store{
		streams:   make(map[string][]eventstore.Record),
		snapshots: make(map[string]eventstore.Snapshot),
	}
}

// AppendEventStream implements eventstore.EventStore.
func (s *Store) AppendEventStream(_ context.Context, streamID string, expectedNextVersion uint64, events []bankaccount.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	seq := s.streams[streamID]
	currentVersion := uint64(len(seq))

	// The composite predicate "record does not already exist AND batch
	// versions start exactly at expectedNextVersion" reduces to this
	// single version check over a contiguous slice.
	if currentVersion+1 != expectedNextVersion {
		return &eventstore.DuplicateEntryError{StreamID: streamID, Version: expectedNextVersion}
	}

	for _, e := range events {
		body, err := bankaccount.EncodeEvent(e)
		if err != nil {
			return err
		}
		nextVersion := currentVersion + 1
		seq = append(seq, eventstore.Record{
			StreamID:   streamID,
			Version:    nextVersion,
			EventType:  e.EventType(),
			EventBody:  body,
			OccurredAt: e.OccurredAt(),
		})
		currentVersion = nextVersion
	}
	s.streams[streamID] = seq
	return nil
}

// EventStreamSince implements eventstore.EventStore.
func (s *Store) EventStreamSince(_ context.Context, streamID string, fromVersion uint64) (eventstore.EventStream, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seq := s.streams[streamID]
	var out []bankaccount.Event
	var last uint64
	for _, rec := range seq {
		if rec.Version < fromVersion {
			continue
		}
		ev, err := bankaccount.DecodeEvent(rec.EventType, rec.EventBody)
		if err != nil {
			return eventstore.EventStream{}, err
		}
		out = append(out, ev)
		last = rec.Version
	}
	if len(out) == 0 {
		return eventstore.EventStream{}, &eventstore.NoEventStreamError{StreamID: streamID, FromVersion: fromVersion}
	}
	return eventstore.EventStream{StreamID: streamID, Events: out, StreamVersion: last}, nil
}

// RecordSnapshot implements eventstore.EventStore.
func (s *Store) RecordSnapshot(_ context.Context, snap eventstore.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snapshots[snap.StreamID] = snap
	return nil
}

// ReadSnapshot implements eventstore.EventStore.
func (s *Store) ReadSnapshot(_ context.Context, streamID string) (eventstore.Snapshot, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap, ok := s.snapshots[streamID]
	return snap, ok, nil
}

var _ eventstore.EventStore = (*Store)(nil)
