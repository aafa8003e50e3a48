// Package pgstore is a PostgreSQL-backed eventstore.EventStore: one row
// per event in an append-only table, one row per stream in a
// snapshots table, optimistic concurrency enforced via a unique
// constraint on (stream_id, version).
package pgstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/eventstore"
)

// Store is a concrete EventStore backed by PostgreSQL.
//
// Schema (see Migrate):
//
//	CREATE TABLE bank_account_events (
//		stream_id   text        NOT NULL,
//		version     bigint      NOT NULL,
//		event_type  text        NOT NULL,
//		payload     jsonb       NOT NULL,
//		occurred_at timestamptz NOT NULL,
//		PRIMARY KEY (stream_id, version)
//	);
//	CREATE TABLE bank_account_snapshots (
//		stream_id      text        PRIMARY KEY,
//		stream_version bigint      NOT NULL,
//		state          jsonb       NOT NULL,
//		created_at     timestamptz NOT NULL
//	);
type Store struct {
	pool *pgxpool.Pool
}

// New creates a Postgres-backed Store.
func New(pool *pgxpool.Pool) *Store {
	return &Store{pool: pool}
}

// Migrate creates the store's tables if they do not already exist. It is
// meant for tests and small deployments; production rollouts should use
// a dedicated migration tool instead.
func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS bank_account_events (
			stream_id   text        NOT NULL,
			version     bigint      NOT NULL,
			event_type  text        NOT NULL,
			payload     jsonb       NOT NULL,
			occurred_at timestamptz NOT NULL,
			PRIMARY KEY (stream_id, version)
		);
		CREATE TABLE IF NOT EXISTS bank_account_snapshots (
			stream_id      text        PRIMARY KEY,
			stream_version bigint      NOT NULL,
			state          jsonb       NOT NULL,
			created_at     timestamptz NOT NULL
		);
	`)
	if err != nil {
		return fmt.Errorf("pgstore: could not migrate: %w", err)
	}
	return nil
}

// AppendEventStream implements eventstore.EventStore.
func (s *Store) AppendEventStream(ctx context.Context, streamID string, expectedNextVersion uint64, events []bankaccount.Event) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("pgstore: could not begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var currentVersion uint64
	if err := tx.QueryRow(
		ctx,
		`SELECT COALESCE(MAX(version), 0) FROM bank_account_events WHERE stream_id = $1`,
		streamID,
	).Scan(&currentVersion); err != nil {
		return fmt.Errorf("pgstore: could not read current version: %w", err)
	}
	if currentVersion+1 != expectedNextVersion {
		return &eventstore.DuplicateEntryError{StreamID: streamID, Version: expectedNextVersion}
	}

	for _, e := range events {
		body, err := bankaccount.EncodeEvent(e)
		if err != nil {
			return fmt.Errorf("pgstore: could not encode event: %w", err)
		}
		currentVersion++

		if _, err := tx.Exec(
			ctx,
			`INSERT INTO bank_account_events (stream_id, version, event_type, payload, occurred_at)
			 VALUES ($1, $2, $3, $4, $5)`,
			streamID, currentVersion, e.EventType(), body, e.OccurredAt(),
		); err != nil {
			if isUniqueViolation(err) {
				return &eventstore.DuplicateEntryError{StreamID: streamID, Version: currentVersion}
			}
			return fmt.Errorf("pgstore: could not insert event: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("pgstore: could not commit transaction: %w", err)
	}
	return nil
}

// EventStreamSince implements eventstore.EventStore.
func (s *Store) EventStreamSince(ctx context.Context, streamID string, fromVersion uint64) (eventstore.EventStream, error) {
	rows, err := s.pool.Query(
		ctx,
		`SELECT version, event_type, payload
		 FROM bank_account_events
		 WHERE stream_id = $1 AND version >= $2
		 ORDER BY version ASC`,
		streamID, fromVersion,
	)
	if err != nil {
		return eventstore.EventStream{}, fmt.Errorf("pgstore: could not query events: %w", err)
	}
	defer rows.Close()

	var out []bankaccount.Event
	var last uint64
	for rows.Next() {
		var version uint64
		var eventType string
		var payload []byte
		if err := rows.Scan(&version, &eventType, &payload); err != nil {
			return eventstore.EventStream{}, fmt.Errorf("pgstore: could not scan event: %w", err)
		}
		ev, err := bankaccount.DecodeEvent(eventType, payload)
		if err != nil {
			return eventstore.EventStream{}, fmt.Errorf("pgstore: could not decode event: %w", err)
		}
		out = append(out, ev)
		last = version
	}
	if err := rows.Err(); err != nil {
		return eventstore.EventStream{}, fmt.Errorf("pgstore: could not read rows: %w", err)
	}
	if len(out) == 0 {
		return eventstore.EventStream{}, &eventstore.NoEventStreamError{StreamID: streamID, FromVersion: fromVersion}
	}
	return eventstore.EventStream{StreamID: streamID, Events: out, StreamVersion: last}, nil
}

// RecordSnapshot implements eventstore.EventStore.
func (s *Store) RecordSnapshot(ctx context.Context, snap eventstore.Snapshot) error {
	data, err := json.Marshal(snap.Data)
	if err != nil {
		return fmt.Errorf("pgstore: could not encode snapshot: %w", err)
	}
	_, err = s.pool.Exec(
		ctx,
		`INSERT INTO bank_account_snapshots (stream_id, stream_version, state, created_at)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (stream_id) DO UPDATE
		 SET stream_version = EXCLUDED.stream_version,
		     state          = EXCLUDED.state,
		     created_at     = EXCLUDED.created_at`,
		snap.StreamID, snap.StreamVersion, data, snap.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("pgstore: could not upsert snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot implements eventstore.EventStore.
func (s *Store) ReadSnapshot(ctx context.Context, streamID string) (eventstore.Snapshot, bool, error) {
	row := s.pool.QueryRow(
		ctx,
		`SELECT stream_version, state, created_at FROM bank_account_snapshots WHERE stream_id = $1`,
		streamID,
	)

	var version uint64
	var raw []byte
	var createdAt time.Time
	if err := row.Scan(&version, &raw, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return eventstore.Snapshot{}, false, nil
		}
		return eventstore.Snapshot{}, false, fmt.Errorf("pgstore: could not scan snapshot: %w", err)
	}

	var data bankaccount.BankAccount
	if err := json.Unmarshal(raw, &data); err != nil {
		return eventstore.Snapshot{}, false, fmt.Errorf("pgstore: could not decode snapshot: %w", err)
	}

	return eventstore.Snapshot{
		StreamID:      streamID,
		StreamVersion: version,
		Data:          data,
		CreatedAt:     createdAt,
	}, true, nil
}

var _ eventstore.EventStore = (*Store)(nil)
