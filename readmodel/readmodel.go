// Package readmodel declares the query-side store for bank accounts: a
// denormalized view a projector keeps up to date as events arrive, so
// reads never have to replay a stream.
package readmodel

import (
	"context"
	"time"

	"github.com/bankledger/eventbank/bankaccount"
)

// Row is one account's projected state. Version tracks the number of
// events folded into the row so far: Opened sets it to 1, and every
// later event increments it by one, mirroring the event stream's own
// version numbering.
type Row struct {
	ID        bankaccount.ID
	Name      string
	Balance   int32
	Closed    bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Version   uint64
}

// Dao is the read-model persistence contract. Upsert and Delete are
// idempotent for a given row: writing the same row twice leaves the
// same state as writing it once. Event deduplication is not part of
// this contract; the projector applies an event delivered twice twice.
type Dao interface {
	// Upsert inserts or replaces the row for id, overwriting whatever
	// is currently stored regardless of UpdatedAt ordering — callers
	// are expected to only call Upsert with events taken in stream
	// order, which the projector guarantees.
	Upsert(ctx context.Context, row Row) error

	// Get returns the projected row for id, or (Row{}, false, nil) if
	// no Opened event has been projected for it yet.
	Get(ctx context.Context, id bankaccount.ID) (Row, bool, error)

	// Search returns rows whose name matches query, ordered by
	// relevance. An empty query returns no rows.
	Search(ctx context.Context, query string, limit int) ([]Row, error)

	// Delete removes the row for id. Used when a Closed account should
	// drop out of the searchable index while its event stream remains
	// the durable record.
	Delete(ctx context.Context, id bankaccount.ID) error
}
