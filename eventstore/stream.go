package eventstore

import (
	"time"

	"github.com/bankledger/eventbank/bankaccount"
)

// Record is the abstract persisted event record: one row per event,
// primary key (StreamID, Version).
type Record struct {
	StreamID    string
	Version     uint64
	EventType   string
	EventBody   []byte // JSON serialization of the BankAccountEvent variant
	OccurredAt  time.Time
}

// EventStream is an ordered sequence of events for one stream, plus the
// version of the last event in the sequence.
type EventStream struct {
	StreamID      string
	Events        []bankaccount.Event
	StreamVersion uint64
}

// Snapshot is a materialized aggregate state at a particular stream
// version.
type Snapshot struct {
	StreamID      string
	StreamVersion uint64
	Data          bankaccount.BankAccount
	CreatedAt     time.Time
}
