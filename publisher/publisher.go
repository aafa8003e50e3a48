// Package publisher declares the event-publication side of the command
// pipeline: once an append succeeds, each appended event is handed to
// a Publisher so read models and other collaborators can react.
package publisher

import (
	"context"

	"github.com/bankledger/eventbank/bankaccount"
)

// Published is one event on its way out, carrying the stream identity
// and version it was appended at so subscribers can order and
// deduplicate, plus whatever metadata the command carried.
type Published struct {
	StreamID string
	Version  uint64
	Event    bankaccount.Event
	Metadata map[string]any
}

// Publisher fans out appended events to subscribers. Publish must not
// be used to signal success back to the command caller — a publish
// failure is a delivery concern, not a domain one, and callers should
// log and move on rather than fail the use case that already
// committed its append.
type Publisher interface {
	Publish(ctx context.Context, events []Published) error
}
