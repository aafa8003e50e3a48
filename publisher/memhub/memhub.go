// Package memhub is an in-process fan-out Publisher: every subscriber
// registered before a Publish call receives every event synchronously,
// in the order Publish was called. It has no durability and no
// delivery guarantees beyond "ran in this process" — intended for
// tests, prototypes, and single-process runs, the in-process analogue
// of memstore on the read side.
package memhub

import (
	"context"
	"sync"

	"github.com/bankledger/eventbank/publisher"
)

// Subscriber receives events published through a Hub.
type Subscriber func(ctx context.Context, events []publisher.Published) error

// Hub is an in-process Publisher with no external dependencies.
type Hub struct {
	mu   sync.RWMutex
	subs []Subscriber
}

// New creates an empty Hub.
func New() *Hub {
	return &Hub{}
}

// Subscribe registers a subscriber. It may be called concurrently with
// Publish; a Publish call already in progress delivers only to the
// subscribers registered when it started.
func (h *Hub) Subscribe(s Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.subs = append(h.subs, s)
}

// Publish implements publisher.Publisher by calling every subscriber
// in turn. The first error aborts delivery to the remaining
// subscribers and is returned to the caller.
func (h *Hub) Publish(ctx context.Context, events []publisher.Published) error {
	h.mu.RLock()
	subs := make([]Subscriber, len(h.subs))
	copy(subs, h.subs)
	h.mu.RUnlock()

	for _, s := range subs {
		if err := s(ctx, events); err != nil {
			return err
		}
	}
	return nil
}

var _ publisher.Publisher = (*Hub)(nil)
