// Package natspub is a NATS JetStream-backed Publisher: a durable
// stream keyed by subject, one subject per (stream type, event type)
// pair, with "<stream_id>@<version>" used as the JetStream message ID
// for broker-side deduplication. Payloads are plain JSON — this module has
// no protobuf code generation available, so bankaccount.EncodeEvent's
// envelope format is the wire format.
package natspub

import (
	"context"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/publisher"
)

// Config configures the underlying JetStream stream.
type Config struct {
	URL        string
	StreamName string
	Subjects   []string
	MaxAge     time.Duration
}

// DefaultConfig returns sensible defaults for a bank-account event
// stream.
func DefaultConfig() Config {
	return Config{
		URL:        nats.DefaultURL,
		StreamName: "BANK_ACCOUNT_EVENTS",
		Subjects:   []string{"bank_account.events.>"},
		MaxAge:     30 * 24 * time.Hour,
	}
}

// Publisher publishes bank-account events to a NATS JetStream stream.
type Publisher struct {
	nc     *nats.Conn
	js     nats.JetStreamContext
	config Config
}

// New connects to NATS, ensures the configured stream exists, and
// returns a ready-to-use Publisher.
func New(config Config) (*Publisher, error) {
	nc, err := nats.Connect(config.URL)
	if err != nil {
		return nil, fmt.Errorf("natspub: could not connect to nats: %w", err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("natspub: could not create jetstream context: %w", err)
	}

	p := &Publisher{nc: nc, js: js, config: config}
	if err := p.ensureStream(); err != nil {
		nc.Close()
		return nil, err
	}
	return p, nil
}

func (p *Publisher) ensureStream() error {
	streamConfig := &nats.StreamConfig{
		Name:      p.config.StreamName,
		Subjects:  p.config.Subjects,
		Retention: nats.InterestPolicy,
		MaxAge:    p.config.MaxAge,
		Storage:   nats.FileStorage,
	}

	if _, err := p.js.StreamInfo(p.config.StreamName); err != nil {
		if _, err := p.js.AddStream(streamConfig); err != nil {
			return fmt.Errorf("natspub: could not create stream: %w", err)
		}
		return nil
	}
	if _, err := p.js.UpdateStream(streamConfig); err != nil {
		return fmt.Errorf("natspub: could not update stream: %w", err)
	}
	return nil
}

// Close closes the underlying NATS connection without draining it.
func (p *Publisher) Close() {
	p.nc.Close()
}

// Publish implements publisher.Publisher.
func (p *Publisher) Publish(_ context.Context, events []publisher.Published) error {
	for _, pub := range events {
		body, err := bankaccount.EncodeEvent(pub.Event)
		if err != nil {
			return fmt.Errorf("natspub: could not encode event: %w", err)
		}

		subject := fmt.Sprintf("bank_account.events.%s", pub.Event.EventType())
		msgID := fmt.Sprintf("%s@%d", pub.StreamID, pub.Version)

		if _, err := p.js.Publish(subject, body, nats.MsgId(msgID)); err != nil {
			return fmt.Errorf("natspub: could not publish event: %w", err)
		}
	}
	return nil
}

var _ publisher.Publisher = (*Publisher)(nil)
