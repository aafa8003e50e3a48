// Package projector drives a readmodel.Dao from published bank-account
// events, the read side of the CQRS split: state lives in the event
// stream, the read model is a disposable cache rebuilt by replaying it.
package projector

import (
	"context"
	"fmt"

	"github.com/bankledger/eventbank/bankaccount"
	"github.com/bankledger/eventbank/publisher"
	"github.com/bankledger/eventbank/readmodel"
)

// Projector applies each published event to a readmodel.Dao in order.
// It holds no state of its own beyond the Dao; restarting it just means
// resubscribing and replaying whatever arrives next.
type Projector struct {
	dao readmodel.Dao
}

// New creates a Projector over dao.
func New(dao readmodel.Dao) *Projector {
	return &Projector{dao: dao}
}

// HandlePublished implements publisher's subscriber shape so a
// Projector can be registered directly with memhub.Hub.Subscribe or
// wrapped for a natspub consumer.
func (p *Projector) HandlePublished(ctx context.Context, events []publisher.Published) error {
	for _, pub := range events {
		if err := p.apply(ctx, pub.Event); err != nil {
			return fmt.Errorf("projector: could not apply %s: %w", pub.Event.EventType(), err)
		}
	}
	return nil
}

func (p *Projector) apply(ctx context.Context, e bankaccount.Event) error {
	switch ev := e.(type) {
	case bankaccount.Opened:
		return p.dao.Upsert(ctx, readmodel.Row{
			ID:        ev.ID,
			Name:      ev.Name.String(),
			Balance:   0,
			Closed:    false,
			CreatedAt: ev.At,
			UpdatedAt: ev.At,
			Version:   1,
		})

	case bankaccount.Updated:
		row, ok, err := p.dao.Get(ctx, ev.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no projected row for account %s", ev.ID)
		}
		row.Name = ev.Name.String()
		row.UpdatedAt = ev.At
		row.Version++
		return p.dao.Upsert(ctx, row)

	case bankaccount.Deposited:
		row, ok, err := p.dao.Get(ctx, ev.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no projected row for account %s", ev.ID)
		}
		row.Balance += ev.Deposit
		row.UpdatedAt = ev.At
		row.Version++
		return p.dao.Upsert(ctx, row)

	case bankaccount.Withdrawn:
		row, ok, err := p.dao.Get(ctx, ev.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no projected row for account %s", ev.ID)
		}
		row.Balance -= ev.Withdraw
		row.UpdatedAt = ev.At
		row.Version++
		return p.dao.Upsert(ctx, row)

	case bankaccount.Closed:
		row, ok, err := p.dao.Get(ctx, ev.ID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no projected row for account %s", ev.ID)
		}
		row.Closed = true
		row.UpdatedAt = ev.At
		row.Version++
		return p.dao.Upsert(ctx, row)

	default:
		return fmt.Errorf("unknown event type %T", e)
	}
}
