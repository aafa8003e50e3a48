package bankaccount

import (
	"fmt"
	"math"
	"time"
)

// Aggregate is the pair (state, version). State is nil until an
// Opened event has been applied ("not yet
// opened"). Version is the last persisted stream version successfully
// loaded into this value. In this package ApplyEvent advances it by one
// per applied event and LoadFromSnapshot/LoadFromHistory set it to the
// loaded stream version; outside it, the caller sets it after a
// successful append.
type Aggregate struct {
	State   *BankAccount
	Version uint64
}

// New returns a fresh, unopened aggregate at version 0.
func New() Aggregate {
	return Aggregate{}
}

// LoadFromSnapshot rehydrates an aggregate directly from a previously
// recorded state, without replaying any events.
func LoadFromSnapshot(state BankAccount, streamVersion uint64) Aggregate {
	s := state
	return Aggregate{State: &s, Version: streamVersion}
}

// LoadFromHistory folds ApplyEvent over events starting from base,
// setting the resulting aggregate's version to finalVersion on success.
// If any intermediate apply fails, the domain error is returned as-is
// and no partial aggregate is produced.
func LoadFromHistory(base Aggregate, events []Event, finalVersion uint64) (Aggregate, error) {
	agg := base
	for _, e := range events {
		next, err := ApplyEvent(agg, e)
		if err != nil {
			return Aggregate{}, err
		}
		agg = next
	}
	agg.Version = finalVersion
	return agg, nil
}

// HandleCommand is the decision function: it validates cmd against the
// aggregate's current state and, if legal, returns the events that
// would result. It never mutates agg and never persists anything.
//
// Deeper domain validations for Deposit/Withdraw/Close (zero amount,
// overflow into negative, already-closed) are deferred to ApplyEvent,
// so a single function owns state-legality rules and online command
// handling uses exactly the rules history replay uses.
func HandleCommand(agg Aggregate, cmd Command, now time.Time) ([]Event, error) {
	switch c := cmd.(type) {
	case Open:
		if agg.State != nil {
			return nil, fmt.Errorf("%w: %s", ErrAlreadyOpened, c.ID)
		}
		return []Event{NewOpened(c.ID, c.Name, now)}, nil

	case Update:
		if err := requireSameOpenedAccount(agg, c.ID); err != nil {
			return nil, err
		}
		return []Event{NewUpdated(c.ID, c.Name, now)}, nil

	case Deposit:
		if err := requireSameOpenedAccount(agg, c.ID); err != nil {
			return nil, err
		}
		return []Event{NewDeposited(c.ID, c.Amount, now)}, nil

	case Withdraw:
		if err := requireSameOpenedAccount(agg, c.ID); err != nil {
			return nil, err
		}
		return []Event{NewWithdrawn(c.ID, c.Amount, now)}, nil

	case Close:
		if err := requireSameOpenedAccount(agg, c.ID); err != nil {
			return nil, err
		}
		return []Event{NewClosed(c.ID, now)}, nil

	default:
		return nil, fmt.Errorf("bankaccount: unknown command type %T", cmd)
	}
}

// requireSameOpenedAccount checks the precondition shared by
// Update/Deposit/Withdraw/Close: the aggregate must already have state
// for id. It does not check Closed — that legality rule lives in
// ApplyEvent so it is identical for online handling and history replay.
func requireSameOpenedAccount(agg Aggregate, id ID) error {
	if agg.State == nil || agg.State.ID != id {
		return fmt.Errorf("%w: %s", ErrInvalidState, id)
	}
	return nil
}

// ApplyEvent is the state-transition function. It owns every legality
// rule (closed accounts reject further mutation, deposits/withdrawals
// must be non-zero and cannot drive the balance negative) so that
// handle-then-apply during online command handling and plain
// apply-only during history replay agree by construction.
func ApplyEvent(agg Aggregate, e Event) (Aggregate, error) {
	switch ev := e.(type) {
	case Opened:
		if agg.State != nil {
			return Aggregate{}, fmt.Errorf("%w: %s", ErrAlreadyOpened, ev.AccountID())
		}
		return bump(agg, &BankAccount{
			ID:        ev.AccountID(),
			Name:      ev.Name,
			Closed:    false,
			Balance:   0,
			CreatedAt: ev.OccurredAt(),
			UpdatedAt: ev.OccurredAt(),
		}), nil

	case Updated:
		state, err := requireOpenAccount(agg, ev.AccountID())
		if err != nil {
			return Aggregate{}, err
		}
		next := *state
		next.Name = ev.Name
		next.UpdatedAt = ev.OccurredAt()
		return bump(agg, &next), nil

	case Deposited:
		state, err := requireOpenAccount(agg, ev.AccountID())
		if err != nil {
			return Aggregate{}, err
		}
		if ev.Deposit == 0 {
			return Aggregate{}, fmt.Errorf("%w: %s", ErrDepositZero, ev.AccountID())
		}
		newBalance := int64(state.Balance) + int64(ev.Deposit)
		if newBalance < 0 || newBalance > math.MaxInt32 {
			return Aggregate{}, fmt.Errorf("%w: %s", ErrNegativeBalance, ev.AccountID())
		}
		next := *state
		next.Balance = int32(newBalance)
		next.UpdatedAt = ev.OccurredAt()
		return bump(agg, &next), nil

	case Withdrawn:
		state, err := requireOpenAccount(agg, ev.AccountID())
		if err != nil {
			return Aggregate{}, err
		}
		if ev.Withdraw == 0 {
			return Aggregate{}, fmt.Errorf("%w: %s", ErrDepositZero, ev.AccountID())
		}
		newBalance := int64(state.Balance) - int64(ev.Withdraw)
		if newBalance < 0 || newBalance > math.MaxInt32 {
			return Aggregate{}, fmt.Errorf("%w: %s", ErrNegativeBalance, ev.AccountID())
		}
		next := *state
		next.Balance = int32(newBalance)
		next.UpdatedAt = ev.OccurredAt()
		return bump(agg, &next), nil

	case Closed:
		state, err := requireOpenAccount(agg, ev.AccountID())
		if err != nil {
			return Aggregate{}, err
		}
		next := *state
		next.Closed = true
		next.UpdatedAt = ev.OccurredAt()
		return bump(agg, &next), nil

	default:
		return Aggregate{}, fmt.Errorf("bankaccount: unknown event type %T", e)
	}
}

// requireOpenAccount checks that agg has state for id and that it is
// not yet closed, returning ErrAlreadyClosed otherwise (re-close and any
// mutation of a closed account take this path).
func requireOpenAccount(agg Aggregate, id ID) (*BankAccount, error) {
	if agg.State == nil || agg.State.ID != id {
		return nil, fmt.Errorf("%w: %s", ErrNotYetOpened, id)
	}
	if agg.State.Closed {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyClosed, id)
	}
	return agg.State, nil
}

// bump returns a copy of agg with State replaced and Version advanced
// by one, preserving the "fold one event, advance one version" rule
// ApplyEvent is built around.
func bump(agg Aggregate, state *BankAccount) Aggregate {
	return Aggregate{State: state, Version: agg.Version + 1}
}
