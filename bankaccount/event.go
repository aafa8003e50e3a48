package bankaccount

import "time"

// Event type tags, stable strings used for persisted type discrimination
// and for external consumers.
const (
	EventTypeOpened    = "BankAccountOpened"
	EventTypeUpdated   = "BankAccountUpdated"
	EventTypeDeposited = "BankAccountDeposited"
	EventTypeWithdrawn = "BankAccountWithdrawn"
	EventTypeClosed    = "BankAccountClosed"
)

// Event is the tagged-variant interface implemented by every event
// shape this aggregate raises.
type Event interface {
	// EventType returns the stable string tag for this variant.
	EventType() string
	// AccountID returns the aggregate this event belongs to.
	AccountID() ID
	// OccurredAt returns the monotonic-local timestamp the event was
	// produced at.
	OccurredAt() time.Time
}

// base is embedded by every event variant to supply the two fields
// common to all of them.
type base struct {
	ID     ID        `json:"bank_account_id"`
	At     time.Time `json:"occurred_at"`
}

// AccountID returns the aggregate this event belongs to.
func (b base) AccountID() ID { return b.ID }

// OccurredAt returns the event's timestamp.
func (b base) OccurredAt() time.Time { return b.At }

// Opened is emitted when a new account is created.
type Opened struct {
	base
	Name Name `json:"name"`
}

// EventType returns EventTypeOpened.
func (Opened) EventType() string { return EventTypeOpened }

// NewOpened constructs an Opened event.
func NewOpened(id ID, name Name, at time.Time) Opened {
	return Opened{base: base{ID: id, At: at}, Name: name}
}

// Updated is emitted when an account's name is changed.
type Updated struct {
	base
	Name Name `json:"name"`
}

// EventType returns EventTypeUpdated.
func (Updated) EventType() string { return EventTypeUpdated }

// NewUpdated constructs an Updated event.
func NewUpdated(id ID, name Name, at time.Time) Updated {
	return Updated{base: base{ID: id, At: at}, Name: name}
}

// Deposited is emitted when funds are added to an account. Deposit must
// be strictly positive at emission time.
type Deposited struct {
	base
	Deposit int32 `json:"deposit"`
}

// EventType returns EventTypeDeposited.
func (Deposited) EventType() string { return EventTypeDeposited }

// NewDeposited constructs a Deposited event.
func NewDeposited(id ID, amount int32, at time.Time) Deposited {
	return Deposited{base: base{ID: id, At: at}, Deposit: amount}
}

// Withdrawn is emitted when funds are removed from an account. Withdraw
// must be strictly positive at emission time.
type Withdrawn struct {
	base
	Withdraw int32 `json:"withdraw"`
}

// EventType returns EventTypeWithdrawn.
func (Withdrawn) EventType() string { return EventTypeWithdrawn }

// NewWithdrawn constructs a Withdrawn event.
func NewWithdrawn(id ID, amount int32, at time.Time) Withdrawn {
	return Withdrawn{base: base{ID: id, At: at}, Withdraw: amount}
}

// Closed is emitted when an account is closed.
type Closed struct {
	base
}

// EventType returns EventTypeClosed.
func (Closed) EventType() string { return EventTypeClosed }

// NewClosed constructs a Closed event.
func NewClosed(id ID, at time.Time) Closed {
	return Closed{base: base{ID: id, At: at}}
}
