package bankaccount

import "time"

// BankAccount is the aggregate's reconstructed state. Invariants held
// at all times: Balance >= 0; once Closed is true it never becomes
// false; ID is immutable after creation; UpdatedAt >= CreatedAt.
type BankAccount struct {
	ID        ID
	Name      Name
	Closed    bool
	Balance   int32
	CreatedAt time.Time
	UpdatedAt time.Time
}
