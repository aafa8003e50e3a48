package bankaccount

import "errors"

// Domain error taxonomy. Value objects and the aggregate's
// decision/transition functions only ever return one of these
// (optionally wrapped with additional context via %w).
var (
	ErrInvalidID     = errors.New("bankaccount: invalid bank account id")
	ErrInvalidName   = errors.New("bankaccount: invalid bank account name")
	ErrNotYetOpened  = errors.New("bankaccount: account not yet opened")
	ErrAlreadyOpened = errors.New("bankaccount: account already opened")
	ErrAlreadyClosed = errors.New("bankaccount: account already closed")
	ErrDepositZero   = errors.New("bankaccount: amount must be non-zero")
	ErrNegativeBalance = errors.New("bankaccount: operation would drive balance negative")
	ErrInvalidState  = errors.New("bankaccount: command does not apply to this account's state")
)
