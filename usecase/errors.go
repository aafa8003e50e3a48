package usecase

import (
	"errors"
	"fmt"

	"github.com/bankledger/eventbank/bankaccount"
)

// ErrBankAccountNotFound is the sentinel errors.Is callers match against;
// NotFoundError is the concrete type actually returned.
var ErrBankAccountNotFound = errors.New("usecase: bank account not found")

// NotFoundError reports that id has neither a recorded snapshot nor an
// event stream — it has never been opened.
type NotFoundError struct {
	ID bankaccount.ID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("usecase: bank account %s not found", e.ID)
}

// Is allows errors.Is(err, ErrBankAccountNotFound) to match this type.
func (e *NotFoundError) Is(target error) bool {
	return target == ErrBankAccountNotFound
}
