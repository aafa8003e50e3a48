// Package bankaccount implements the bank-account aggregate: its value
// objects, event/command vocabulary, and the pure state machine that
// drives it.
package bankaccount

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// ID is the unique identifier of a bank account, parsed from its
// canonical hyphenated text form.
type ID struct {
	value uuid.UUID
}

// ParseID parses the canonical hyphenated text form of an account ID.
// Invalid text fails with ErrInvalidID.
func ParseID(s string) (ID, error) {
	u, err := uuid.Parse(s)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %q: %v", ErrInvalidID, s, err)
	}
	return ID{value: u}, nil
}

// NewID generates a fresh, random account ID.
func NewID() ID {
	return ID{value: uuid.New()}
}

// String returns the canonical hyphenated text form.
func (id ID) String() string {
	return id.value.String()
}

// IsZero reports whether id is the zero value (never a valid account ID).
func (id ID) IsZero() bool {
	return id.value == uuid.Nil
}

// StreamID returns the event-store stream identity for this account.
func (id ID) StreamID() string {
	return "bank_account:" + id.String()
}

// MarshalJSON renders the ID as its canonical hyphenated text form.
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.value.String() + `"`), nil
}

// UnmarshalJSON parses the canonical hyphenated text form.
func (id *ID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseID(s)
	if err != nil {
		return err
	}
	*id = parsed
	return nil
}
