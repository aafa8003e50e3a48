package bankaccount

import (
	"encoding/json"
	"fmt"
)

// maxNameLength is the exclusive upper bound on a BankAccountName's
// length, in UTF-16 code units. Go strings are measured here in runes,
// which coincides with code units for the names this domain accepts
// (no data above the BMP is expected in an owner name).
const maxNameLength = 255

// Name is a validated, non-empty bank account name shorter than 255
// code units.
type Name struct {
	value string
}

// ParseName validates and wraps a raw name string.
func ParseName(s string) (Name, error) {
	n := len([]rune(s))
	if n == 0 || n >= maxNameLength {
		return Name{}, fmt.Errorf("%w: length %d, want 1..%d", ErrInvalidName, n, maxNameLength-1)
	}
	return Name{value: s}, nil
}

// String returns the underlying name text.
func (n Name) String() string {
	return n.value
}

// MarshalJSON renders the name as a plain JSON string.
func (n Name) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.value)
}

// UnmarshalJSON parses and validates a JSON string into a Name.
func (n *Name) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	parsed, err := ParseName(s)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}
