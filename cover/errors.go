package cover

import (
	"errors"
	"fmt"
)

// ErrMalformedInput indicates a Record violates an invariant the key
// derivation relies on. It is a client-side fault and is never retried.
var ErrMalformedInput = errors.New("cover: malformed input")

// MalformedInputError names the offending field.
type MalformedInputError struct {
	Field  string
	Reason string
}

func (e *MalformedInputError) Error() string {
	return fmt.Sprintf("cover: malformed input: %s %s", e.Field, e.Reason)
}

// Is reports whether target is ErrMalformedInput.
func (e *MalformedInputError) Is(target error) bool {
	return target == ErrMalformedInput
}

func malformed(field, reason string) error {
	return &MalformedInputError{Field: field, Reason: reason}
}
