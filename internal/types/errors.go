package types

import "fmt"

// MismatchError is returned by the as_*_sub destructuring helpers when a
// type does not have the expected shape (spec §4.1: "each either returns
// the destructured components or reports a mismatch"). It carries enough
// to let a caller format a precise checker diagnostic without the helper
// itself needing to know about source positions or phases.
type MismatchError struct {
	Expected string // shape the caller wanted, e.g. "tuple of arity >= 2"
	Got      Type
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("expected %s, got %s", e.Expected, e.Got)
}

func mismatch(expected string, got Type) error {
	return &MismatchError{Expected: expected, Got: got}
}
