package wire

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	ErrCapacityExceeded    = errors.New("wire: capacity exceeded")
	ErrTruncatedInput      = errors.New("wire: truncated input")
	ErrVarintOverflow      = errors.New("wire: varint overflow")
	ErrInvalidDescriptor   = errors.New("wire: invalid descriptor")
	ErrInvalidBoolEncoding = errors.New("wire: invalid bool encoding")
	ErrInvalidWidth        = errors.New("wire: invalid fixed width")
	ErrKindMismatch        = errors.New("wire: field kind mismatch")
	ErrInvalidArgument     = errors.New("wire: invalid argument")
)

// FieldError reports which field of a pack or unpack call failed.
type FieldError struct {
	Op    string
	Index int
	Kind  Kind
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("wire: %s field %d (%s): %v", e.Op, e.Index, e.Kind, e.Err)
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

func fieldError(op string, index int, kind Kind, err error) error {
	return &FieldError{Op: op, Index: index, Kind: kind, Err: err}
}
