package regstore

import (
	"errors"
	"fmt"
)

var (
	// ErrAccess indicates the store could not be opened, created, enumerated or read.
	ErrAccess = errors.New("store access failed")

	// ErrWrite indicates a delete or set failed.
	ErrWrite = errors.New("store write failed")

	// ErrMalformed indicates a value that cannot be written back as read.
	// It is a write-class failure.
	ErrMalformed = fmt.Errorf("%w: malformed entry", ErrWrite)

	// ErrUnsupportedKind indicates a value kind this package cannot round-trip.
	ErrUnsupportedKind = fmt.Errorf("%w: unsupported value kind", ErrMalformed)

	// ErrNotFound indicates a value name does not exist in the store.
	ErrNotFound = errors.New("value not found")

	// ErrUnsupported indicates the backend is not available on this platform.
	ErrUnsupported = errors.New("backend not supported on this platform")
)

// OpError records a failed store operation on a single value name.
type OpError struct {
	// Op is the operation: "open", "enumerate", "get", "set" or "delete"
	Op string

	// Name is the value name, or the namespace for "open" and "enumerate"
	Name string

	// Kind is the sentinel classifying the failure (ErrAccess, ErrWrite, ErrMalformed)
	Kind error

	// Err is the underlying cause
	Err error
}

func (e *OpError) Error() string {
	switch {
	case e.Err == nil:
		return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Kind)
	case errors.Is(e.Err, e.Kind):
		return fmt.Sprintf("%s %q: %v", e.Op, e.Name, e.Err)
	default:
		return fmt.Sprintf("%s %q: %v: %v", e.Op, e.Name, e.Kind, e.Err)
	}
}

// Unwrap exposes both the classification and the cause to errors.Is and errors.As.
func (e *OpError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewOpError returns an OpError. Kind should be one of the sentinels above.
func NewOpError(op, name string, kind, err error) *OpError {
	return &OpError{Op: op, Name: name, Kind: kind, Err: err}
}
